// Package enrichment 实现提示词增强流程：按顺序运行增强步骤，再渲染提示词模板。
package enrichment

import (
	"context"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/internal/jsonvalue"
	"github.com/favbox/promptflow/prompt"
	"github.com/favbox/promptflow/schema"
)

// Pipeline 提示词增强流程，创建后只读，可并发使用。
type Pipeline struct {
	template *prompt.Template
	steps    []Step
}

// NewPipeline 创建增强流程。template 为 nil 时运行会返回 ErrMissingPrompt。
func NewPipeline(template *prompt.Template, steps ...Step) *Pipeline {
	return &Pipeline{template: template, steps: steps}
}

// GetType 组件实现类型。
func (p *Pipeline) GetType() string {
	return "PromptEnrichment"
}

// Input 增强流程的输入。
type Input struct {
	Args        map[string]any
	Info        *model.Info
	ModelParams model.Params
}

// Output 增强流程的输出。
type Output struct {
	// Messages 渲染后的消息
	Messages []*schema.Message
	// Args 增强后的参数
	Args map[string]any
	// Metadata 各步骤的响应元信息，按步骤名归档
	Metadata map[string]any
}

// Run 依次运行各步骤并渲染模板。
func (p *Pipeline) Run(ctx context.Context, in *Input) (out *Output, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      p.GetType(),
		Type:      p.GetType(),
		Component: components.ComponentOfPromptEnrichment,
	}, &CallbackInput{Args: in.Args, Info: in.Info})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	if p.template == nil {
		return nil, function.NewError(p.GetType(), function.ErrMissingPrompt)
	}

	args := jsonvalue.Copy(in.Args)
	if args == nil {
		args = map[string]any{}
	}
	metadata := map[string]any{}

	for _, step := range p.steps {
		res, err := p.runStep(ctx, step, args)
		if err != nil {
			return nil, err
		}
		if res.Args != nil {
			args = res.Args
		}
		if len(res.Metadata) > 0 {
			metadata[step.Name()] = res.Metadata
		}
	}

	msgs, err := p.template.Format(ctx, args, in.Info, in.ModelParams)
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return nil, function.NewError(p.GetType(), function.ErrEmptyEnrichment)
	}

	out = &Output{Messages: msgs, Args: args, Metadata: metadata}
	_ = callbacks.OnEnd(ctx, &CallbackOutput{Messages: msgs, Metadata: metadata})

	return out, nil
}

func (p *Pipeline) runStep(ctx context.Context, step Step, args map[string]any) (res *StepOutput, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      step.Name(),
		Type:      step.Kind(),
		Component: components.ComponentOfEnrichmentStep,
	}, &StepCallbackInput{Step: step.Name(), Args: args})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	res, err = step.Enrich(ctx, jsonvalue.Copy(args))
	if err != nil {
		return nil, newStepError(step.Name(), err)
	}
	if res == nil {
		res = &StepOutput{}
	}

	_ = callbacks.OnEnd(ctx, &StepCallbackOutput{Step: step.Name(), Output: res})
	return res, nil
}
