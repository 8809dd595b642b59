// Package output 实现模型输出的处理流程：内容护栏、结构化解析、基于规则集的校验。
package output

import (
	"context"
	"errors"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/model"
)

// Step 一个输出处理步骤。
type Step interface {
	Name() string
	Kind() string
	// Process 处理响应，可以原地修改并返回同一个响应
	Process(ctx context.Context, resp *model.ChatResponse) (*model.ChatResponse, error)
}

// Pipeline 按顺序运行的输出处理步骤，创建后只读，可并发使用。
type Pipeline struct {
	steps []Step
}

// NewPipeline 创建输出处理流程。
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// GetType 组件实现类型。
func (p *Pipeline) GetType() string {
	return "OutputProcessing"
}

// Steps 返回步骤列表的副本。
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Process 依次运行各步骤，任何一步失败即停止。
func (p *Pipeline) Process(ctx context.Context, resp *model.ChatResponse) (out *model.ChatResponse, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      p.GetType(),
		Type:      p.GetType(),
		Component: components.ComponentOfOutputProcessing,
	}, &CallbackInput{Response: resp})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	if resp == nil {
		return nil, errors.New("nil response")
	}

	out = resp
	for _, step := range p.steps {
		out, err = runStep(ctx, step, out)
		if err != nil {
			return nil, err
		}
	}

	_ = callbacks.OnEnd(ctx, &CallbackOutput{Response: out})
	return out, nil
}

func runStep(ctx context.Context, step Step, resp *model.ChatResponse) (out *model.ChatResponse, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      step.Name(),
		Type:      step.Kind(),
		Component: components.ComponentOfOutputStep,
	}, &CallbackInput{Step: step.Name(), Response: resp})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	out, err = step.Process(ctx, resp)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = resp
	}

	_ = callbacks.OnEnd(ctx, &CallbackOutput{Step: step.Name(), Response: out})
	return out, nil
}
