// Package react 实现 ReAct（MRKL）智能体：模型交替给出推理和行动，工具结果作为观察写回草稿区。
package react

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/components/tool"
	"github.com/favbox/promptflow/flow/agent"
	"github.com/favbox/promptflow/logs"
)

const (
	DefaultMaxIterations    = 6
	DefaultMaxExecutionTime = 30 * time.Second
	// DoneAnswer 达到迭代或时间上限时的答案
	DoneAnswer = "Done"
	// ExceptionTool 解析失败时记录在步骤中的工具名
	ExceptionTool = "_Exception"
)

// DefaultStop 默认停止词，模型写出观察之前停止。
func DefaultStop() []string {
	return []string{"Observation:"}
}

// Config ReAct 智能体配置。
type Config struct {
	// Name 回调中的名称，默认 "ReAct"
	Name string
	// Function 每轮调用的语义函数，模板参数见 ArgInput 等常量
	Function function.Function
	Tools    tool.Service
	// ToolKeys 为空时使用全部工具
	ToolKeys []string

	MaxIterations    int
	MaxExecutionTime time.Duration
	Stop             []string

	// HandleParsingErrors 为 true 时所有解析失败都反馈给模型；
	// 否则只反馈 SendToLLM 的失败，其余直接返回错误
	HandleParsingErrors bool
}

// Agent ReAct 智能体，创建后只读，可并发使用。
type Agent struct {
	conf Config
}

var _ agent.Agent = (*Agent)(nil)

// NewAgent 创建 ReAct 智能体。
//
//	a, err := react.NewAgent(&react.Config{Function: fn, Tools: tools})
//	if err != nil {...}
//	out, err := a.Run(ctx, &agent.Input{Goal: "what is the weather in Paris?"})
func NewAgent(conf *Config) (*Agent, error) {
	if conf == nil || conf.Function == nil {
		return nil, errors.New("react agent requires a function")
	}

	c := *conf
	if c.Name == "" {
		c.Name = "ReAct"
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if c.MaxExecutionTime <= 0 {
		c.MaxExecutionTime = DefaultMaxExecutionTime
	}
	if c.Stop == nil {
		c.Stop = DefaultStop()
	}

	return &Agent{conf: c}, nil
}

func (a *Agent) GetType() string {
	return "ReAct"
}

// Run 执行循环。时间上限在两轮之间检查，不会中断进行中的调用。
func (a *Agent) Run(ctx context.Context, in *agent.Input) (out *agent.Output, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      a.conf.Name,
		Type:      a.GetType(),
		Component: components.ComponentOfAgent,
	}, &agent.CallbackInput{Input: in})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	toolDesc, toolNames, err := agent.DescribeTools(ctx, a.conf.Tools, a.conf.ToolKeys)
	if err != nil {
		return nil, err
	}

	params := in.ModelParams.With(model.ParamStop, a.conf.Stop)
	start := time.Now()
	out = &agent.Output{}
	var scratchpad strings.Builder

	for i := range a.conf.MaxIterations {
		if i > 0 && time.Since(start) >= a.conf.MaxExecutionTime {
			break
		}

		args := make(map[string]any, len(in.Args)+4)
		maps.Copy(args, in.Args)
		args[ArgInput] = in.Goal
		args[ArgTools] = toolDesc
		args[ArgToolNames] = strings.Join(toolNames, ", ")
		args[ArgScratchpad] = scratchpad.String()

		resp, err := a.conf.Function.Call(ctx, &function.Request{
			Args:        args,
			History:     in.History,
			ModelParams: params,
		})
		if err != nil {
			return nil, err
		}
		out.Usage = function.AddUsage(out.Usage, resp.Usage)

		text := agent.ResponseText(resp)
		action, answer, err := parseOutput(text)
		if err != nil {
			var pe *OutputParserError
			if !errors.As(err, &pe) || (!pe.SendToLLM && !a.conf.HandleParsingErrors) {
				return nil, err
			}
			action = &agent.Action{Tool: ExceptionTool, Input: pe.Observation, Log: text}
			a.record(out, &scratchpad, action, pe.Observation)
			continue
		}

		if action == nil {
			out.Answer, out.Finished = answer, true
			return a.finish(ctx, out), nil
		}

		_ = callbacks.OnEvent(ctx, &agent.ActionEvent{Action: action})
		a.record(out, &scratchpad, action, a.act(ctx, action, toolNames))
	}

	out.Answer = DoneAnswer
	return a.finish(ctx, out), nil
}

func (a *Agent) finish(ctx context.Context, out *agent.Output) *agent.Output {
	_ = callbacks.OnEvent(ctx, &agent.FinishEvent{Answer: out.Answer, Finished: out.Finished})
	_ = callbacks.OnEnd(ctx, &agent.CallbackOutput{Output: out})
	return out
}

func (a *Agent) record(out *agent.Output, scratchpad *strings.Builder, action *agent.Action, observation string) {
	out.Steps = append(out.Steps, &agent.Step{Action: action, Observation: observation})
	scratchpad.WriteString(action.Log)
	scratchpad.WriteString("\nObservation: ")
	scratchpad.WriteString(observation)
	scratchpad.WriteString("\nThought:")
}

// act 执行工具。工具不存在或执行失败都转为观察文本，不中断循环。
func (a *Agent) act(ctx context.Context, action *agent.Action, toolNames []string) string {
	known := false
	for _, name := range toolNames {
		if name == action.Tool {
			known = true
			break
		}
	}
	if !known {
		return fmt.Sprintf("%s is not a valid tool, try one of [%s].", action.Tool, strings.Join(toolNames, ", "))
	}

	result, err := tool.Invoke(ctx, a.conf.Tools, action.Tool, agent.ToolArgs(action.Input))
	if err != nil {
		logs.L().Warn("agent tool failed",
			zap.String("agent", a.conf.Name),
			zap.String("tool", action.Tool),
			zap.Error(err))
		return "Invalid tool call: " + err.Error()
	}
	return agent.Observation(result)
}
