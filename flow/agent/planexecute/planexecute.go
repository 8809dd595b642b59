// Package planexecute 实现 Plan-and-Execute 智能体：先生成编号计划，再逐步执行，可选自评估。
package planexecute

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/tool"
	"github.com/favbox/promptflow/flow/agent"
	"github.com/favbox/promptflow/logs"
	"github.com/favbox/promptflow/schema"
)

// ErrEmptyPlan 规划结果中没有可识别的步骤。
var ErrEmptyPlan = errors.New("planner returned no steps")

// Config Plan-and-Execute 智能体配置。
type Config struct {
	// Name 回调中的名称，默认 "PlanAndExecute"
	Name     string
	Planner  function.Function
	Executor function.Function
	// Oracle 自评估函数，SelfEvaluate 为 true 时必填
	Oracle   function.Function
	Tools    tool.Service
	ToolKeys []string
	// SelfEvaluate 工具调用后询问 Oracle 观察是否完成了步骤，不满意时重新执行一次
	SelfEvaluate bool
}

// Agent Plan-and-Execute 智能体，创建后只读，可并发使用。
type Agent struct {
	conf Config
}

var _ agent.Agent = (*Agent)(nil)

// NewAgent 创建 Plan-and-Execute 智能体。
func NewAgent(conf *Config) (*Agent, error) {
	if conf == nil || conf.Planner == nil || conf.Executor == nil {
		return nil, errors.New("plan-and-execute agent requires a planner and an executor")
	}
	if conf.SelfEvaluate && conf.Oracle == nil {
		return nil, errors.New("self evaluation requires an oracle")
	}

	c := *conf
	if c.Name == "" {
		c.Name = "PlanAndExecute"
	}
	return &Agent{conf: c}, nil
}

func (a *Agent) GetType() string {
	return "PlanAndExecute"
}

// run 一次调用的状态。
type run struct {
	in       *agent.Input
	plan     string
	tools    []*schema.ToolInfo
	history  []*schema.Message
	executed strings.Builder
	out      *agent.Output
}

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

	r := &run{in: in, history: slices.Clone(in.History), out: &agent.Output{}}

	toolDesc, _, err := agent.DescribeTools(ctx, a.conf.Tools, a.conf.ToolKeys)
	if err != nil {
		return nil, err
	}
	if a.conf.Tools != nil {
		if r.tools, err = a.conf.Tools.ToolsList(ctx, a.conf.ToolKeys); err != nil {
			return nil, fmt.Errorf("list tools: %w", err)
		}
	}

	resp, err := a.conf.Planner.Call(ctx, &function.Request{
		Args:        r.args(map[string]any{ArgGoal: in.Goal, ArgTools: toolDesc}),
		History:     in.History,
		ModelParams: in.ModelParams,
	})
	if err != nil {
		return nil, fmt.Errorf("generate plan: %w", err)
	}
	r.out.Usage = function.AddUsage(r.out.Usage, resp.Usage)

	steps := ParsePlan(agent.ResponseText(resp))
	if len(steps) == 0 {
		return nil, ErrEmptyPlan
	}
	r.plan = formatPlan(steps)
	_ = callbacks.OnEvent(ctx, &agent.PlanEvent{Steps: steps})

	for i, task := range steps {
		step, retried, err := a.executeStep(ctx, r, task)
		if err != nil {
			return nil, fmt.Errorf("execute step %d: %w", i+1, err)
		}
		r.out.Steps = append(r.out.Steps, step)
		fmt.Fprintf(&r.executed, "Step %d: %s\nResult: %s\n\n", i+1, task, step.Observation)
		_ = callbacks.OnEvent(ctx, &agent.StepEvent{Index: i, Step: step, Retried: retried})
	}

	r.out.Answer = r.out.Steps[len(r.out.Steps)-1].Observation
	r.out.Finished = true

	_ = callbacks.OnEvent(ctx, &agent.FinishEvent{Answer: r.out.Answer, Finished: true})
	_ = callbacks.OnEnd(ctx, &agent.CallbackOutput{Output: r.out})
	return r.out, nil
}

// executeStep 执行一步。自评估不满意时重新执行一次，第二次的结果无论如何都被接受。
func (a *Agent) executeStep(ctx context.Context, r *run, task string) (*agent.Step, bool, error) {
	var (
		step    *agent.Step
		msgs    []*schema.Message
		retried bool
	)

	for attempt := 0; attempt < 2; attempt++ {
		var (
			called bool
			err    error
		)
		step, msgs, called, err = a.attempt(ctx, r, task)
		if err != nil {
			return nil, false, err
		}
		if !a.conf.SelfEvaluate || !called || attempt > 0 {
			break
		}

		ok, err := a.evaluate(ctx, r, task, step.Observation)
		if err != nil {
			return nil, false, err
		}
		if ok {
			break
		}
		retried = true
	}

	r.history = append(r.history, schema.UserMessage(task))
	r.history = append(r.history, msgs...)
	return step, retried, nil
}

// attempt 调用执行函数，模型发起工具调用时执行工具并以工具结果作为观察。
func (a *Agent) attempt(ctx context.Context, r *run, task string) (*agent.Step, []*schema.Message, bool, error) {
	resp, err := a.conf.Executor.Call(ctx, &function.Request{
		Args: r.args(map[string]any{
			ArgGoal:          r.in.Goal,
			ArgPlan:          r.plan,
			ArgStep:          task,
			ArgExecutedSteps: r.executed.String(),
		}),
		History:     r.history,
		ModelParams: r.in.ModelParams,
		Tools:       r.tools,
	})
	if err != nil {
		return nil, nil, false, err
	}
	r.out.Usage = function.AddUsage(r.out.Usage, resp.Usage)

	step := &agent.Step{Task: task}
	msg := resp.Message
	if msg == nil || len(msg.ToolCalls) == 0 || a.conf.Tools == nil {
		step.Observation = agent.ResponseText(resp)
		return step, []*schema.Message{schema.AssistantMessage(step.Observation, nil)}, false, nil
	}

	calls := slices.Clone(msg.ToolCalls)
	msgs := make([]*schema.Message, 0, len(calls)+1)
	observations := make([]string, 0, len(calls))
	for i := range calls {
		if calls[i].ID == "" {
			calls[i].ID = uuid.NewString()
		}
	}
	msgs = append(msgs, schema.AssistantMessage(msg.Content, calls))

	for _, tc := range calls {
		action := &agent.Action{Tool: tc.Function.Name, Input: tc.Function.Arguments, Log: msg.Content}
		if step.Action == nil {
			step.Action = action
		}
		_ = callbacks.OnEvent(ctx, &agent.ActionEvent{Action: action})

		obs := a.observe(ctx, tc)
		observations = append(observations, obs)
		msgs = append(msgs, schema.ToolMessage(obs, tc.ID, schema.WithToolName(tc.Function.Name)))
	}
	step.Observation = strings.Join(observations, "\n")

	return step, msgs, true, nil
}

// observe 执行一次工具调用，失败转为观察文本。
func (a *Agent) observe(ctx context.Context, tc schema.ToolCall) string {
	var args map[string]any
	if err := sonic.UnmarshalString(tc.Function.Arguments, &args); err != nil || args == nil {
		args = agent.ToolArgs(tc.Function.Arguments)
	}

	result, err := tool.Invoke(ctx, a.conf.Tools, tc.Function.Name, args)
	if err != nil {
		logs.L().Warn("agent tool failed",
			zap.String("agent", a.conf.Name),
			zap.String("tool", tc.Function.Name),
			zap.Error(err))
		return "Invalid tool call: " + err.Error()
	}
	return agent.Observation(result)
}

// evaluate 询问 Oracle 观察是否完成了步骤，回答以 "no" 开头视为不满意。
func (a *Agent) evaluate(ctx context.Context, r *run, task, observation string) (bool, error) {
	resp, err := a.conf.Oracle.Call(ctx, &function.Request{
		Args: r.args(map[string]any{
			ArgGoal:        r.in.Goal,
			ArgStep:        task,
			ArgObservation: observation,
		}),
		ModelParams: r.in.ModelParams,
	})
	if err != nil {
		return false, fmt.Errorf("self evaluation: %w", err)
	}
	r.out.Usage = function.AddUsage(r.out.Usage, resp.Usage)

	verdict := strings.ToLower(strings.TrimSpace(agent.ResponseText(resp)))
	return !strings.HasPrefix(verdict, "no"), nil
}

func (r *run) args(own map[string]any) map[string]any {
	out := make(map[string]any, len(r.in.Args)+len(own))
	maps.Copy(out, r.in.Args)
	maps.Copy(out, own)
	return out
}
