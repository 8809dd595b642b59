package react_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/components/tool"
	"github.com/favbox/promptflow/flow/agent"
	"github.com/favbox/promptflow/flow/agent/react"
	"github.com/favbox/promptflow/logs"
	"github.com/favbox/promptflow/schema"
)

// scripted 按顺序返回预设的模型输出，超出后重复最后一条。
type scripted struct {
	mu      sync.Mutex
	outputs []string
	reqs    []*function.Request
	delay   time.Duration
}

func (s *scripted) fn() function.Function {
	return function.Lambda("react", func(ctx context.Context, req *function.Request) (*function.Response, error) {
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.reqs = append(s.reqs, req)
		out := s.outputs[min(len(s.reqs), len(s.outputs))-1]
		return &function.Response{Value: out, Usage: &schema.TokenUsage{TotalTokens: 10}}, nil
	})
}

func tools(t *testing.T) tool.Service {
	svc, err := tool.NewLocalService(
		&tool.LocalTool{
			Info: &schema.ToolInfo{Name: "search", Desc: "search the web"},
			Run: func(_ context.Context, args map[string]any) (any, error) {
				return "results for " + args["input"].(string), nil
			},
		},
		&tool.LocalTool{
			Info: &schema.ToolInfo{Name: "broken", Desc: "always fails"},
			Run: func(context.Context, map[string]any) (any, error) {
				return nil, errors.New("backend unavailable")
			},
		},
	)
	require.NoError(t, err)
	return svc
}

func TestReActFinishes(t *testing.T) {
	s := &scripted{outputs: []string{
		" I should search\nAction: search\nAction Input: go",
		" I now know the final answer\nFinal Answer: Go is a language",
	}}
	a, err := react.NewAgent(&react.Config{Function: s.fn(), Tools: tools(t)})
	require.NoError(t, err)

	var (
		events  []callbacks.CallbackEvent
		started []string
	)
	handler := callbacks.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
			started = append(started, string(info.Component))
			return ctx
		}).
		OnEventFn(func(ctx context.Context, info *callbacks.RunInfo, event callbacks.CallbackEvent) context.Context {
			events = append(events, event)
			return ctx
		}).Build()
	ctx := callbacks.InitCallbacks(context.Background(), nil, handler)

	out, err := a.Run(ctx, &agent.Input{Goal: "what is go?", ModelParams: model.Params{model.ParamTemperature: 0.1}})
	require.NoError(t, err)

	assert.True(t, out.Finished)
	assert.Equal(t, "Go is a language", out.Answer)
	require.Len(t, out.Steps, 1)
	assert.Equal(t, "search", out.Steps[0].Action.Tool)
	assert.Equal(t, "results for go", out.Steps[0].Observation)
	assert.Equal(t, 20, out.Usage.TotalTokens)

	require.Len(t, s.reqs, 2)
	first := s.reqs[0]
	assert.Equal(t, "what is go?", first.Args[react.ArgInput])
	assert.Equal(t, "search: search the web\nbroken: always fails", first.Args[react.ArgTools])
	assert.Equal(t, "search, broken", first.Args[react.ArgToolNames])
	assert.Equal(t, "", first.Args[react.ArgScratchpad])
	assert.Equal(t, []string{"Observation:"}, first.ModelParams.Stop())
	assert.Equal(t, 0.1, first.ModelParams[model.ParamTemperature])

	assert.Equal(t, " I should search\nAction: search\nAction Input: go\nObservation: results for go\nThought:",
		s.reqs[1].Args[react.ArgScratchpad])

	assert.Equal(t, []string{"Agent", "Tool"}, started)
	require.Len(t, events, 2)
	assert.Equal(t, "search", events[0].(*agent.ActionEvent).Action.Tool)
	assert.True(t, events[1].(*agent.FinishEvent).Finished)
}

func TestReActParsingErrors(t *testing.T) {
	s := &scripted{outputs: []string{"hmm", "Final Answer: ok"}}
	a, err := react.NewAgent(&react.Config{Function: s.fn(), Tools: tools(t)})
	require.NoError(t, err)

	out, err := a.Run(context.Background(), &agent.Input{Goal: "q"})
	require.NoError(t, err)
	assert.Equal(t, "ok", out.Answer)
	require.Len(t, out.Steps, 1)
	assert.Equal(t, react.ExceptionTool, out.Steps[0].Action.Tool)
	assert.Equal(t, react.MissingActionObservation, out.Steps[0].Observation)
	assert.True(t, strings.HasSuffix(s.reqs[1].Args[react.ArgScratchpad].(string),
		"Observation: "+react.MissingActionObservation+"\nThought:"))

	ambiguous := &scripted{outputs: []string{"Action: search\nAction Input: x\nFinal Answer: y"}}
	a, err = react.NewAgent(&react.Config{Function: ambiguous.fn(), Tools: tools(t), HandleParsingErrors: true})
	require.NoError(t, err)

	var errComponents []string
	handler := callbacks.NewHandlerBuilder().OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
		errComponents = append(errComponents, string(info.Component))
		return ctx
	}).Build()
	_, err = a.Run(callbacks.InitCallbacks(context.Background(), nil, handler), &agent.Input{Goal: "q"})
	assert.ErrorIs(t, err, react.ErrAmbiguousOutput)
	assert.Equal(t, []string{"Agent"}, errComponents)

	strict := &scripted{outputs: []string{"Action Input: x\nAction: search"}}
	a, err = react.NewAgent(&react.Config{Function: strict.fn(), Tools: tools(t)})
	require.NoError(t, err)
	_, err = a.Run(context.Background(), &agent.Input{Goal: "q"})
	var pe *react.OutputParserError
	require.ErrorAs(t, err, &pe)
	assert.False(t, pe.SendToLLM)

	a, err = react.NewAgent(&react.Config{Function: strict.fn(), Tools: tools(t), HandleParsingErrors: true, MaxIterations: 2})
	require.NoError(t, err)
	out, err = a.Run(context.Background(), &agent.Input{Goal: "q"})
	require.NoError(t, err)
	assert.Equal(t, react.DoneAnswer, out.Answer)
	assert.Len(t, out.Steps, 2)
}

func TestReActBounds(t *testing.T) {
	loop := "Action: search\nAction Input: again"

	s := &scripted{outputs: []string{loop}}
	a, err := react.NewAgent(&react.Config{Function: s.fn(), Tools: tools(t)})
	require.NoError(t, err)
	out, err := a.Run(context.Background(), &agent.Input{Goal: "q"})
	require.NoError(t, err)
	assert.False(t, out.Finished)
	assert.Equal(t, react.DoneAnswer, out.Answer)
	assert.Len(t, out.Steps, react.DefaultMaxIterations)

	slow := &scripted{outputs: []string{loop}, delay: 20 * time.Millisecond}
	a, err = react.NewAgent(&react.Config{Function: slow.fn(), Tools: tools(t), MaxExecutionTime: 10 * time.Millisecond})
	require.NoError(t, err)
	out, err = a.Run(context.Background(), &agent.Input{Goal: "q"})
	require.NoError(t, err)
	assert.Equal(t, react.DoneAnswer, out.Answer)
	assert.Len(t, out.Steps, 1)

	_, err = react.NewAgent(&react.Config{})
	assert.Error(t, err)
}

func TestReActToolFailures(t *testing.T) {
	defer logs.SetLogger(nil)
	core, recorded := observer.New(zap.WarnLevel)
	logs.SetLogger(zap.New(core))

	s := &scripted{outputs: []string{
		"Action: broken\nAction Input: x",
		"Action: missing\nAction Input: x",
		"Final Answer: gave up",
	}}
	a, err := react.NewAgent(&react.Config{Function: s.fn(), Tools: tools(t)})
	require.NoError(t, err)

	out, err := a.Run(context.Background(), &agent.Input{Goal: "q"})
	require.NoError(t, err)
	require.Len(t, out.Steps, 2)
	assert.Equal(t, "Invalid tool call: backend unavailable", out.Steps[0].Observation)
	assert.Equal(t, "missing is not a valid tool, try one of [search, broken].", out.Steps[1].Observation)
	assert.Equal(t, "gave up", out.Answer)

	require.Equal(t, 1, recorded.Len())
	assert.Equal(t, "broken", recorded.All()[0].ContextMap()["tool"])
}
