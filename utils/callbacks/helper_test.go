package callbacks

import (
	"context"
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/components/tool"
	"github.com/favbox/promptflow/flow/agent"
	"github.com/favbox/promptflow/schema"
)

func stage(ctx context.Context, comp components.Component, name string) context.Context {
	return callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{Name: name, Type: string(comp), Component: comp})
}

func TestHandlerHelper(t *testing.T) {
	convey.Convey("typed dispatch", t, func() {
		var (
			gotModel *model.CallbackInput
			gotUsage *schema.TokenUsage
			gotTool  string
			gotErr   error
			gotEvent callbacks.CallbackEvent
		)

		handler := NewHandlerHelper().
			ChatModel(&ModelCallbackHandler{
				OnStart: func(ctx context.Context, info *callbacks.RunInfo, input *model.CallbackInput) context.Context {
					gotModel = input
					return ctx
				},
				OnEnd: func(ctx context.Context, info *callbacks.RunInfo, output *model.CallbackOutput) context.Context {
					gotUsage = output.TokenUsage
					return ctx
				},
			}).
			Tool(&ToolCallbackHandler{
				OnStart: func(ctx context.Context, info *callbacks.RunInfo, input *tool.CallbackInput) context.Context {
					gotTool = input.Name
					return ctx
				},
				OnError: func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
					gotErr = err
					return ctx
				},
			}).
			Agent(&AgentCallbackHandler{
				OnEvent: func(ctx context.Context, info *callbacks.RunInfo, event callbacks.CallbackEvent) context.Context {
					gotEvent = event
					return ctx
				},
			}).
			Handler()

		ctx := callbacks.InitCallbacks(context.Background(), nil, handler)

		req := &model.ChatRequest{Model: "gpt"}
		mctx := callbacks.OnStart(stage(ctx, components.ComponentOfChatModel, "gpt"), &model.CallbackInput{Request: req})
		callbacks.OnEnd(mctx, &model.CallbackOutput{TokenUsage: &schema.TokenUsage{TotalTokens: 3}})
		convey.So(gotModel.Request, convey.ShouldEqual, req)
		convey.So(gotUsage.TotalTokens, convey.ShouldEqual, 3)

		boom := errors.New("boom")
		tctx := callbacks.OnStart(stage(ctx, components.ComponentOfTool, "search"), &tool.CallbackInput{Name: "search"})
		callbacks.OnError(tctx, boom)
		convey.So(gotTool, convey.ShouldEqual, "search")
		convey.So(gotErr, convey.ShouldEqual, boom)

		actx := callbacks.OnStart(stage(ctx, components.ComponentOfAgent, "react"), &agent.CallbackInput{})
		callbacks.OnEvent(actx, &agent.FinishEvent{Answer: "ok"})
		convey.So(gotEvent.(*agent.FinishEvent).Answer, convey.ShouldEqual, "ok")
	})

	convey.Convey("needed", t, func() {
		h := NewHandlerHelper().
			ChatModel(&ModelCallbackHandler{OnEnd: func(ctx context.Context, _ *callbacks.RunInfo, _ *model.CallbackOutput) context.Context { return ctx }}).
			Handler().(callbacks.TimingChecker)

		ctx := context.Background()
		modelInfo := &callbacks.RunInfo{Component: components.ComponentOfChatModel}
		convey.So(h.Needed(ctx, modelInfo, callbacks.TimingOnEnd), convey.ShouldBeTrue)
		convey.So(h.Needed(ctx, modelInfo, callbacks.TimingOnStart), convey.ShouldBeFalse)
		convey.So(h.Needed(ctx, &callbacks.RunInfo{Component: components.ComponentOfTool}, callbacks.TimingOnEnd), convey.ShouldBeFalse)
		convey.So(h.Needed(ctx, nil, callbacks.TimingOnEnd), convey.ShouldBeFalse)
	})
}
