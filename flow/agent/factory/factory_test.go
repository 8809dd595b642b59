package factory_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/components/promptset"
	"github.com/favbox/promptflow/components/tool"
	"github.com/favbox/promptflow/flow/agent"
	"github.com/favbox/promptflow/flow/agent/factory"
	mockmodel "github.com/favbox/promptflow/internal/mock/components/model"
	mockpromptset "github.com/favbox/promptflow/internal/mock/components/promptset"
	"github.com/favbox/promptflow/schema"
)

func reply(content string) *model.ChatResponse {
	return &model.ChatResponse{Choices: []model.Choice{{Message: schema.AssistantMessage(content, nil)}}}
}

func TestNewReAct(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cm := mockmodel.NewMockChatModel(ctrl)

	tools, err := tool.NewLocalService(&tool.LocalTool{
		Info: &schema.ToolInfo{Name: "search", Desc: "search the web"},
		Run:  func(context.Context, map[string]any) (any, error) { return "ok", nil },
	})
	require.NoError(t, err)

	cm.EXPECT().CreateChatCompletion(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
			assert.Contains(t, req.Prompt.Context, "search: search the web")
			assert.Contains(t, req.Prompt.Context, "should be one of [search]")
			require.Len(t, req.Prompt.Messages, 1)
			assert.Equal(t, "Question: what is 6*7?\nThought:", req.Prompt.Messages[0].Content)
			assert.Equal(t, []string{"Observation:"}, req.ModelParams.Stop())
			return reply("I now know\nFinal Answer: 42"), nil
		})

	a, err := factory.New(ctx, &factory.Config{
		Kind:      agent.KindReAct,
		Model:     cm,
		ModelInfo: model.Info{Key: "gpt", Name: "gpt-4o", Type: model.TypeChat},
		Tools:     tools,
	})
	require.NoError(t, err)

	out, err := a.Run(ctx, &agent.Input{Goal: "what is 6*7?"})
	require.NoError(t, err)
	assert.Equal(t, "42", out.Answer)
	assert.True(t, out.Finished)
}

func TestNewPlanAndExecuteFromPromptSets(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cm := mockmodel.NewMockChatModel(ctrl)
	svc := mockpromptset.NewMockService(ctrl)

	svc.EXPECT().PromptSetsBySkill(gomock.Any(), "ws", "planning").Return([]*promptset.PromptSet{
		{ID: "other", Prompts: []*promptset.Prompt{{Key: "unrelated", Content: "x"}}},
		{ID: "ps", Prompts: []*promptset.Prompt{
			{Key: factory.PromptKeyPlanner, Role: schema.System, Content: "Custom planner."},
			{Key: factory.PromptKeyPlanner, Content: "Goal: {goal}"},
		}},
	}, nil).Times(1)

	cm.EXPECT().CreateChatCompletion(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
			if req.Prompt.Context == "Custom planner." {
				assert.Equal(t, "Goal: ship it", req.Prompt.Messages[0].Content)
				return reply("1. build\n2. release"), nil
			}
			// 执行器使用内置提示词
			assert.True(t, strings.HasPrefix(req.Prompt.Context, "You are a diligent"))
			return reply("done: " + req.Prompt.Messages[0].Content[strings.LastIndex(req.Prompt.Messages[0].Content, "\n")+1:]), nil
		}).Times(6)

	f := factory.NewFactory(svc, 0)
	conf := &factory.Config{
		Kind:        agent.KindPlanAndExecute,
		Name:        "shipper",
		Model:       cm,
		WorkspaceID: "ws",
		Skill:       "planning",
	}

	for range 2 {
		a, err := f.New(ctx, conf)
		require.NoError(t, err)
		out, err := a.Run(ctx, &agent.Input{Goal: "ship it"})
		require.NoError(t, err)
		require.Len(t, out.Steps, 2)
		assert.Equal(t, "done: build", out.Steps[0].Observation)
		assert.Equal(t, "done: release", out.Answer)
	}
}

func TestNewErrors(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	cm := mockmodel.NewMockChatModel(ctrl)

	_, err := factory.New(ctx, &factory.Config{Kind: agent.KindReAct})
	assert.Error(t, err)

	_, err = factory.New(ctx, &factory.Config{Kind: "chain", Model: cm})
	assert.ErrorContains(t, err, "unknown agent kind")

	a, err := factory.New(ctx, &factory.Config{Kind: agent.KindPlanAndExecute, Model: cm, SelfEvaluate: true})
	require.NoError(t, err)
	assert.NotNil(t, a)
}
