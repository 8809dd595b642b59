// Package factory 按智能体类型创建智能体，提示词来自提示词集合服务或内置默认值。
package factory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/components/promptset"
	"github.com/favbox/promptflow/components/tool"
	"github.com/favbox/promptflow/enrichment"
	"github.com/favbox/promptflow/flow/agent"
	"github.com/favbox/promptflow/flow/agent/planexecute"
	"github.com/favbox/promptflow/flow/agent/react"
	semantic "github.com/favbox/promptflow/function"
	"github.com/favbox/promptflow/prompt"
	"github.com/favbox/promptflow/schema"
)

// 提示词集合中各用途的 key。
const (
	PromptKeyReAct    = "react"
	PromptKeyPlanner  = "planner"
	PromptKeyExecutor = "executor"
	PromptKeyOracle   = "oracle"
)

// Config 创建智能体的配置。
type Config struct {
	Kind agent.Kind
	Name string

	Model     model.ChatModel
	ModelInfo model.Info

	Tools    tool.Service
	ToolKeys []string

	// WorkspaceID 和 Skill 定位提示词集合，Skill 为空时使用内置提示词
	WorkspaceID string
	Skill       string

	// ReAct
	MaxIterations       int
	MaxExecutionTime    time.Duration
	HandleParsingErrors bool

	// Plan-and-Execute
	SelfEvaluate bool
}

// Factory 持有带缓存的提示词集合服务，可并发使用。
type Factory struct {
	prompts promptset.Service
}

// NewFactory 创建工厂，svc 会包一层 TTL 缓存；svc 为 nil 时只使用内置提示词。
func NewFactory(svc promptset.Service, ttl time.Duration) *Factory {
	f := &Factory{}
	if svc != nil {
		f.prompts = promptset.NewCached(svc, ttl)
	}
	return f
}

// New 使用内置提示词创建智能体。
func New(ctx context.Context, conf *Config) (agent.Agent, error) {
	return (&Factory{}).New(ctx, conf)
}

// New 按 Kind 创建智能体。
func (f *Factory) New(ctx context.Context, conf *Config) (agent.Agent, error) {
	if conf == nil || conf.Model == nil {
		return nil, errors.New("agent factory requires a chat model")
	}

	sets, err := f.promptSets(ctx, conf)
	if err != nil {
		return nil, err
	}

	switch conf.Kind {
	case agent.KindReAct:
		fn := f.build(conf, "react", findMessages(sets, PromptKeyReAct, react.DefaultMessages))
		return react.NewAgent(&react.Config{
			Name:                conf.Name,
			Function:            fn,
			Tools:               conf.Tools,
			ToolKeys:            conf.ToolKeys,
			MaxIterations:       conf.MaxIterations,
			MaxExecutionTime:    conf.MaxExecutionTime,
			HandleParsingErrors: conf.HandleParsingErrors,
		})
	case agent.KindPlanAndExecute:
		pc := &planexecute.Config{
			Name:         conf.Name,
			Planner:      f.build(conf, "planner", findMessages(sets, PromptKeyPlanner, planexecute.DefaultPlannerMessages)),
			Executor:     f.build(conf, "executor", findMessages(sets, PromptKeyExecutor, planexecute.DefaultExecutorMessages)),
			Tools:        conf.Tools,
			ToolKeys:     conf.ToolKeys,
			SelfEvaluate: conf.SelfEvaluate,
		}
		if conf.SelfEvaluate {
			pc.Oracle = f.build(conf, "oracle", findMessages(sets, PromptKeyOracle, planexecute.DefaultOracleMessages))
		}
		return planexecute.NewAgent(pc)
	default:
		return nil, fmt.Errorf("unknown agent kind: %q", conf.Kind)
	}
}

func (f *Factory) promptSets(ctx context.Context, conf *Config) ([]*promptset.PromptSet, error) {
	if f.prompts == nil || conf.Skill == "" {
		return nil, nil
	}
	sets, err := f.prompts.PromptSetsBySkill(ctx, conf.WorkspaceID, conf.Skill)
	if err != nil {
		return nil, fmt.Errorf("load prompt sets for skill %s: %w", conf.Skill, err)
	}
	return sets, nil
}

func (f *Factory) build(conf *Config, role string, msgs []schema.MessagesTemplate) function.Function {
	key := conf.ModelInfo.Key
	if key == "" {
		key = role
	}
	name := role
	if conf.Name != "" {
		name = conf.Name + "." + role
	}

	impl := semantic.NewImplementation(key, conf.ModelInfo, conf.Model,
		semantic.WithPrompt(enrichment.NewPipeline(prompt.New(msgs))),
		semantic.WithDefault())
	return semantic.New(name, []*semantic.Implementation{impl})
}

// findMessages 取第一个包含该 key 的集合中全部同 key 的提示词，保持顺序；没有时使用默认值。
func findMessages(sets []*promptset.PromptSet, key string, fallback func() []schema.MessagesTemplate) []schema.MessagesTemplate {
	for _, ps := range sets {
		var msgs []schema.MessagesTemplate
		for _, p := range ps.Prompts {
			if p.Key == key {
				msgs = append(msgs, p.Message())
			}
		}
		if len(msgs) > 0 {
			return msgs
		}
	}
	return fallback()
}
