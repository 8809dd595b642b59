// Package promptset 定义提示词集合服务的契约，智能体的提示词模板来自这里。
package promptset

import (
	"context"

	"github.com/favbox/promptflow/schema"
)

// Prompt 一条提示词模板。
type Prompt struct {
	// Key 模板在集合中的用途，例如 "planner"、"executor"、"oracle"
	Key     string          `json:"key" yaml:"key"`
	Role    schema.RoleType `json:"role" yaml:"role"`
	Content string          `json:"content" yaml:"content"`
}

// PromptSet 面向某项技能的一组提示词。
type PromptSet struct {
	ID      string    `json:"id" yaml:"id"`
	Name    string    `json:"name" yaml:"name"`
	Skill   string    `json:"skill" yaml:"skill"`
	Prompts []*Prompt `json:"prompts" yaml:"prompts"`
}

// Find 返回第一个 Key 匹配的提示词。
func (ps *PromptSet) Find(key string) (*Prompt, bool) {
	for _, p := range ps.Prompts {
		if p.Key == key {
			return p, true
		}
	}
	return nil, false
}

// Message 把提示词转换为消息模板。
func (p *Prompt) Message() *schema.Message {
	role := p.Role
	if role == "" {
		role = schema.User
	}
	return &schema.Message{Role: role, Content: p.Content}
}

// Service 提示词集合服务。
//
//go:generate  mockgen -destination ../../internal/mock/components/promptset/Service_mock.go --package promptset -source interface.go
type Service interface {
	// PromptSetsBySkill 返回工作空间中某项技能的提示词集合
	PromptSetsBySkill(ctx context.Context, workspaceID, skill string) ([]*PromptSet, error)
}
