// Package agent 定义智能体的调用契约和回调事件。
//
// ReAct 和 Plan-and-Execute 两种循环分别在 react、planexecute 子包中实现，由 factory 按 Kind 创建。
package agent

import (
	"context"
	"fmt"

	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/schema"
)

// Kind 智能体类型，取值封闭。
type Kind string

const (
	// KindReAct 推理与行动交替的循环，也称 MRKL
	KindReAct Kind = "react"
	// KindPlanAndExecute 先生成计划再逐步执行
	KindPlanAndExecute Kind = "plan_and_execute"
)

// ParseKind 解析类型名，"mrkl" 视为 KindReAct。
func ParseKind(s string) (Kind, error) {
	switch s {
	case string(KindReAct), "mrkl", "MRKL":
		return KindReAct, nil
	case string(KindPlanAndExecute), "plan-and-execute":
		return KindPlanAndExecute, nil
	default:
		return "", fmt.Errorf("unknown agent kind: %q", s)
	}
}

// Input 一次智能体调用。
type Input struct {
	// Goal 用户的目标或问题
	Goal string
	// Args 传给提示词模板的附加参数
	Args    map[string]any
	History []*schema.Message
	// ModelParams 覆盖模型参数
	ModelParams model.Params
}

// Action 一次工具调用。
type Action struct {
	Tool string `json:"tool"`
	// Input 工具的原始入参文本
	Input string `json:"input"`
	// Log 模型产出的推理文本
	Log string `json:"log,omitempty"`
}

// Step 一次行动及其观察结果。
type Step struct {
	// Task 计划中的步骤描述，ReAct 为空
	Task        string  `json:"task,omitempty"`
	Action      *Action `json:"action,omitempty"`
	Observation string  `json:"observation"`
}

// Output 智能体的返回。
type Output struct {
	Answer string `json:"answer"`
	// Finished 为 false 表示达到迭代或时间上限后结束
	Finished bool               `json:"finished"`
	Steps    []*Step            `json:"steps,omitempty"`
	Usage    *schema.TokenUsage `json:"usage,omitempty"`
}

// Agent 智能体。实现必须可以被并发调用。
type Agent interface {
	Run(ctx context.Context, in *Input) (*Output, error)
}
