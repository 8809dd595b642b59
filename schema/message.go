package schema

import (
	"fmt"
	"strings"
)

// RoleType 消息角色类型。
type RoleType string

const (
	// Assistant 助手角色，消息由聊天模型返回。
	Assistant RoleType = "assistant"
	// User 用户角色，消息来自用户输入。
	User RoleType = "user"
	// System 系统角色，模型请求组装时并入系统上下文。
	System RoleType = "system"
	// Tool 工具角色，消息内容为工具调用输出。
	Tool RoleType = "tool"
)

// FunctionCall 助手消息中的函数调用。
type FunctionCall struct {
	// Name 函数名称
	Name string `json:"name,omitempty"`
	// Arguments JSON 格式的参数
	Arguments string `json:"arguments,omitempty"`
}

// ToolCall 助手消息中的一次工具调用。
type ToolCall struct {
	// ID 工具调用的唯一标识
	ID string `json:"id"`
	// Type 默认 "function"
	Type string `json:"type"`
	// Function 要调用的函数
	Function FunctionCall `json:"function"`

	Extra map[string]any `json:"extra,omitempty"`
}

// ImageURLDetail 图像质量级别。
type ImageURLDetail string

const (
	ImageURLDetailHigh ImageURLDetail = "high"
	ImageURLDetailLow  ImageURLDetail = "low"
	ImageURLDetailAuto ImageURLDetail = "auto"
)

// MessagePartType 多模态消息部分的类型。
type MessagePartType string

const (
	// MessagePartTypeText 文本
	MessagePartTypeText MessagePartType = "text"
	// MessagePartTypeImageURL 图像 URL
	MessagePartTypeImageURL MessagePartType = "image_url"
)

// MessageInputImage 用户输入中的图像。
type MessageInputImage struct {
	// URL 传统 URL 或 RFC-2397 data URL
	URL string `json:"url,omitempty"`
	// Detail 图像质量
	Detail ImageURLDetail `json:"detail,omitempty"`
	// MIMEType 例如 "image/png"
	MIMEType string `json:"mime_type,omitempty"`
}

// MessageInputPart 用户输入的一个多模态部分。
type MessageInputPart struct {
	Type MessagePartType `json:"type"`

	// Text Type 为 text 时使用
	Text string `json:"text,omitempty"`

	// Image Type 为 image_url 时使用
	Image *MessageInputImage `json:"image,omitempty"`
}

// TokenUsage 一次模型调用的 token 用量。
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ResponseMeta 模型响应的元信息。
type ResponseMeta struct {
	// FinishReason 结束原因，例如 "stop"、"length"、"tool_calls"
	FinishReason string `json:"finish_reason,omitempty"`
	// Usage token 用量
	Usage *TokenUsage `json:"usage,omitempty"`
}

// Message 聊天消息。
//
// 同一结构用于模型输入、模型输出、工具观察结果以及智能体的对话历史。
//
//	msg := &schema.Message{
//		Role:    schema.User,
//		Content: "what is the weather of {city}?",
//	}
type Message struct {
	// Role 消息角色
	Role RoleType `json:"role"`

	// Content 文本内容
	Content string `json:"content"`

	// UserInputMultiContent 用户的多模态输入，视觉请求的图像放在这里
	UserInputMultiContent []MessageInputPart `json:"user_input_multi_content,omitempty"`

	// Name 消息名称
	Name string `json:"name,omitempty"`

	// ToolCalls 仅用于 Assistant 消息
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID 仅用于 Tool 消息
	ToolCallID string `json:"tool_call_id,omitempty"`
	// ToolName 仅用于 Tool 消息
	ToolName string `json:"tool_name,omitempty"`

	ResponseMeta *ResponseMeta `json:"response_meta,omitempty"`

	// Extra 实现方的自定义信息
	Extra map[string]any `json:"extra,omitempty"`
}

// String 返回便于阅读的消息文本。
//
//	msg := schema.ToolMessage("{...}", "callxxxx")
//	fmt.Println(msg.String())
//	// 输出:
//	//   tool: {...}
//	//   tool_call_id: callxxxx
func (m *Message) String() string {
	sb := &strings.Builder{}
	sb.WriteString(fmt.Sprintf("%s: %s", m.Role, m.Content))
	for _, part := range m.UserInputMultiContent {
		if part.Type == MessagePartTypeImageURL && part.Image != nil {
			sb.WriteString(fmt.Sprintf("\nimage: %s", part.Image.URL))
		}
	}
	if len(m.ToolCalls) > 0 {
		sb.WriteString("\ntool_calls:\n")
		for _, tc := range m.ToolCalls {
			sb.WriteString(fmt.Sprintf("%+v\n", tc))
		}
	}
	if m.ToolCallID != "" {
		sb.WriteString(fmt.Sprintf("\ntool_call_id: %s", m.ToolCallID))
	}
	if m.ToolName != "" {
		sb.WriteString(fmt.Sprintf("\ntool_call_name: %s", m.ToolName))
	}
	if m.ResponseMeta != nil {
		sb.WriteString(fmt.Sprintf("\nfinish_reason: %s", m.ResponseMeta.FinishReason))
		if m.ResponseMeta.Usage != nil {
			sb.WriteString(fmt.Sprintf("\nusage: %v", m.ResponseMeta.Usage))
		}
	}

	return sb.String()
}

// AppendImage 在消息末尾追加一张图像。
//
// 纯文本消息会先把 Content 转为一个文本部分，保证模型一次看到文字和图像。
func (m *Message) AppendImage(url string, detail ImageURLDetail) {
	if len(m.UserInputMultiContent) == 0 && m.Content != "" {
		m.UserInputMultiContent = append(m.UserInputMultiContent, MessageInputPart{
			Type: MessagePartTypeText,
			Text: m.Content,
		})
	}
	m.UserInputMultiContent = append(m.UserInputMultiContent, MessageInputPart{
		Type:  MessagePartTypeImageURL,
		Image: &MessageInputImage{URL: url, Detail: detail},
	})
}

// SystemMessage 创建系统消息。
func SystemMessage(content string) *Message {
	return &Message{
		Role:    System,
		Content: content,
	}
}

// AssistantMessage 创建助手消息。
func AssistantMessage(content string, toolCalls []ToolCall) *Message {
	return &Message{
		Role:      Assistant,
		Content:   content,
		ToolCalls: toolCalls,
	}
}

// UserMessage 创建用户消息。
func UserMessage(content string) *Message {
	return &Message{
		Role:    User,
		Content: content,
	}
}

type toolMessageOptions struct {
	toolName string
}

// ToolMessageOption 工具消息选项。
type ToolMessageOption func(*toolMessageOptions)

// WithToolName 设置工具名称。
func WithToolName(name string) ToolMessageOption {
	return func(o *toolMessageOptions) {
		o.toolName = name
	}
}

// ToolMessage 创建工具消息。
func ToolMessage(content string, toolCallID string, opts ...ToolMessageOption) *Message {
	o := &toolMessageOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return &Message{
		Role:       Tool,
		Content:    content,
		ToolCallID: toolCallID,
		ToolName:   o.toolName,
	}
}

// FilterRole 返回不属于给定角色的消息，保持原有顺序。
func FilterRole(msgs []*Message, role RoleType) []*Message {
	out := make([]*Message, 0, len(msgs))
	for _, m := range msgs {
		if m != nil && m.Role != role {
			out = append(out, m)
		}
	}
	return out
}

// JoinRole 以空行连接给定角色的消息内容。
func JoinRole(msgs []*Message, role RoleType) string {
	var parts []string
	for _, m := range msgs {
		if m != nil && m.Role == role && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	return strings.Join(parts, "\n\n")
}
