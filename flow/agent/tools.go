package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/tool"
)

// DescribeTools 返回 "name: description" 每行一个的工具说明，以及工具名称列表。
func DescribeTools(ctx context.Context, svc tool.Service, keys []string) (string, []string, error) {
	if svc == nil {
		return "", nil, nil
	}

	metas, err := svc.AllMetadata(ctx, keys)
	if err != nil {
		return "", nil, fmt.Errorf("list tools: %w", err)
	}

	lines := make([]string, 0, len(metas))
	names := make([]string, 0, len(metas))
	for _, m := range metas {
		lines = append(lines, m.Name+": "+m.Description)
		names = append(names, m.Name)
	}
	return strings.Join(lines, "\n"), names, nil
}

// ToolArgs 把工具入参文本转换为参数：JSON 对象直接使用，其他文本放在 "input" 下。
func ToolArgs(input string) map[string]any {
	trimmed := strings.TrimSpace(input)
	if strings.HasPrefix(trimmed, "{") {
		var m map[string]any
		if err := sonic.UnmarshalString(trimmed, &m); err == nil {
			return m
		}
	}
	return map[string]any{"input": input}
}

// Observation 把工具结果转换为观察文本。
func Observation(result any) string {
	switch v := result.(type) {
	case nil:
		return ""
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}

	s, err := sonic.ConfigStd.MarshalToString(result)
	if err != nil {
		return fmt.Sprint(result)
	}
	return s
}

// ResponseText 取语义函数返回的文本：字符串值优先，其次是消息文本，最后序列化结构化值。
func ResponseText(resp *function.Response) string {
	if s, ok := resp.Value.(string); ok {
		return s
	}
	if resp.Message != nil && resp.Message.Content != "" {
		return resp.Message.Content
	}
	return Observation(resp.Value)
}
