package enrichment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/internal/jsonvalue"
)

// DefaultContextPath 增强结果默认写入的参数路径。
const DefaultContextPath = "context"

// Step 一个增强步骤：读取参数，返回增强后的参数。
//
// 步骤收到的参数是副本，可以直接修改；失败时调用方的参数保持不变。
type Step interface {
	// Name 步骤名称，用于回调和错误信息
	Name() string
	// Kind 步骤类型，例如 "SemanticSearch"
	Kind() string
	Enrich(ctx context.Context, args map[string]any) (*StepOutput, error)
}

// StepOutput 步骤的输出。
type StepOutput struct {
	Args map[string]any
	// Metadata 响应元信息，例如检索命中的 ID 与得分
	Metadata map[string]any
}

// StepError 增强步骤失败。
type StepError struct {
	Step   string
	Errors []error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("enrichment step %s failed: %s", e.Step, strings.Join(e.IssueList(), "; "))
}

// Unwrap 供 errors.Is/As 逐个匹配。
func (e *StepError) Unwrap() []error {
	return e.Errors
}

// IssueList 每个错误一条描述。
func (e *StepError) IssueList() []string {
	out := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		out = append(out, err.Error())
	}
	return out
}

func newStepError(step string, err error) error {
	var se *StepError
	if errors.As(err, &se) {
		return err
	}
	return &StepError{Step: step, Errors: []error{err}}
}

// appendContext 把 text 追加到 path 处已有的上下文，空行分隔。
// 已有值不是字符串时返回 ErrIncompatibleContext。
func appendContext(step string, args map[string]any, path, text string) error {
	if path == "" {
		path = DefaultContextPath
	}

	existing, ok := jsonvalue.Get(args, path)
	if !ok || existing == nil {
		return jsonvalue.Set(args, path, text)
	}

	s, ok := existing.(string)
	if !ok {
		return function.NewError(step, fmt.Errorf("%w: %s is %T", function.ErrIncompatibleContext, path, existing))
	}
	if s == "" {
		return jsonvalue.Set(args, path, text)
	}

	return jsonvalue.Set(args, path, s+"\n\n"+text)
}

// describe 把结构化的描述序列化为上下文文本，字符串原样返回。
func describe(v any) (string, error) {
	if s, ok := v.(string); ok {
		return s, nil
	}
	return sonic.ConfigStd.MarshalToString(v)
}
