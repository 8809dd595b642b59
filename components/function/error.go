package function

import (
	"errors"
	"fmt"

	"github.com/favbox/promptflow/schema"
)

var (
	// ErrNoImplementation 函数没有任何实现
	ErrNoImplementation = errors.New("no implementations")
	// ErrImplementationNotFound 请求的 ModelKey 没有对应实现
	ErrImplementationNotFound = errors.New("implementation not found")
	// ErrUnsupportedModelType 实现绑定的模型不能用于对话
	ErrUnsupportedModelType = errors.New("unsupported model type")
	// ErrMissingPrompt 实现没有可用的提示词
	ErrMissingPrompt = errors.New("missing prompt")
	// ErrEmptyEnrichment 提示词增强没有产出任何消息
	ErrEmptyEnrichment = errors.New("empty enrichment result")
	// ErrIncompatibleContext 已有的上下文不是字符串，无法追加
	ErrIncompatibleContext = errors.New("incompatible context type")
)

// Error 语义函数层的错误，用 errors.Is 匹配具体原因。
type Error struct {
	// Function 出错的函数或实现
	Function string
	Err      error
}

// NewError 包装 err。
func NewError(function string, err error) *Error {
	return &Error{Function: function, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("semantic function %s: %v", e.Function, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Issues 可以展开为多条错误描述的错误实现此接口。
type Issues interface {
	IssueList() []string
}

// Outcome 最外层边界返回给调用方的结果：要么有 Response，要么有 Errors。
type Outcome struct {
	Response         any            `json:"response,omitempty"`
	ResponseMetadata map[string]any `json:"responseMetadata,omitempty"`
	Errors           []string       `json:"errors,omitempty"`
}

// ErrorList 把错误展开为字符串列表。校验错误展开为每一条校验失败。
func ErrorList(err error) []string {
	if err == nil {
		return nil
	}

	var ve *schema.ValidationError
	if errors.As(err, &ve) {
		return append([]string(nil), ve.Issues...)
	}

	var is Issues
	if errors.As(err, &is) {
		if list := is.IssueList(); len(list) > 0 {
			return list
		}
	}

	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, ErrorList(e)...)
		}
		return out
	}

	return []string{err.Error()}
}
