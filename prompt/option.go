package prompt

import (
	"github.com/eino-contrib/jsonschema"

	"github.com/favbox/promptflow/schema"
)

// Option 提示词模板的创建选项。
type Option func(t *Template)

// WithFormatType 设置模板语法，默认 schema.FString。
func WithFormatType(ft schema.FormatType) Option {
	return func(t *Template) {
		t.formatType = ft
	}
}

// WithSnippets 设置固定片段，渲染时覆盖同名参数。
func WithSnippets(snippets map[string]any) Option {
	return func(t *Template) {
		t.snippets = snippets
	}
}

// WithArgsSchema 渲染前用 JSON Schema 校验参数。
func WithArgsSchema(sc *jsonschema.Schema) Option {
	return func(t *Template) {
		t.argsSchema = sc
	}
}

// WithTokenizer 设置上下文长度检查使用的分词器，默认 WhitespaceTokenizer。
func WithTokenizer(tk Tokenizer) Option {
	return func(t *Template) {
		if tk != nil {
			t.tokenizer = tk
		}
	}
}
