package parser

import (
	"context"
	"io"
	"strings"

	"github.com/favbox/promptflow/schema"
)

// TextParserOptions TextParser 自定义的选项。
type TextParserOptions struct {
	// TrimSpace 去掉内容首尾的空白
	TrimSpace bool
}

// WithTrimSpace 让 TextParser 去掉内容首尾的空白。
func WithTrimSpace() Option {
	return WrapImplSpecificOptFn(func(o *TextParserOptions) {
		o.TrimSpace = true
	})
}

// TextParser 把全部内容作为一个文档。
type TextParser struct{}

func (p TextParser) Parse(_ context.Context, reader io.Reader, opts ...Option) ([]*schema.Document, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}

	opt := GetCommonOptions(&Options{}, opts...)
	content := string(data)
	if GetImplSpecificOptions(&TextParserOptions{}, opts...).TrimSpace {
		content = strings.TrimSpace(content)
	}

	meta := make(map[string]any, len(opt.ExtraMeta)+1)
	for k, v := range opt.ExtraMeta {
		meta[k] = v
	}

	doc := (&schema.Document{Content: content, MetaData: meta}).WithSource(opt.URI)
	return []*schema.Document{doc}, nil
}
