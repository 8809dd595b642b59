// Package parser 把原始内容解析为文档。
package parser

import (
	"context"
	"io"

	"github.com/favbox/promptflow/schema"
)

// Parser 从 reader 读取内容并解析为文档。
type Parser interface {
	Parse(ctx context.Context, reader io.Reader, opts ...Option) ([]*schema.Document, error)
}
