package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/document/parser"
	"github.com/favbox/promptflow/schema"
)

// FileLoaderOptions FileLoader 自定义的选项。
type FileLoaderOptions struct {
	// BaseDir 相对路径的基准目录
	BaseDir string
}

// WithBaseDir 相对路径按 dir 解析。
func WithBaseDir(dir string) LoaderOption {
	return WrapLoaderImplSpecificOptFn(func(o *FileLoaderOptions) {
		o.BaseDir = dir
	})
}

// FileLoader 从本地文件加载文档，按扩展名选择解析器。
type FileLoader struct {
	parser parser.Parser
}

// NewFileLoader 创建本地文件加载器，p 为 nil 时使用默认的 ExtParser。
func NewFileLoader(p parser.Parser) *FileLoader {
	if p == nil {
		p = parser.NewExtParser(nil)
	}
	return &FileLoader{parser: p}
}

func (l *FileLoader) GetType() string {
	return "FileLoader"
}

func (l *FileLoader) Load(ctx context.Context, src Source, opts ...LoaderOption) (docs []*schema.Document, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, l.GetType(), components.ComponentOfLoader)
	ctx = callbacks.OnStart(ctx, &LoaderCallbackInput{Source: src})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	path := strings.TrimPrefix(src.URI, "file://")
	if path == "" {
		return nil, fmt.Errorf("file loader: empty uri")
	}

	if base := GetLoaderImplSpecificOptions(&FileLoaderOptions{}, opts...).BaseDir; base != "" && !filepath.IsAbs(path) {
		path = filepath.Join(base, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("file loader: %w", err)
	}
	defer f.Close()

	opt := GetLoaderCommonOptions(&LoaderOptions{}, opts...)
	parserOpts := append([]parser.Option{parser.WithURI(path)}, opt.ParserOptions...)

	if docs, err = l.parser.Parse(ctx, f, parserOpts...); err != nil {
		return nil, fmt.Errorf("file loader: parse %s: %w", path, err)
	}

	// 没有 ID 的文档以文件路径命名，切分后的块 ID 因此在不同文件之间不会重复
	for i, doc := range docs {
		if doc == nil || doc.ID != "" {
			continue
		}
		doc.ID = path
		if len(docs) > 1 {
			doc.ID = fmt.Sprintf("%s:%d", path, i)
		}
	}

	_ = callbacks.OnEnd(ctx, &LoaderCallbackOutput{Source: src, Docs: docs})
	return docs, nil
}
