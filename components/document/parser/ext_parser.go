package parser

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"github.com/favbox/promptflow/schema"
)

// ExtParserConfig 按扩展名选择解析器的配置。
type ExtParserConfig struct {
	// Parsers 扩展名到解析器，扩展名带点，例如 ".md"
	Parsers map[string]Parser
	// FallbackParser 没有匹配的扩展名时使用，默认 TextParser
	FallbackParser Parser
}

// ExtParser 按 URI 的扩展名选择解析器，需要配合 WithURI 使用。
type ExtParser struct {
	parsers        map[string]Parser
	fallbackParser Parser
}

// NewExtParser 创建按扩展名选择的解析器。
func NewExtParser(conf *ExtParserConfig) *ExtParser {
	if conf == nil {
		conf = &ExtParserConfig{}
	}

	p := &ExtParser{
		parsers:        conf.Parsers,
		fallbackParser: conf.FallbackParser,
	}
	if p.fallbackParser == nil {
		p.fallbackParser = TextParser{}
	}
	if p.parsers == nil {
		p.parsers = make(map[string]Parser)
	}

	return p
}

func (p *ExtParser) Parse(ctx context.Context, reader io.Reader, opts ...Option) ([]*schema.Document, error) {
	opt := GetCommonOptions(&Options{}, opts...)

	ext := filepath.Ext(opt.URI)
	parser, ok := p.parsers[ext]
	if !ok {
		parser = p.fallbackParser
	}
	if parser == nil {
		return nil, errors.New("no parser found for extension " + ext)
	}

	docs, err := parser.Parse(ctx, reader, opts...)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		if doc.MetaData == nil {
			doc.MetaData = make(map[string]any)
		}
		for k, v := range opt.ExtraMeta {
			doc.MetaData[k] = v
		}
	}

	return docs, nil
}
