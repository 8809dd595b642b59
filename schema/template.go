package schema

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"text/template"

	"github.com/nikolalohinski/gonja"
	"github.com/nikolalohinski/gonja/config"
	"github.com/nikolalohinski/gonja/nodes"
	"github.com/nikolalohinski/gonja/parser"
	"github.com/slongfield/pyfmt"
)

// FormatType 消息模板的格式化类型。
type FormatType uint8

const (
	// FString Python 风格格式化 (PEP-3101)，由 pyfmt 实现
	FString FormatType = 0
	// GoTemplate 标准库 text/template
	GoTemplate FormatType = 1
	// Jinja2 由 gonja 实现，include/extends/import/from 被禁用
	Jinja2 FormatType = 2
)

var _ MessagesTemplate = &Message{}
var _ MessagesTemplate = MessagesPlaceholder("", false)

// MessagesTemplate 消息模板接口，将模板渲染为消息列表。
//
//	tpl := prompt.New([]schema.MessagesTemplate{
//		schema.SystemMessage("you are a helpful assistant"),
//		schema.MessagesPlaceholder("history", true),
//		schema.UserMessage("{question}"),
//	})
type MessagesTemplate interface {
	Format(ctx context.Context, vs map[string]any, formatType FormatType) ([]*Message, error)
}

type messagesPlaceholder struct {
	key      string
	optional bool
}

// MessagesPlaceholder 创建消息占位符，渲染时直接返回参数中 key 对应的消息列表。
func MessagesPlaceholder(key string, optional bool) MessagesTemplate {
	return &messagesPlaceholder{
		key:      key,
		optional: optional,
	}
}

// Format 返回参数中的消息列表。
func (p *messagesPlaceholder) Format(_ context.Context, vs map[string]any, _ FormatType) ([]*Message, error) {
	v, ok := vs[p.key]
	if !ok || v == nil {
		if p.optional {
			return []*Message{}, nil
		}

		return nil, fmt.Errorf("message placeholder format: %s not found", p.key)
	}

	msgs, ok := v.([]*Message)
	if !ok {
		return nil, fmt.Errorf("only messages can be used to format message placeholder, key: %v, actual type: %v", p.key, reflect.TypeOf(v))
	}

	return msgs, nil
}

// FormatContent 按格式化类型渲染一段文本。
func FormatContent(content string, vs map[string]any, formatType FormatType) (string, error) {
	switch formatType {
	case FString:
		return pyfmt.Fmt(content, vs)
	case GoTemplate:
		parsedTmpl, err := template.New("template").
			Option("missingkey=error").
			Parse(content)
		if err != nil {
			return "", err
		}
		sb := new(strings.Builder)
		if err = parsedTmpl.Execute(sb, vs); err != nil {
			return "", err
		}
		return sb.String(), nil
	case Jinja2:
		env, err := getJinjaEnv()
		if err != nil {
			return "", err
		}
		tpl, err := env.FromString(content)
		if err != nil {
			return "", err
		}
		return tpl.Execute(vs)
	default:
		return "", fmt.Errorf("unknown format type: %v", formatType)
	}
}

// Format 渲染消息内容及其文本部分，返回副本，原消息不变。
//
//	msg := schema.UserMessage("hello world, {name}")
//	msgs, err := msg.Format(ctx, map[string]any{"name": "eino"}, schema.FString)
//	// msgs[0].Content == "hello world, eino"
func (m *Message) Format(_ context.Context, vs map[string]any, formatType FormatType) ([]*Message, error) {
	c, err := FormatContent(m.Content, vs, formatType)
	if err != nil {
		return nil, err
	}
	copied := *m
	copied.Content = c

	if len(m.UserInputMultiContent) > 0 {
		parts := make([]MessageInputPart, len(m.UserInputMultiContent))
		copy(parts, m.UserInputMultiContent)
		for i := range parts {
			if parts[i].Type != MessagePartTypeText {
				continue
			}
			if parts[i].Text, err = FormatContent(parts[i].Text, vs, formatType); err != nil {
				return nil, err
			}
		}
		copied.UserInputMultiContent = parts
	}

	return []*Message{&copied}, nil
}

var (
	jinjaEnvOnce sync.Once
	jinjaEnv     *gonja.Environment
	envInitErr   error
)

// disabledJinjaStatements 会访问外部模板的语句，模板内容来自配置，一律禁用。
var disabledJinjaStatements = []string{"include", "extends", "import", "from"}

func getJinjaEnv() (*gonja.Environment, error) {
	jinjaEnvOnce.Do(func() {
		jinjaEnv = gonja.NewEnvironment(config.DefaultConfig, gonja.DefaultLoader)
		for _, keyword := range disabledJinjaStatements {
			if !jinjaEnv.Statements.Exists(keyword) {
				continue
			}
			kw := keyword
			err := jinjaEnv.Statements.Replace(kw, func(parser *parser.Parser, args *parser.Parser) (nodes.Statement, error) {
				return nil, fmt.Errorf("keyword[%s] has been disabled", kw)
			})
			if err != nil {
				envInitErr = fmt.Errorf("init jinja env fail: %w", err)
				return
			}
		}
	})
	return jinjaEnv, envInitErr
}
