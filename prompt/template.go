// Package prompt 渲染消息模板，并在上下文超出模型预算时按引用块截断。
package prompt

import (
	"context"
	"fmt"

	"github.com/eino-contrib/jsonschema"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/schema"
)

// ContextKey 参与长度检查的参数名。
const ContextKey = "context"

// Template 提示词模板，创建后只读，可并发使用。
type Template struct {
	messages   []schema.MessagesTemplate
	formatType schema.FormatType
	snippets   map[string]any
	argsSchema *jsonschema.Schema
	tokenizer  Tokenizer
}

// New 创建提示词模板。
//
//	tpl := prompt.New([]schema.MessagesTemplate{
//		schema.SystemMessage("answer with the context:\n{context}"),
//		schema.UserMessage("{question}"),
//	}, prompt.WithTokenizer(myTokenizer))
func New(messages []schema.MessagesTemplate, opts ...Option) *Template {
	t := &Template{
		messages:   messages,
		formatType: schema.FString,
		tokenizer:  WhitespaceTokenizer{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// GetType 组件实现类型。
func (t *Template) GetType() string {
	return "PromptTemplate"
}

// Format 渲染模板。
//
// 参数中有 context 时做长度检查：上下文可用预算为
// contextWindow - 其余部分的 token 数 - min(maxTokens, maxOutputTokens)，
// 模型未声明 maxOutputTokens 时直接减去 maxTokens。info 为 nil 或未声明上下文窗口时不检查。
func (t *Template) Format(ctx context.Context, args map[string]any, info *model.Info, params model.Params) (result []*schema.Message, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, t.GetType(), components.ComponentOfPromptTemplate)
	ctx = callbacks.OnStart(ctx, &CallbackInput{Args: args, Templates: t.messages})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	if err = schema.ValidateArgs(t.argsSchema, args); err != nil {
		return nil, err
	}

	vs := make(map[string]any, len(args)+len(t.snippets))
	for k, v := range args {
		vs[k] = v
	}
	for k, v := range t.snippets {
		vs[k] = v
	}

	out := &CallbackOutput{}
	if raw, ok := vs[ContextKey]; ok && info != nil && info.ContextWindow > 0 {
		text, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("prompt context must be a string, got %T", raw)
		}

		if out.Available, err = t.available(ctx, vs, info, params); err != nil {
			return nil, err
		}
		truncated := truncateContext(t.tokenizer, text, out.Available)
		out.Truncated = truncated != text
		out.ContextTokens = t.tokenizer.Count(truncated)
		vs[ContextKey] = truncated
	}

	if result, err = t.render(ctx, vs); err != nil {
		return nil, err
	}

	out.Result = result
	_ = callbacks.OnEnd(ctx, out)

	return result, nil
}

func (t *Template) render(ctx context.Context, vs map[string]any) ([]*schema.Message, error) {
	result := make([]*schema.Message, 0, len(t.messages))
	for _, msg := range t.messages {
		msgs, err := msg.Format(ctx, vs, t.formatType)
		if err != nil {
			return nil, err
		}
		result = append(result, msgs...)
	}
	return result, nil
}

// available 计算上下文的 token 预算，先把上下文置空渲染一遍得到其余部分的长度。
func (t *Template) available(ctx context.Context, vs map[string]any, info *model.Info, params model.Params) (int, error) {
	blank := make(map[string]any, len(vs))
	for k, v := range vs {
		blank[k] = v
	}
	blank[ContextKey] = ""

	msgs, err := t.render(ctx, blank)
	if err != nil {
		return 0, err
	}
	preContext := t.countMessages(msgs)

	reserved, _ := params.MaxTokens()
	if info.MaxOutputTokens > 0 && info.MaxOutputTokens < reserved {
		reserved = info.MaxOutputTokens
	}

	return info.ContextWindow - preContext - reserved, nil
}

func (t *Template) countMessages(msgs []*schema.Message) int {
	n := 0
	for _, m := range msgs {
		n += t.tokenizer.Count(m.Content)
		for _, part := range m.UserInputMultiContent {
			if part.Type == schema.MessagePartTypeText {
				n += t.tokenizer.Count(part.Text)
			}
		}
	}
	return n
}
