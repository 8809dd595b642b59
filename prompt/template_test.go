package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/eino-contrib/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/schema"
)

// words 生成 n 个空白分隔的词。
func words(prefix string, n int) string {
	ws := make([]string, n)
	for i := range ws {
		ws[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return strings.Join(ws, " ")
}

// citationBlock 生成一个与检索步骤格式一致、共 20 个 token 的块。
func citationBlock(id int) string {
	return fmt.Sprintf(`*** %s *** `+"\n"+`Citation: {"id":"%d"}`, words(fmt.Sprintf("b%d_", id), 16), id)
}

func TestTruncateScenario(t *testing.T) {
	tk := WhitespaceTokenizer{}
	b1, b2, b3 := citationBlock(1), citationBlock(2), citationBlock(3)
	context60 := strings.Join([]string{b1, b2, b3}, BlockSeparator)
	require.Equal(t, 20, tk.Count(b1))
	require.Equal(t, 60, tk.Count(context60))

	tpl := New([]schema.MessagesTemplate{
		schema.SystemMessage("{context}"),
		schema.UserMessage(words("q", 50)),
	})

	info := &model.Info{ContextWindow: 100}
	msgs, err := tpl.Format(context.Background(), map[string]any{"context": context60}, info, model.Params{model.ParamMaxTokens: 20})
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// 50 个 token 的其余部分加上 20 个 token 的输出预留，上下文只剩 30：
	// 从最新一端整块移除，只保留第一块
	assert.Equal(t, b1, msgs[0].Content)
	assert.LessOrEqual(t, tk.Count(msgs[0].Content), 30)
}

func TestTruncateContext(t *testing.T) {
	tk := WhitespaceTokenizer{}
	b1, b2 := citationBlock(1), citationBlock(2)
	ctx := b1 + BlockSeparator + b2

	t.Run("fits untouched", func(t *testing.T) {
		assert.Equal(t, ctx, truncateContext(tk, ctx, 40))
	})

	t.Run("single block keeps its citation", func(t *testing.T) {
		out := truncateContext(tk, b1, 10)
		assert.LessOrEqual(t, tk.Count(out), 10)
		assert.True(t, strings.HasSuffix(out, `Citation: {"id":"1"}`))
		assert.True(t, strings.HasPrefix(out, "*** b1_0"))
		// 18 个正文 token 截到 8 个：开头标记、6 个词、收尾标记
		assert.Equal(t, "*** "+words("b1_", 6)+" *** \nCitation: {\"id\":\"1\"}", out)
	})

	t.Run("too small to keep any words", func(t *testing.T) {
		// 只够放下两个标记与引用，正文为空的块整块丢弃
		assert.Equal(t, "", truncateContext(tk, b1, 4))
	})

	t.Run("never exceeds the budget and never leaves a dangling citation", func(t *testing.T) {
		blocks := []string{citationBlock(1), citationBlock(2), citationBlock(3), "trailing plain text here"}
		full := strings.Join(blocks, BlockSeparator)
		for budget := 0; budget <= tk.Count(full)+1; budget++ {
			out := truncateContext(tk, full, budget)
			assert.LessOrEqual(t, tk.Count(out), max(budget, 0), "budget %d", budget)

			for _, b := range splitBlocks(out) {
				if b.citation != "" {
					assert.NotEmpty(t, strings.TrimSpace(b.text), "budget %d", budget)
					assert.True(t, strings.HasSuffix(strings.TrimSpace(b.text), BlockMarker), "budget %d", budget)
					assert.True(t, strings.HasPrefix(b.citation, CitationSeparator+" {"), "budget %d", budget)
					assert.True(t, strings.HasSuffix(b.citation, "}"), "budget %d", budget)
				}
			}
		}
	})

	t.Run("no budget", func(t *testing.T) {
		assert.Equal(t, "", truncateContext(tk, ctx, 0))
		assert.Equal(t, "", truncateContext(tk, ctx, -5))
	})
}

func TestSplitClosingMarker(t *testing.T) {
	cases := []struct {
		text, body, tail string
	}{
		{text: "*** a b *** ", body: "*** a b", tail: " *** "},
		{text: "*** a ***", body: "*** a", tail: " ***"},
		{text: "plain tail", body: "plain tail"},
		{text: "glued***", body: "glued***"},
		{text: "***", body: "***"},
	}
	for _, c := range cases {
		body, tail := splitClosingMarker(c.text)
		assert.Equal(t, c.body, body, c.text)
		assert.Equal(t, c.tail, tail, c.text)
	}
}

func TestSplitBlocks(t *testing.T) {
	ctx := "older context\n\n*** a *** \nCitation: {\"id\":\"1\"}\n\n*** b *** \nCitation: {\"id\":\"2\"}"
	blocks := splitBlocks(ctx)
	require.Len(t, blocks, 2)
	// 没有引用的旧上下文并入第一个块
	assert.Equal(t, "older context\n\n*** a *** ", blocks[0].text)
	assert.Equal(t, "\nCitation: {\"id\":\"1\"}", blocks[0].citation)
	assert.Equal(t, "*** b *** ", blocks[1].text)
	assert.Equal(t, ctx, joinBlocks(blocks))

	tail := splitBlocks("*** a *** \nCitation: {}\n\nplain tail")
	require.Len(t, tail, 2)
	assert.Equal(t, "plain tail", tail[1].text)
	assert.Equal(t, "", tail[1].citation)
}

func TestFormat(t *testing.T) {
	ctx := context.Background()

	t.Run("snippets override args", func(t *testing.T) {
		tpl := New([]schema.MessagesTemplate{schema.UserMessage("{greeting} {name}")},
			WithSnippets(map[string]any{"greeting": "hello"}))
		msgs, err := tpl.Format(ctx, map[string]any{"greeting": "bye", "name": "Ann"}, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "hello Ann", msgs[0].Content)
	})

	t.Run("max output tokens caps the reservation", func(t *testing.T) {
		tpl := New([]schema.MessagesTemplate{schema.SystemMessage("{context}")})
		info := &model.Info{ContextWindow: 30, MaxOutputTokens: 5}
		long := words("w", 40)

		var out *CallbackOutput
		handler := callbacks.NewHandlerBuilder().OnEndFn(func(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
			out = ConvCallbackOutput(output)
			return ctx
		}).Build()
		cctx := callbacks.InitCallbacks(ctx, nil, handler)

		msgs, err := tpl.Format(cctx, map[string]any{"context": long}, info, model.Params{model.ParamMaxTokens: 100})
		require.NoError(t, err)
		assert.Equal(t, 25, WhitespaceTokenizer{}.Count(msgs[0].Content))
		require.NotNil(t, out)
		assert.True(t, out.Truncated)
		assert.Equal(t, 25, out.Available)
		assert.Equal(t, 25, out.ContextTokens)
	})

	t.Run("schema error fires OnError", func(t *testing.T) {
		props := orderedmap.New[string, *jsonschema.Schema]()
		props.Set("question", &jsonschema.Schema{Type: "string"})
		tpl := New([]schema.MessagesTemplate{schema.UserMessage("{question}")},
			WithArgsSchema(&jsonschema.Schema{Type: "object", Properties: props, Required: []string{"question"}}))

		var gotErr error
		handler := callbacks.NewHandlerBuilder().OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			gotErr = err
			return ctx
		}).Build()

		_, err := tpl.Format(callbacks.InitCallbacks(ctx, nil, handler), map[string]any{}, nil, nil)
		var ve *schema.ValidationError
		require.True(t, errors.As(err, &ve))
		assert.Equal(t, err, gotErr)
	})

	t.Run("non string context", func(t *testing.T) {
		tpl := New([]schema.MessagesTemplate{schema.SystemMessage("{context}")})
		_, err := tpl.Format(ctx, map[string]any{"context": 1}, &model.Info{ContextWindow: 10}, nil)
		assert.Error(t, err)
	})
}

func TestWhitespaceTokenizer(t *testing.T) {
	tk := WhitespaceTokenizer{}
	assert.Equal(t, 3, tk.Count(" a  b\nc "))
	assert.Equal(t, " a  b", tk.Truncate(" a  b\nc ", 2))
	assert.Equal(t, "a b", tk.Truncate("a b", 5))
	assert.Equal(t, "", tk.Truncate("a b", 0))
}
