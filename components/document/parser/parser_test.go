package parser

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/favbox/promptflow/schema"
)

type parserForTest struct {
	mock func() ([]*schema.Document, error)
}

func (p *parserForTest) Parse(ctx context.Context, reader io.Reader, opts ...Option) ([]*schema.Document, error) {
	return p.mock()
}

func TestParser(t *testing.T) {
	ctx := context.Background()

	t.Run("default parser", func(t *testing.T) {
		p := NewExtParser(nil)

		docs, err := p.Parse(ctx, strings.NewReader("# Title\nhello world"), WithURI("testdata/test.md"))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "# Title\nhello world", docs[0].Content)
		assert.Equal(t, "testdata/test.md", docs[0].Source())
	})

	t.Run("parser by extension", func(t *testing.T) {
		p := NewExtParser(&ExtParserConfig{
			Parsers: map[string]Parser{
				".md": &parserForTest{
					mock: func() ([]*schema.Document, error) {
						return []*schema.Document{{Content: "hello world", MetaData: map[string]any{"type": "text"}}}, nil
					},
				},
			},
		})

		docs, err := p.Parse(ctx, strings.NewReader("ignored"), WithURI("x/test.md"), WithExtraMeta(map[string]any{"lang": "en"}))
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "hello world", docs[0].Content)
		assert.Equal(t, "text", docs[0].MetaData["type"])
		assert.Equal(t, "en", docs[0].MetaData["lang"])
	})

	t.Run("parser error", func(t *testing.T) {
		boom := errors.New("boom")
		p := NewExtParser(&ExtParserConfig{
			FallbackParser: &parserForTest{mock: func() ([]*schema.Document, error) { return nil, boom }},
		})
		_, err := p.Parse(ctx, strings.NewReader(""), WithURI("a.pdf"))
		assert.ErrorIs(t, err, boom)
	})
}

func TestImplSpecificOptions(t *testing.T) {
	type custom struct{ pages int }

	opt := WrapImplSpecificOptFn(func(o *custom) { o.pages = 3 })
	got := GetImplSpecificOptions(&custom{pages: 1}, opt, WithURI("a"))
	assert.Equal(t, 3, got.pages)
	assert.Equal(t, "a", GetCommonOptions(nil, opt, WithURI("a")).URI)
}

func TestTextParserTrimSpace(t *testing.T) {
	ctx := context.Background()

	docs, err := TextParser{}.Parse(ctx, strings.NewReader("\n  body \n"), WithTrimSpace(), WithURI("a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "body", docs[0].Content)
	assert.Equal(t, "a.txt", docs[0].Source())

	docs, err = NewExtParser(nil).Parse(ctx, strings.NewReader(" body "), WithURI("b.md"), WithTrimSpace())
	require.NoError(t, err)
	assert.Equal(t, "body", docs[0].Content)

	docs, err = TextParser{}.Parse(ctx, strings.NewReader(" body "))
	require.NoError(t, err)
	assert.Equal(t, " body ", docs[0].Content)
}
