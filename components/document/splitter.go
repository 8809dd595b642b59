package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/schema"
)

// DefaultChunkSize 默认分块的词数上限。
const DefaultChunkSize = 200

// SplitterOptions 切分器的调用选项。
type SplitterOptions struct {
	// ChunkSize 每个分块的词数上限
	ChunkSize int
}

// WithChunkSize 覆盖本次调用的分块大小。
func WithChunkSize(n int) TransformerOption {
	return WrapTransformerImplSpecificOptFn(func(o *SplitterOptions) {
		o.ChunkSize = n
	})
}

// TextSplitter 按空行切分段落，再把相邻段落合并为不超过 ChunkSize 个词的分块。
// 单个段落超过上限时按词硬切。
type TextSplitter struct {
	ChunkSize int
}

func (s *TextSplitter) GetType() string {
	return "TextSplitter"
}

func (s *TextSplitter) Transform(ctx context.Context, docs []*schema.Document, opts ...TransformerOption) (out []*schema.Document, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, s.GetType(), components.ComponentOfTransformer)
	ctx = callbacks.OnStart(ctx, &TransformerCallbackInput{Input: docs})
	defer func() {
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	size := s.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	size = GetTransformerImplSpecificOptions(&SplitterOptions{ChunkSize: size}, opts...).ChunkSize
	if size <= 0 {
		return nil, fmt.Errorf("text splitter: chunk size must be positive, got %d", size)
	}

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		for i, chunk := range packParagraphs(doc.Content, size) {
			meta := make(map[string]any, len(doc.MetaData)+1)
			for k, v := range doc.MetaData {
				meta[k] = v
			}
			meta["chunk_index"] = i

			id := fmt.Sprintf("%d", i)
			if doc.ID != "" {
				id = fmt.Sprintf("%s#%d", doc.ID, i)
			}
			out = append(out, &schema.Document{ID: id, Content: chunk, MetaData: meta})
		}
	}

	_ = callbacks.OnEnd(ctx, &TransformerCallbackOutput{Output: out})
	return out, nil
}

func packParagraphs(text string, size int) []string {
	var (
		chunks []string
		cur    []string
		n      int
	)
	flush := func() {
		if len(cur) > 0 {
			chunks = append(chunks, strings.Join(cur, "\n\n"))
			cur, n = nil, 0
		}
	}

	for _, para := range strings.Split(text, "\n\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			continue
		}
		if len(words) > size {
			flush()
			for start := 0; start < len(words); start += size {
				end := min(start+size, len(words))
				chunks = append(chunks, strings.Join(words[start:end], " "))
			}
			continue
		}
		if n+len(words) > size {
			flush()
		}
		cur = append(cur, strings.TrimSpace(para))
		n += len(words)
	}
	flush()

	return chunks
}
