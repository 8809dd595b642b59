package prompt

import (
	"strings"
	"unicode"
)

const (
	// CitationSeparator 检索命中的正文与引用之间的分隔
	CitationSeparator = "\nCitation:"
	// BlockSeparator 上下文块之间的分隔
	BlockSeparator = "\n\n"
	// BlockMarker 包围检索正文的标记
	BlockMarker = "***"
	// CitationOverhead 每移除一个引用块时额外计入的 token 折扣
	CitationOverhead = 40
)

// block 一个上下文块：正文及其引用行。没有引用的尾部文本也是一个块。
type block struct {
	text     string
	citation string
}

func (b block) String() string {
	return b.text + b.citation
}

func splitBlocks(context string) []block {
	var blocks []block
	rest := context
	for rest != "" {
		i := strings.Index(rest, CitationSeparator)
		if i < 0 {
			blocks = append(blocks, block{text: rest})
			break
		}

		end := i + len(CitationSeparator)
		if j := strings.IndexByte(rest[end:], '\n'); j >= 0 {
			end += j
		} else {
			end = len(rest)
		}

		blocks = append(blocks, block{text: rest[:i], citation: rest[i:end]})
		rest = strings.TrimLeft(rest[end:], "\n")
	}
	return blocks
}

func joinBlocks(blocks []block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = b.String()
	}
	return strings.Join(parts, BlockSeparator)
}

// truncateContext 把上下文裁剪到 available 个 token 以内，不拆开任何引用。
//
// 先从末尾（最新追加的一端）整块移除，每移除一个带引用的块额外计入 CitationOverhead；
// 只剩一个块仍然超出时，截断该块的正文而保留引用。
// 折扣只是估算，最后按真实 token 数复核，仍超出时继续移除或截断。
func truncateContext(tk Tokenizer, context string, available int) string {
	if available <= 0 {
		return ""
	}
	if tk.Count(context) <= available {
		return context
	}

	blocks := splitBlocks(context)
	deficit := tk.Count(context) - available

	for len(blocks) > 1 && deficit > 0 {
		last := blocks[len(blocks)-1]
		saving := tk.Count(last.text)
		if last.citation != "" {
			saving += CitationOverhead
		}
		blocks = blocks[:len(blocks)-1]
		deficit -= saving
	}

	if deficit > 0 {
		b, ok := shrinkBlock(tk, blocks[0], deficit)
		if !ok {
			return ""
		}
		blocks[0] = b
	}

	for {
		over := tk.Count(joinBlocks(blocks)) - available
		if over <= 0 {
			return joinBlocks(blocks)
		}
		if len(blocks) > 1 {
			blocks = blocks[:len(blocks)-1]
			continue
		}

		b, ok := shrinkBlock(tk, blocks[0], over)
		if !ok {
			return ""
		}
		blocks[0] = b
	}
}

// shrinkBlock 从正文末尾截掉 n 个 token，引用保持不变。
// 正文以 BlockMarker 收尾时截断发生在收尾标记之前，标记原样保留。
// 正文会被截空时返回 false：引用不能脱离正文单独存在。
func shrinkBlock(tk Tokenizer, b block, n int) (block, bool) {
	body, tail := splitClosingMarker(b.text)
	keep := tk.Count(body) - n
	if keep <= 0 {
		return block{}, false
	}

	body = tk.Truncate(body, keep)
	if strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(body), BlockMarker)) == "" {
		return block{}, false
	}
	b.text = body + tail
	return b, true
}

// splitClosingMarker 把 "*** 正文 *** " 拆成正文部分与收尾标记（含两侧空白）。
// 没有以空白隔开的收尾标记时 tail 为空。
func splitClosingMarker(text string) (body, tail string) {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	rest, ok := strings.CutSuffix(trimmed, BlockMarker)
	if !ok || rest == "" || !unicode.IsSpace(rune(rest[len(rest)-1])) {
		return text, ""
	}
	body = strings.TrimRightFunc(rest, unicode.IsSpace)
	return body, text[len(body):]
}
