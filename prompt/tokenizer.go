package prompt

import (
	"strings"
	"unicode"
)

// Tokenizer 计算和截断 token。实现方可以接入模型对应的分词器。
type Tokenizer interface {
	// Count 返回文本的 token 数
	Count(text string) int
	// Truncate 保留文本的前 n 个 token
	Truncate(text string, n int) string
}

// WhitespaceTokenizer 以空白分隔的词作为 token，默认使用。
type WhitespaceTokenizer struct{}

// Count 返回空白分隔的词数。
func (WhitespaceTokenizer) Count(text string) int {
	return len(strings.Fields(text))
}

// Truncate 保留前 n 个词，词之间的原始空白不变。
func (WhitespaceTokenizer) Truncate(text string, n int) string {
	if n <= 0 {
		return ""
	}

	count := 0
	inToken := false
	for i, r := range text {
		if unicode.IsSpace(r) {
			if inToken {
				count++
				inToken = false
				if count == n {
					return text[:i]
				}
			}
			continue
		}
		inToken = true
	}

	return text
}
