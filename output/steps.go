package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/favbox/promptflow/components/guardrail"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/components/parser"
)

// GuardrailStep 用护栏扫描输出内容，违规时失败，否则用扫描后的文本改写内容。
type GuardrailStep struct {
	Service guardrail.Service
	Key     string
}

func (s *GuardrailStep) Name() string { return s.Key }

func (s *GuardrailStep) Kind() string { return "Guardrail" }

func (s *GuardrailStep) Process(ctx context.Context, resp *model.ChatResponse) (*model.ChatResponse, error) {
	res, err := s.Service.Scan(ctx, s.Key, resp.Content())
	if err != nil {
		return nil, fmt.Errorf("scan with %s: %w", s.Key, err)
	}
	if res == nil {
		return resp, nil
	}
	if res.Error != "" {
		return nil, &guardrail.ViolationError{Key: s.Key, Reason: res.Error}
	}
	if res.Text != "" {
		resp.SetContent(res.Text)
	}

	return resp, nil
}

// ParserStep 把输出内容解析为结构化值。
//
// 成功后内容替换为序列化的 JSON（字符串值去掉首尾引号），结构化值记录在 Structured。
type ParserStep struct {
	Service parser.Service
	Key     string
}

func (s *ParserStep) Name() string { return s.Key }

func (s *ParserStep) Kind() string { return "Parser" }

func (s *ParserStep) Process(ctx context.Context, resp *model.ChatResponse) (*model.ChatResponse, error) {
	res, err := s.Service.Parse(ctx, s.Key, resp.Content())
	if err != nil {
		return nil, &parser.ParseError{Key: s.Key, Reason: err.Error()}
	}
	if res == nil || res.Error != "" {
		reason := "empty result"
		if res != nil {
			reason = res.Error
		}
		return nil, &parser.ParseError{Key: s.Key, Reason: reason}
	}

	content, err := sonic.MarshalString(res.JSON)
	if err != nil {
		return nil, &parser.ParseError{Key: s.Key, Reason: err.Error()}
	}

	resp.SetContent(trimQuotes(content))
	resp.Structured = res.JSON

	return resp, nil
}

func trimQuotes(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}
