package react

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/favbox/promptflow/flow/agent"
)

// FinalAnswerMarker 模型给出最终答案的标记。
const FinalAnswerMarker = "Final Answer:"

// 无法解析时反馈给模型的观察文本。
const (
	MissingActionObservation      = "Invalid Format: Missing 'Action:' after 'Thought:'"
	MissingActionInputObservation = "Invalid Format: Missing 'Action Input:' after 'Action:'"
)

// ErrAmbiguousOutput 同时出现最终答案和可执行的行动。
var ErrAmbiguousOutput = errors.New("parsing LLM output produced both a final answer and a parse-able action")

var (
	actionRe      = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
	actionOnlyRe  = regexp.MustCompile(`(?s)Action\s*\d*\s*:[\s]*(.*?)`)
	actionInputRe = regexp.MustCompile(`(?s)[\s]*Action\s*\d*\s*Input\s*\d*\s*:[\s]*(.*)`)
)

// OutputParserError 模型输出无法解析。SendToLLM 为 true 时 Observation 反馈给模型继续循环。
type OutputParserError struct {
	Observation string
	LLMOutput   string
	SendToLLM   bool
}

func (e *OutputParserError) Error() string {
	return fmt.Sprintf("could not parse LLM output %q: %s", e.LLMOutput, e.Observation)
}

// parseOutput 返回行动或最终答案，二者恰有其一。
func parseOutput(text string) (*agent.Action, string, error) {
	includesAnswer := strings.Contains(text, FinalAnswerMarker)

	if m := actionRe.FindStringSubmatch(text); m != nil {
		if includesAnswer {
			return nil, "", fmt.Errorf("%w: %s", ErrAmbiguousOutput, text)
		}
		return &agent.Action{
			Tool:  strings.TrimSpace(m[1]),
			Input: strings.Trim(strings.TrimSpace(m[2]), `"`),
			Log:   text,
		}, "", nil
	}

	if includesAnswer {
		idx := strings.LastIndex(text, FinalAnswerMarker)
		return nil, strings.TrimSpace(text[idx+len(FinalAnswerMarker):]), nil
	}

	switch {
	case !actionOnlyRe.MatchString(text):
		return nil, "", &OutputParserError{Observation: MissingActionObservation, LLMOutput: text, SendToLLM: true}
	case !actionInputRe.MatchString(text):
		return nil, "", &OutputParserError{Observation: MissingActionInputObservation, LLMOutput: text, SendToLLM: true}
	default:
		return nil, "", &OutputParserError{Observation: "Could not parse LLM output", LLMOutput: text}
	}
}
