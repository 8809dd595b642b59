package planexecute

import (
	"fmt"
	"regexp"
	"strings"
)

var planItemRe = regexp.MustCompile(`^\s*(?:\d+[.)]|-)\s+(.+?)\s*$`)

// ParsePlan 从模型输出中取出计划步骤，只识别 "1."、"1)"、"-" 开头的行。
func ParsePlan(text string) []string {
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		if m := planItemRe.FindStringSubmatch(line); m != nil {
			steps = append(steps, m[1])
		}
	}
	return steps
}

func formatPlan(steps []string) string {
	var sb strings.Builder
	for i, s := range steps {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, s)
	}
	return sb.String()
}
