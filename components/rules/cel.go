package rules

import (
	"context"
	"fmt"
	"reflect"

	"github.com/google/cel-go/cel"
)

// Ruleset 一个规则集：返回布尔值的 CEL 表达式，事实通过变量 facts 访问。
//
//	rules.Ruleset{ID: "adult", Expression: "facts.person.age >= 18.0"}
type Ruleset struct {
	ID         string `yaml:"id" json:"id"`
	Expression string `yaml:"expression" json:"expression"`
}

type compiledRuleset struct {
	id      string
	program cel.Program
}

// CELEngine 基于 CEL 的规则引擎，规则集在创建时编译，之后只读，可并发使用。
type CELEngine struct {
	rulesets []compiledRuleset
}

// NewCELEngine 编译规则集，任何一个编译失败都返回错误。
func NewCELEngine(rulesets ...Ruleset) (*CELEngine, error) {
	env, err := cel.NewEnv(
		cel.Variable("facts", cel.MapType(cel.StringType, cel.AnyType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}

	e := &CELEngine{rulesets: make([]compiledRuleset, 0, len(rulesets))}
	seen := make(map[string]bool, len(rulesets))
	for _, rs := range rulesets {
		if rs.ID == "" {
			return nil, fmt.Errorf("ruleset id can't be empty")
		}
		if seen[rs.ID] {
			return nil, fmt.Errorf("duplicate ruleset id: %s", rs.ID)
		}
		seen[rs.ID] = true

		ast, issues := env.Compile(rs.Expression)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("error compiling ruleset %s: %w", rs.ID, issues.Err())
		}
		if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
			return nil, fmt.Errorf("ruleset %s must evaluate to bool, got %s", rs.ID, ast.OutputType())
		}
		p, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("error creating program for ruleset %s: %w", rs.ID, err)
		}
		e.rulesets = append(e.rulesets, compiledRuleset{id: rs.ID, program: p})
	}

	return e, nil
}

// Run 按注册顺序返回匹配的规则集 ID。
func (e *CELEngine) Run(ctx context.Context, facts map[string]any) ([]string, error) {
	if facts == nil {
		facts = map[string]any{}
	}

	var matched []string
	for _, rs := range e.rulesets {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, _, err := rs.program.Eval(map[string]any{"facts": facts})
		if err != nil {
			return nil, fmt.Errorf("error evaluating ruleset %s: %w", rs.id, err)
		}
		nv, err := out.ConvertToNative(reflect.TypeOf(true))
		if err != nil {
			return nil, fmt.Errorf("ruleset %s: %w", rs.id, err)
		}
		if ok, _ := nv.(bool); ok {
			matched = append(matched, rs.id)
		}
	}

	return matched, nil
}
