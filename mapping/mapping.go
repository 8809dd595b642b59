// Package mapping 实现声明式的参数映射模板。
//
// 模板由 CEL 表达式组成，只能读取变量 input，不能执行任意代码。
// 编译在构建期完成，求值在调用期完成，结果转换为 JSON 形态的 Go 值。
//
//	m, err := mapping.Compile(mapping.Template{
//		Fields: map[string]string{
//			"greeting":     `"hi " + input.name`,
//			"user.isAdult": `input.age >= 18.0`,
//		},
//	})
//	out, err := m.ApplyMap(map[string]any{"name": "Ann", "age": 20})
//	// out == {"greeting": "hi Ann", "user": {"isAdult": true}}
package mapping

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/google/cel-go/cel"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/favbox/promptflow/internal/jsonvalue"
)

// Template 映射模板。
type Template struct {
	// Root 计算整个结果的表达式；为空时结果从空对象开始
	Root string `yaml:"root,omitempty" json:"root,omitempty"`
	// Fields 目标路径（点分）到表达式，在 Root 的结果上逐个赋值
	Fields map[string]string `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// IsZero 模板为空时映射是恒等变换。
func (t Template) IsZero() bool {
	return t.Root == "" && len(t.Fields) == 0
}

type field struct {
	path    string
	program cel.Program
}

// Mapper 编译后的映射模板，只读，可并发使用。
type Mapper struct {
	identity bool
	root     cel.Program
	fields   []field
}

// Compile 编译模板，任意一个表达式编译失败都返回错误。
func Compile(t Template) (*Mapper, error) {
	if t.IsZero() {
		return &Mapper{identity: true}, nil
	}

	env, err := cel.NewEnv(
		cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating CEL environment: %w", err)
	}

	m := &Mapper{}
	if t.Root != "" {
		if m.root, err = compile(env, t.Root); err != nil {
			return nil, fmt.Errorf("mapping root: %w", err)
		}
	}

	paths := make([]string, 0, len(t.Fields))
	for p := range t.Fields {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	for _, p := range paths {
		if p == "" {
			return nil, fmt.Errorf("mapping field path can't be empty")
		}
		prg, err := compile(env, t.Fields[p])
		if err != nil {
			return nil, fmt.Errorf("mapping field %s: %w", p, err)
		}
		m.fields = append(m.fields, field{path: p, program: prg})
	}

	return m, nil
}

func compile(env *cel.Env, expr string) (cel.Program, error) {
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("error compiling expression %q: %w", expr, issues.Err())
	}
	return env.Program(ast)
}

// Apply 对输入求值。
func (m *Mapper) Apply(input map[string]any) (any, error) {
	if m == nil || m.identity {
		return input, nil
	}

	normalized, err := jsonvalue.NormalizeMap(input)
	if err != nil {
		return nil, err
	}
	vars := map[string]any{"input": normalized}

	var result any = map[string]any{}
	if m.root != nil {
		if result, err = eval(m.root, vars); err != nil {
			return nil, fmt.Errorf("mapping root: %w", err)
		}
	}

	if len(m.fields) == 0 {
		return result, nil
	}

	obj, ok := result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("mapping root must produce an object when fields are set, got %T", result)
	}
	for _, f := range m.fields {
		v, err := eval(f.program, vars)
		if err != nil {
			return nil, fmt.Errorf("mapping field %s: %w", f.path, err)
		}
		if err = jsonvalue.Set(obj, f.path, v); err != nil {
			return nil, err
		}
	}

	return obj, nil
}

// ApplyMap 同 Apply，要求结果是对象。
func (m *Mapper) ApplyMap(input map[string]any) (map[string]any, error) {
	out, err := m.Apply(input)
	if err != nil {
		return nil, err
	}
	obj, ok := out.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("mapping must produce an object, got %T", out)
	}
	return obj, nil
}

func eval(prg cel.Program, vars map[string]any) (any, error) {
	out, _, err := prg.Eval(vars)
	if err != nil {
		return nil, fmt.Errorf("error evaluating expression: %w", err)
	}
	nv, err := out.ConvertToNative(reflect.TypeOf(&structpb.Value{}))
	if err != nil {
		return nil, fmt.Errorf("error ConvertToNative: %w", err)
	}
	pv, ok := nv.(*structpb.Value)
	if !ok {
		return nil, fmt.Errorf("unexpected native value %T", nv)
	}
	return pv.AsInterface(), nil
}
