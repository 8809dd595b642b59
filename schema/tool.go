package schema

import (
	"fmt"
	"sort"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// DataType 参数的数据类型，取值同 JSON Schema。
type DataType string

const (
	Object  DataType = "object"
	Number  DataType = "number"
	Integer DataType = "integer"
	String  DataType = "string"
	Array   DataType = "array"
	Null    DataType = "null"
	Boolean DataType = "boolean"
)

// ToolChoice 模型调用工具的策略。
type ToolChoice string

const (
	// ToolChoiceForbidden 禁止调用工具，对应 OpenAI 的 "none"
	ToolChoiceForbidden ToolChoice = "forbidden"
	// ToolChoiceAllowed 由模型决定，对应 OpenAI 的 "auto"
	ToolChoiceAllowed ToolChoice = "allowed"
	// ToolChoiceForced 必须调用工具，对应 OpenAI 的 "required"
	ToolChoiceForced ToolChoice = "forced"
)

// ToolInfo 提供给模型的函数/工具描述。
//
// 智能体用它描述可调用的工具，语义函数用它合成强制结构化输出的 output_formatter 函数。
type ToolInfo struct {
	// Name 工具的唯一名称
	Name string

	// Desc 告诉模型何时、如何使用该工具
	Desc string

	Extra map[string]any

	// ParamsOneOf 为 nil 表示工具无参数
	*ParamsOneOf
}

// ParameterInfo 简化的参数描述。
type ParameterInfo struct {
	Type DataType

	// ElemInfo 数组元素类型，仅 Array 使用
	ElemInfo *ParameterInfo

	// SubParams 对象的子参数，仅 Object 使用
	SubParams map[string]*ParameterInfo

	Desc string

	// Enum 可选值，仅 String 使用
	Enum []string

	Required bool
}

// ParamsOneOf 参数描述的二选一：ParameterInfo 映射或完整的 JSON Schema。
type ParamsOneOf struct {
	params map[string]*ParameterInfo

	jsonschema *jsonschema.Schema
}

// NewParamsOneOfByParams 用 ParameterInfo 映射描述参数。
func NewParamsOneOfByParams(params map[string]*ParameterInfo) *ParamsOneOf {
	return &ParamsOneOf{
		params: params,
	}
}

// NewParamsOneOfByJSONSchema 用 JSON Schema 描述参数。
func NewParamsOneOfByJSONSchema(s *jsonschema.Schema) *ParamsOneOf {
	return &ParamsOneOf{
		jsonschema: s,
	}
}

// ToJSONSchema 统一转换为 JSON Schema。属性按名称排序，保证输出稳定。
func (p *ParamsOneOf) ToJSONSchema() (*jsonschema.Schema, error) {
	if p == nil {
		return nil, nil
	}

	if p.params != nil {
		return objectSchema(p.params), nil
	}

	return p.jsonschema, nil
}

func objectSchema(params map[string]*ParameterInfo) *jsonschema.Schema {
	sc := &jsonschema.Schema{
		Type:       string(Object),
		Properties: orderedmap.New[string, *jsonschema.Schema](),
		Required:   make([]string, 0, len(params)),
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := params[k]
		sc.Properties.Set(k, paramInfoToJSONSchema(v))
		if v.Required {
			sc.Required = append(sc.Required, k)
		}
	}

	return sc
}

func paramInfoToJSONSchema(paramInfo *ParameterInfo) *jsonschema.Schema {
	if len(paramInfo.SubParams) > 0 {
		js := objectSchema(paramInfo.SubParams)
		js.Description = paramInfo.Desc
		return js
	}

	js := &jsonschema.Schema{
		Type:        string(paramInfo.Type),
		Description: paramInfo.Desc,
	}

	if len(paramInfo.Enum) > 0 {
		js.Enum = make([]any, len(paramInfo.Enum))
		for i, enum := range paramInfo.Enum {
			js.Enum[i] = enum
		}
	}

	if paramInfo.ElemInfo != nil {
		js.Items = paramInfoToJSONSchema(paramInfo.ElemInfo)
	}

	return js
}

// Describe 返回 "name: desc, args: {schema}" 形式的单行描述，用于拼接智能体提示词。
func (t *ToolInfo) Describe() (string, error) {
	sc, err := t.ToJSONSchema()
	if err != nil {
		return "", err
	}
	if sc == nil {
		return fmt.Sprintf("%s: %s", t.Name, t.Desc), nil
	}

	args, err := sonic.MarshalString(sc.Properties)
	if err != nil {
		return "", fmt.Errorf("marshal tool %s params: %w", t.Name, err)
	}

	return fmt.Sprintf("%s: %s, args: %s", t.Name, t.Desc, args), nil
}
