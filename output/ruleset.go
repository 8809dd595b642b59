package output

import (
	"context"
	"fmt"
	"slices"

	"github.com/bytedance/sonic"
	"github.com/eino-contrib/jsonschema"

	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/guardrail"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/components/rules"
	"github.com/favbox/promptflow/internal/jsonvalue"
	"github.com/favbox/promptflow/schema"
)

// Property 本体中节点或关系的一个属性。
type Property struct {
	Name        string          `yaml:"name" json:"name"`
	Type        schema.DataType `yaml:"type" json:"type"`
	Description string          `yaml:"description" json:"description,omitempty"`
	Required    bool            `yaml:"required" json:"required,omitempty"`
}

// OntologyNode 一类节点。
type OntologyNode struct {
	Type       string     `yaml:"type" json:"type"`
	Properties []Property `yaml:"properties" json:"properties,omitempty"`
}

// OntologyEdge 一类关系，连接 From 和 To 两类节点。
type OntologyEdge struct {
	Type       string     `yaml:"type" json:"type"`
	From       string     `yaml:"from" json:"from"`
	To         string     `yaml:"to" json:"to"`
	Properties []Property `yaml:"properties" json:"properties,omitempty"`
}

// Ontology 领域本体，描述从文本中抽取的事实的结构。
type Ontology struct {
	Nodes []OntologyNode `yaml:"nodes" json:"nodes"`
	Edges []OntologyEdge `yaml:"edges" json:"edges"`
}

// Schema 把本体转换为 JSON Schema：每类节点、每类关系各对应一个对象数组属性，
// 关系的元素额外带有 from、to 两个字符串属性。
func (o *Ontology) Schema() (*jsonschema.Schema, error) {
	params := make(map[string]*schema.ParameterInfo, len(o.Nodes)+len(o.Edges))

	for _, n := range o.Nodes {
		if _, ok := params[n.Type]; ok {
			return nil, fmt.Errorf("duplicate ontology type: %s", n.Type)
		}
		params[n.Type] = listOf(properties(n.Properties), "instances of "+n.Type)
	}

	for _, e := range o.Edges {
		if _, ok := params[e.Type]; ok {
			return nil, fmt.Errorf("duplicate ontology type: %s", e.Type)
		}
		props := properties(e.Properties)
		props["from"] = &schema.ParameterInfo{Type: schema.String, Desc: "id of the " + e.From, Required: true}
		props["to"] = &schema.ParameterInfo{Type: schema.String, Desc: "id of the " + e.To, Required: true}
		params[e.Type] = listOf(props, fmt.Sprintf("%s relations from %s to %s", e.Type, e.From, e.To))
	}

	return schema.NewParamsOneOfByParams(params).ToJSONSchema()
}

func properties(ps []Property) map[string]*schema.ParameterInfo {
	out := make(map[string]*schema.ParameterInfo, len(ps)+2)
	for _, p := range ps {
		typ := p.Type
		if typ == "" {
			typ = schema.String
		}
		out[p.Name] = &schema.ParameterInfo{Type: typ, Desc: p.Description, Required: p.Required}
	}
	return out
}

func listOf(props map[string]*schema.ParameterInfo, desc string) *schema.ParameterInfo {
	return &schema.ParameterInfo{
		Type: schema.Array,
		Desc: desc,
		ElemInfo: &schema.ParameterInfo{
			Type:      schema.Object,
			SubParams: props,
		},
	}
}

// RulesetCheck 一个需要满足的规则集及其事实的本体。
type RulesetCheck struct {
	ID       string   `yaml:"id" json:"id"`
	Ontology Ontology `yaml:"ontology" json:"ontology"`
}

// RulesetStep 基于规则集的护栏：按本体抽取事实，交给规则引擎运行，
// 规则集不在匹配结果中时失败。
type RulesetStep struct {
	StepName string

	Checks []RulesetCheck
	// Extractor 从 {text} 中抽取事实的语义函数，返回值应符合本体的 JSON Schema
	Extractor function.Function
	Engine    rules.Engine
}

func (s *RulesetStep) Name() string {
	if s.StepName != "" {
		return s.StepName
	}
	return s.Kind()
}

func (s *RulesetStep) Kind() string { return "Ruleset" }

func (s *RulesetStep) Process(ctx context.Context, resp *model.ChatResponse) (*model.ChatResponse, error) {
	text := resp.Content()

	for _, check := range s.Checks {
		sc, err := check.Ontology.Schema()
		if err != nil {
			return nil, fmt.Errorf("ruleset %s: %w", check.ID, err)
		}

		extracted, err := s.Extractor.Call(ctx, &function.Request{
			Args:             map[string]any{"text": text},
			ReturnTypeSchema: sc,
		})
		if err != nil {
			return nil, fmt.Errorf("ruleset %s: extract facts: %w", check.ID, err)
		}

		facts, err := toFacts(extracted.Value)
		if err != nil {
			return nil, fmt.Errorf("ruleset %s: %w", check.ID, err)
		}

		matched, err := s.Engine.Run(ctx, facts)
		if err != nil {
			return nil, fmt.Errorf("ruleset %s: %w", check.ID, err)
		}
		if !slices.Contains(matched, check.ID) {
			return nil, &guardrail.ViolationError{Key: check.ID, Reason: "ruleset not satisfied"}
		}
	}

	return resp, nil
}

// toFacts 抽取结果可能是 JSON 文本或任意结构，统一为对象。
func toFacts(v any) (map[string]any, error) {
	if s, ok := v.(string); ok {
		var out map[string]any
		if err := sonic.UnmarshalString(s, &out); err != nil {
			return nil, fmt.Errorf("facts are not a json object: %w", err)
		}
		return out, nil
	}

	m, err := jsonvalue.NormalizeMap(v)
	if err != nil {
		return nil, fmt.Errorf("facts are not a json object: %w", err)
	}
	return m, nil
}
