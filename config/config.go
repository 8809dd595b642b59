// Package config 从 YAML 加载组合定义，并按注册表绑定函数、工具和子组合。
//
//	name: greet
//	nodes:
//	  - {id: req, type: request}
//	  - id: hello
//	    type: mapper
//	    mapper:
//	      fields:
//	        greeting: '"hi " + input.name'
//	  - {id: out, type: output}
//	edges:
//	  - {source: req, target: hello}
//	  - {source: hello, target: out}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/favbox/promptflow/compose"
	"github.com/favbox/promptflow/mapping"
)

// NodeSpec 一个节点的声明，按 Type 使用对应的绑定字段。
type NodeSpec struct {
	ID   string           `yaml:"id"`
	Type compose.NodeType `yaml:"type"`
	Name string           `yaml:"name,omitempty"`

	// Function 注册表中的语义函数名
	Function string `yaml:"function,omitempty"`
	ModelKey string `yaml:"modelKey,omitempty"`
	// Tool 工具服务中的工具名
	Tool string `yaml:"tool,omitempty"`
	// Composition 注册表中的子组合名
	Composition string `yaml:"composition,omitempty"`

	Mapper *mapping.Template `yaml:"mapper,omitempty"`
	Loop   *compose.LoopSpec `yaml:"loop,omitempty"`
	Config map[string]any    `yaml:"config,omitempty"`
}

// CompositionSpec 一个组合的声明。
type CompositionSpec struct {
	Name  string         `yaml:"name"`
	Nodes []NodeSpec     `yaml:"nodes"`
	Edges []compose.Edge `yaml:"edges"`
}

// Load 解码一个 YAML 文档，未知字段和多个文档都视为错误。
func Load(r io.Reader) (*CompositionSpec, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var spec CompositionSpec
	if err := dec.Decode(&spec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty composition document")
		}
		return nil, fmt.Errorf("decode composition: %w", err)
	}

	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, fmt.Errorf("multiple YAML documents are not supported")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed after first YAML document: %w", err)
	}

	if spec.Name == "" {
		return nil, fmt.Errorf("composition name can't be empty")
	}
	return &spec, nil
}

// LoadFile 读取并解码文件。
func LoadFile(path string) (*CompositionSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	spec, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}
