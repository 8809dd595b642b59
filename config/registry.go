package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/tool"
	"github.com/favbox/promptflow/compose"
	"github.com/favbox/promptflow/mapping"
)

// ErrNotRegistered 节点引用了注册表中不存在的函数或子组合。
var ErrNotRegistered = errors.New("not registered")

// Registry 构建组合时可引用的对象。
type Registry struct {
	Functions    map[string]function.Function
	Compositions map[string]*compose.Composition
	Tools        tool.Service
	IndexBuilder compose.IndexBuilder

	// Stub 为 true 时缺失的函数和子组合以占位替代，调用占位时返回 ErrNotRegistered。
	// 用于只做静态检查或只运行无需绑定的节点。
	Stub bool
}

// Register 登记已构建的组合，供之后的定义作为子组合引用。
func (r *Registry) Register(c *compose.Composition) {
	if r.Compositions == nil {
		r.Compositions = make(map[string]*compose.Composition)
	}
	r.Compositions[c.Name()] = c
}

// Build 按注册表构建组合，映射模板在这里编译。
func (s *CompositionSpec) Build(reg *Registry) (*compose.Composition, error) {
	if reg == nil {
		reg = &Registry{}
	}

	nodes := make([]*compose.Node, 0, len(s.Nodes))
	for i := range s.Nodes {
		n, err := reg.node(&s.Nodes[i])
		if err != nil {
			return nil, fmt.Errorf("composition %s, node %s: %w", s.Name, s.Nodes[i].ID, err)
		}
		nodes = append(nodes, n)
	}

	var opts []compose.Option
	if reg.Tools != nil {
		opts = append(opts, compose.WithTools(reg.Tools))
	}
	if reg.IndexBuilder != nil {
		opts = append(opts, compose.WithIndexBuilder(reg.IndexBuilder))
	}

	return compose.New(s.Name, nodes, s.Edges, opts...)
}

func (r *Registry) node(ns *NodeSpec) (*compose.Node, error) {
	n := &compose.Node{
		ID:       ns.ID,
		Type:     ns.Type,
		Name:     ns.Name,
		ModelKey: ns.ModelKey,
		Tool:     ns.Tool,
		Loop:     ns.Loop,
		Config:   ns.Config,
	}

	switch ns.Type {
	case compose.NodeFunction:
		f, err := r.function(ns.Function)
		if err != nil {
			return nil, err
		}
		n.Function = f
	case compose.NodeComposition:
		c, err := r.composition(ns.Composition)
		if err != nil {
			return nil, err
		}
		n.Composition = c
	case compose.NodeMapper:
		var t mapping.Template
		if ns.Mapper != nil {
			t = *ns.Mapper
		}
		m, err := mapping.Compile(t)
		if err != nil {
			return nil, err
		}
		n.Mapper = m
	}

	return n, nil
}

func (r *Registry) function(name string) (function.Function, error) {
	if f, ok := r.Functions[name]; ok {
		return f, nil
	}
	if name == "" {
		return nil, fmt.Errorf("function node without function name")
	}
	if !r.Stub {
		return nil, fmt.Errorf("function %s: %w", name, ErrNotRegistered)
	}
	return stub(name), nil
}

func (r *Registry) composition(name string) (*compose.Composition, error) {
	if c, ok := r.Compositions[name]; ok {
		return c, nil
	}
	if name == "" {
		return nil, fmt.Errorf("composition node without composition name")
	}
	if !r.Stub {
		return nil, fmt.Errorf("composition %s: %w", name, ErrNotRegistered)
	}
	return compose.New(name, []*compose.Node{
		{ID: "stub", Type: compose.NodeFunction, Function: stub(name)},
		{ID: "output", Type: compose.NodeOutput},
	}, []compose.Edge{{Source: "stub", Target: "output"}})
}

func stub(name string) function.Function {
	return function.Lambda(name, func(context.Context, *function.Request) (*function.Response, error) {
		return nil, fmt.Errorf("%s: %w", name, ErrNotRegistered)
	})
}
