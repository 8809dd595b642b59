package compose

import (
	"fmt"

	"github.com/favbox/promptflow/components/tool"
)

// Composition 组合，创建后只读，可被并发调用。
type Composition struct {
	name     string
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	incoming map[string][]string

	tools        tool.Service
	indexBuilder IndexBuilder
}

// Option 组合的配置项。
type Option func(*Composition)

// WithTools 工具节点使用的工具服务。
func WithTools(svc tool.Service) Option {
	return func(c *Composition) { c.tools = svc }
}

// WithIndexBuilder 图中登记了索引构建时使用的构建器。
func WithIndexBuilder(b IndexBuilder) Option {
	return func(c *Composition) { c.indexBuilder = b }
}

// New 创建组合。节点 ID 重复、类型未知或缺少类型所需的绑定时返回错误；
// 图结构的检查见 Validate。
func New(name string, nodes []*Node, edges []Edge, opts ...Option) (*Composition, error) {
	c := &Composition{
		name:     name,
		nodes:    make(map[string]*Node, len(nodes)),
		order:    make([]string, 0, len(nodes)),
		edges:    append([]Edge(nil), edges...),
		incoming: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, n := range nodes {
		if n == nil || n.ID == "" {
			return nil, newGraphError(name, ErrInvalidNode, "node id can't be empty")
		}
		if _, ok := c.nodes[n.ID]; ok {
			return nil, newGraphError(name, ErrDuplicateNode, "%s", n.ID)
		}
		if err := checkBinding(n); err != nil {
			return nil, newGraphError(name, ErrInvalidNode, "%s: %v", n.ID, err)
		}
		c.nodes[n.ID] = n
		c.order = append(c.order, n.ID)
	}

	for _, e := range edges {
		c.incoming[e.Target] = append(c.incoming[e.Target], e.Source)
	}

	return c, nil
}

func checkBinding(n *Node) error {
	if !knownTypes[n.Type] {
		return fmt.Errorf("unknown node type %q", n.Type)
	}

	switch n.Type {
	case NodeFunction:
		if n.Function == nil {
			return fmt.Errorf("function node without function")
		}
	case NodeTool:
		if n.Tool == "" {
			return fmt.Errorf("tool node without tool name")
		}
	case NodeComposition:
		if n.Composition == nil {
			return fmt.Errorf("composition node without composition")
		}
	case NodeMapper:
		if n.Mapper == nil {
			return fmt.Errorf("mapper node without mapping")
		}
	case NodeLoop:
		if n.Loop == nil || n.Loop.Iterable == "" || n.Loop.Aggregate == "" {
			return fmt.Errorf("loop node needs iterable and aggregate")
		}
	}
	return nil
}

// Name 组合名称。
func (c *Composition) Name() string { return c.name }

// GetType 组件实现类型。
func (c *Composition) GetType() string { return "Composition" }

// Nodes 按创建顺序返回节点。
func (c *Composition) Nodes() []*Node {
	out := make([]*Node, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.nodes[id])
	}
	return out
}

func (c *Composition) outputNode() (string, error) {
	var out string
	for _, id := range c.order {
		if c.nodes[id].Type != NodeOutput {
			continue
		}
		if out != "" {
			return "", newGraphError(c.name, ErrMultipleOutputNodes, "%s and %s", out, id)
		}
		out = id
	}
	if out == "" {
		return "", &GraphError{Composition: c.name, Err: ErrNoOutputNode}
	}
	if len(c.incoming[out]) == 0 {
		return "", newGraphError(c.name, ErrUnreachableOutput, "%s", out)
	}
	return out, nil
}

// Validate 静态检查：恰好一个有入边的输出节点，边不引用不存在的节点，从输出节点可达的部分无环。
func (c *Composition) Validate() error {
	if _, err := c.ResolutionOrder(); err != nil {
		return err
	}
	return c.checkEdges()
}

// checkEdges 每条边的两端都必须是已声明的节点。
func (c *Composition) checkEdges() error {
	for _, e := range c.edges {
		if _, ok := c.nodes[e.Target]; !ok {
			return newGraphError(c.name, ErrMissingSourceNode, "edge %s -> %s: unknown target", e.Source, e.Target)
		}
		if _, ok := c.nodes[e.Source]; !ok {
			return newGraphError(c.name, ErrMissingSourceNode, "edge %s -> %s: unknown source", e.Source, e.Target)
		}
	}
	return nil
}

// ResolutionOrder 返回从输出节点出发的解析完成顺序：每个节点排在其全部上游之后。
func (c *Composition) ResolutionOrder() ([]string, error) {
	out, err := c.outputNode()
	if err != nil {
		return nil, err
	}

	var (
		order    []string
		done     = map[string]bool{}
		visiting = map[string]bool{}
		visit    func(id string) error
	)
	visit = func(id string) error {
		if done[id] {
			return nil
		}
		if visiting[id] {
			return newGraphError(c.name, ErrCycle, "at %s", id)
		}
		if _, ok := c.nodes[id]; !ok {
			return newGraphError(c.name, ErrMissingSourceNode, "%s", id)
		}
		visiting[id] = true
		for _, src := range c.incoming[id] {
			if err := visit(src); err != nil {
				return err
			}
		}
		delete(visiting, id)
		done[id] = true
		order = append(order, id)
		return nil
	}

	if err = visit(out); err != nil {
		return nil, err
	}
	return order, nil
}
