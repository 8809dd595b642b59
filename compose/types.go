package compose

import (
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/mapping"
)

// NodeType 节点类型。
type NodeType string

const (
	// NodeRequest 叶子节点，注入调用参数
	NodeRequest NodeType = "request"
	// NodeSchedule 叶子节点，定时触发时注入调用参数
	NodeSchedule NodeType = "schedule"
	// NodeFunction 调用语义函数
	NodeFunction NodeType = "function"
	// NodeTool 调用工具
	NodeTool NodeType = "tool"
	// NodeComposition 调用子组合
	NodeComposition NodeType = "composition"
	// NodeMapper 用映射模板重塑上游结果
	NodeMapper NodeType = "mapper"
	// NodeLoop 声明迭代变量，由下游节点逐个元素执行
	NodeLoop NodeType = "loop"
	// NodeJoiner 只合并上游结果
	NodeJoiner NodeType = "joiner"
	// NodeOutput 输出节点，每个组合恰好一个
	NodeOutput NodeType = "output"

	// 以下节点只登记索引构建的配置，不产生参数数据

	NodeSource      NodeType = "source"
	NodeIndex       NodeType = "index"
	NodeLoader      NodeType = "loader"
	NodeExtractor   NodeType = "extractor"
	NodeEmbedding   NodeType = "embedding"
	NodeVectorStore NodeType = "vectorStore"
	NodeGraphStore  NodeType = "graphStore"
)

var knownTypes = map[NodeType]bool{
	NodeRequest: true, NodeSchedule: true, NodeFunction: true, NodeTool: true,
	NodeComposition: true, NodeMapper: true, NodeLoop: true, NodeJoiner: true, NodeOutput: true,
	NodeSource: true, NodeIndex: true, NodeLoader: true, NodeExtractor: true,
	NodeEmbedding: true, NodeVectorStore: true, NodeGraphStore: true,
}

// IsIndexNode 是否为只登记索引构建配置的节点。
func (t NodeType) IsIndexNode() bool {
	switch t {
	case NodeSource, NodeIndex, NodeLoader, NodeExtractor, NodeEmbedding, NodeVectorStore, NodeGraphStore:
		return true
	default:
		return false
	}
}

// LoopSpec 循环节点的声明。
type LoopSpec struct {
	// Iterable 合并参数中可迭代属性的路径
	Iterable string `yaml:"iterable" json:"iterable"`
	// Item 每次迭代中元素的参数名，默认 "item"
	Item string `yaml:"item" json:"item"`
	// Aggregate 汇总各次迭代结果的输出键
	Aggregate string `yaml:"aggregate" json:"aggregate"`
}

// DefaultLoopItem 循环元素默认的参数名。
const DefaultLoopItem = "item"

// Node 组合中的一个节点，Type 决定使用哪个绑定字段。
type Node struct {
	ID   string
	Type NodeType
	Name string

	// Function 函数节点绑定的语义函数
	Function function.Function
	// ModelKey 函数节点调用时使用的实现
	ModelKey string
	// Tool 工具节点调用的工具名
	Tool string
	// Composition 组合节点绑定的子组合
	Composition *Composition
	// Mapper 映射节点的模板
	Mapper *mapping.Mapper
	// Loop 循环节点的声明
	Loop *LoopSpec
	// Config 索引类节点的配置
	Config map[string]any
}

// Edge 从 Source 到 Target 的边，Target 的参数由全部入边的结果按边的顺序合并而成。
type Edge struct {
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
}
