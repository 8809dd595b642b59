package components

// Component 表示执行引擎中可被回调观测的组件类型。
type Component string

const (
	// ComponentOfSemanticFunction 语义函数：参数校验 + 实现选择
	ComponentOfSemanticFunction Component = "SemanticFunction"
	// ComponentOfImplementation 语义函数实现：绑定一个模型与可选的流水线
	ComponentOfImplementation Component = "Implementation"
	// ComponentOfPromptTemplate 提示词模板：填充消息并执行上下文长度检查
	ComponentOfPromptTemplate Component = "PromptTemplate"
	// ComponentOfPromptEnrichment 提示词增强流水线
	ComponentOfPromptEnrichment Component = "PromptEnrichment"
	// ComponentOfEnrichmentStep 提示词增强流水线中的单个步骤
	ComponentOfEnrichmentStep Component = "EnrichmentStep"
	// ComponentOfInputGuardrail 模型调用前的输入护栏
	ComponentOfInputGuardrail Component = "InputGuardrail"
	// ComponentOfOutputProcessing 输出处理流水线
	ComponentOfOutputProcessing Component = "OutputProcessing"
	// ComponentOfOutputStep 输出处理流水线中的单个步骤
	ComponentOfOutputStep Component = "OutputStep"
	// ComponentOfChatModel 模型服务调用
	ComponentOfChatModel Component = "ChatModel"
	// ComponentOfTool 工具服务调用
	ComponentOfTool Component = "Tool"
	// ComponentOfComposition 组合图（DAG）的一次调用
	ComponentOfComposition Component = "Composition"
	// ComponentOfCompositionNode 组合图中单个节点的解析
	ComponentOfCompositionNode Component = "CompositionNode"
	// ComponentOfIndexBuild 组合图触发的索引构建子流水线
	ComponentOfIndexBuild Component = "IndexBuild"
	// ComponentOfAgent 智能体循环
	ComponentOfAgent Component = "Agent"
	// ComponentOfLoader 文档加载
	ComponentOfLoader Component = "Loader"
	// ComponentOfTransformer 文档转换，例如切分
	ComponentOfTransformer Component = "Transformer"
	// ComponentOfEmbedding 文本向量化
	ComponentOfEmbedding Component = "Embedding"
)

// Typer 获取组件实现的类型名称。
//
// 类型名称与 Component 组合构成回调中的 RunInfo，例如 "ReAct" + Agent。
type Typer interface {
	GetType() string
}

// GetType 返回组件实现的类型名称，未实现 Typer 时返回空字符串和 false。
func GetType(component any) (string, bool) {
	if typer, ok := component.(Typer); ok {
		return typer.GetType(), true
	}

	return "", false
}
