// Package callbacks 提供按组件分发的类型化回调构建器，以及基于 zap 的日志回调。
package callbacks

import (
	"context"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/document"
	"github.com/favbox/promptflow/components/embedding"
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/components/tool"
	"github.com/favbox/promptflow/compose"
	"github.com/favbox/promptflow/enrichment"
	"github.com/favbox/promptflow/flow/agent"
	"github.com/favbox/promptflow/output"
	"github.com/favbox/promptflow/prompt"
)

// ComponentHandler 一类组件的类型化回调，未设置的时机不会触发。
type ComponentHandler[I, O any] struct {
	OnStart func(ctx context.Context, info *callbacks.RunInfo, input I) context.Context
	OnEnd   func(ctx context.Context, info *callbacks.RunInfo, output O) context.Context
	OnError func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context
	OnEvent func(ctx context.Context, info *callbacks.RunInfo, event callbacks.CallbackEvent) context.Context
}

// Needed 检查指定时机是否设置了回调。
func (h *ComponentHandler[I, O]) Needed(_ context.Context, _ *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	switch timing {
	case callbacks.TimingOnStart:
		return h.OnStart != nil
	case callbacks.TimingOnEnd:
		return h.OnEnd != nil
	case callbacks.TimingOnError:
		return h.OnError != nil
	case callbacks.TimingOnEvent:
		return h.OnEvent != nil
	default:
		return false
	}
}

type (
	// FunctionCallbackHandler 语义函数、实现和组合图的回调
	FunctionCallbackHandler = ComponentHandler[*function.CallbackInput, *function.CallbackOutput]
	// NodeCallbackHandler 组合图节点的回调
	NodeCallbackHandler       = ComponentHandler[*compose.NodeCallbackInput, *compose.NodeCallbackOutput]
	PromptCallbackHandler     = ComponentHandler[*prompt.CallbackInput, *prompt.CallbackOutput]
	EnrichmentCallbackHandler = ComponentHandler[*enrichment.CallbackInput, *enrichment.CallbackOutput]
	StepCallbackHandler       = ComponentHandler[*enrichment.StepCallbackInput, *enrichment.StepCallbackOutput]
	// GuardrailCallbackHandler 输入护栏的回调，输入输出都是扫描前后的请求
	GuardrailCallbackHandler   = ComponentHandler[*model.ChatRequest, *model.ChatRequest]
	OutputCallbackHandler      = ComponentHandler[*output.CallbackInput, *output.CallbackOutput]
	ModelCallbackHandler       = ComponentHandler[*model.CallbackInput, *model.CallbackOutput]
	ToolCallbackHandler        = ComponentHandler[*tool.CallbackInput, *tool.CallbackOutput]
	AgentCallbackHandler       = ComponentHandler[*agent.CallbackInput, *agent.CallbackOutput]
	IndexCallbackHandler       = ComponentHandler[*compose.IndexRequest, *compose.IndexResult]
	LoaderCallbackHandler      = ComponentHandler[*document.LoaderCallbackInput, *document.LoaderCallbackOutput]
	TransformerCallbackHandler = ComponentHandler[*document.TransformerCallbackInput, *document.TransformerCallbackOutput]
	EmbeddingCallbackHandler   = ComponentHandler[*embedding.CallbackInput, *embedding.CallbackOutput]
)

// routed 擦除类型后的组件回调。
type routed interface {
	start(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context
	end(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context
	fail(ctx context.Context, info *callbacks.RunInfo, err error) context.Context
	event(ctx context.Context, info *callbacks.RunInfo, event callbacks.CallbackEvent) context.Context
	needed(ctx context.Context, info *callbacks.RunInfo, timing callbacks.CallbackTiming) bool
}

type route[I, O any] struct {
	h       *ComponentHandler[I, O]
	convIn  func(callbacks.CallbackInput) I
	convOut func(callbacks.CallbackOutput) O
}

func (r *route[I, O]) start(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if r.h.OnStart == nil {
		return ctx
	}
	return r.h.OnStart(ctx, info, r.convIn(input))
}

func (r *route[I, O]) end(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if r.h.OnEnd == nil {
		return ctx
	}
	return r.h.OnEnd(ctx, info, r.convOut(output))
}

func (r *route[I, O]) fail(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if r.h.OnError == nil {
		return ctx
	}
	return r.h.OnError(ctx, info, err)
}

func (r *route[I, O]) event(ctx context.Context, info *callbacks.RunInfo, event callbacks.CallbackEvent) context.Context {
	if r.h.OnEvent == nil {
		return ctx
	}
	return r.h.OnEvent(ctx, info, event)
}

func (r *route[I, O]) needed(ctx context.Context, info *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	return r.h.Needed(ctx, info, timing)
}

func asInput[T any](src callbacks.CallbackInput) T {
	t, _ := src.(T)
	return t
}

func asOutput[T any](src callbacks.CallbackOutput) T {
	t, _ := src.(T)
	return t
}

func add[I, O any](c *HandlerHelper, comp components.Component, h *ComponentHandler[I, O],
	convIn func(callbacks.CallbackInput) I, convOut func(callbacks.CallbackOutput) O) *HandlerHelper {
	if h == nil {
		delete(c.routes, comp)
		return c
	}
	c.routes[comp] = &route[I, O]{h: h, convIn: convIn, convOut: convOut}
	return c
}

// NewHandlerHelper 创建按组件分发的回调构建器。
func NewHandlerHelper() *HandlerHelper {
	return &HandlerHelper{routes: map[components.Component]routed{}}
}

// HandlerHelper 按组件类型把回调分发到类型化的处理器。
//
//	handler := NewHandlerHelper().
//		ChatModel(&ModelCallbackHandler{OnEnd: recordUsage}).
//		Tool(&ToolCallbackHandler{OnError: alert}).
//		Handler()
//	ctx = callbacks.InitCallbacks(ctx, nil, handler)
type HandlerHelper struct {
	routes map[components.Component]routed
}

// Handler 返回构建的回调处理器。
func (c *HandlerHelper) Handler() callbacks.Handler {
	return &handlerTemplate{c}
}

func (c *HandlerHelper) SemanticFunction(h *FunctionCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfSemanticFunction, h, function.ConvCallbackInput, function.ConvCallbackOutput)
}

func (c *HandlerHelper) Implementation(h *FunctionCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfImplementation, h, function.ConvCallbackInput, function.ConvCallbackOutput)
}

func (c *HandlerHelper) Composition(h *FunctionCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfComposition, h, function.ConvCallbackInput, function.ConvCallbackOutput)
}

func (c *HandlerHelper) CompositionNode(h *NodeCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfCompositionNode, h, compose.ConvNodeCallbackInput, compose.ConvNodeCallbackOutput)
}

func (c *HandlerHelper) PromptTemplate(h *PromptCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfPromptTemplate, h, prompt.ConvCallbackInput, prompt.ConvCallbackOutput)
}

func (c *HandlerHelper) PromptEnrichment(h *EnrichmentCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfPromptEnrichment, h, enrichment.ConvCallbackInput, enrichment.ConvCallbackOutput)
}

func (c *HandlerHelper) EnrichmentStep(h *StepCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfEnrichmentStep, h, enrichment.ConvStepCallbackInput, enrichment.ConvStepCallbackOutput)
}

func (c *HandlerHelper) InputGuardrail(h *GuardrailCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfInputGuardrail, h, asInput[*model.ChatRequest], asOutput[*model.ChatRequest])
}

func (c *HandlerHelper) OutputProcessing(h *OutputCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfOutputProcessing, h, output.ConvCallbackInput, output.ConvCallbackOutput)
}

func (c *HandlerHelper) OutputStep(h *OutputCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfOutputStep, h, output.ConvCallbackInput, output.ConvCallbackOutput)
}

func (c *HandlerHelper) ChatModel(h *ModelCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfChatModel, h, model.ConvCallbackInput, model.ConvCallbackOutput)
}

func (c *HandlerHelper) Tool(h *ToolCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfTool, h, tool.ConvCallbackInput, tool.ConvCallbackOutput)
}

func (c *HandlerHelper) Agent(h *AgentCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfAgent, h, agent.ConvCallbackInput, agent.ConvCallbackOutput)
}

func (c *HandlerHelper) IndexBuild(h *IndexCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfIndexBuild, h, asInput[*compose.IndexRequest], asOutput[*compose.IndexResult])
}

func (c *HandlerHelper) Loader(h *LoaderCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfLoader, h, document.ConvLoaderCallbackInput, document.ConvLoaderCallbackOutput)
}

func (c *HandlerHelper) Transformer(h *TransformerCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfTransformer, h, document.ConvTransformerCallbackInput, document.ConvTransformerCallbackOutput)
}

func (c *HandlerHelper) Embedding(h *EmbeddingCallbackHandler) *HandlerHelper {
	return add(c, components.ComponentOfEmbedding, h, embedding.ConvCallbackInput, embedding.ConvCallbackOutput)
}

// handlerTemplate 实现 callbacks.Handler，按 RunInfo.Component 分发。
type handlerTemplate struct {
	*HandlerHelper
}

func (c *handlerTemplate) lookup(info *callbacks.RunInfo) (routed, bool) {
	if info == nil {
		return nil, false
	}
	r, ok := c.routes[info.Component]
	return r, ok
}

func (c *handlerTemplate) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	if r, ok := c.lookup(info); ok {
		return r.start(ctx, info, input)
	}
	return ctx
}

func (c *handlerTemplate) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	if r, ok := c.lookup(info); ok {
		return r.end(ctx, info, output)
	}
	return ctx
}

func (c *handlerTemplate) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if r, ok := c.lookup(info); ok {
		return r.fail(ctx, info, err)
	}
	return ctx
}

func (c *handlerTemplate) OnEvent(ctx context.Context, info *callbacks.RunInfo, event callbacks.CallbackEvent) context.Context {
	if r, ok := c.lookup(info); ok {
		return r.event(ctx, info, event)
	}
	return ctx
}

// Needed 未注册的组件和未设置的时机都不触发。
func (c *handlerTemplate) Needed(ctx context.Context, info *callbacks.RunInfo, timing callbacks.CallbackTiming) bool {
	r, ok := c.lookup(info)
	return ok && r.needed(ctx, info, timing)
}
