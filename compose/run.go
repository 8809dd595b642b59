package compose

import (
	"context"
	"fmt"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/function"
	"github.com/favbox/promptflow/components/tool"
	"github.com/favbox/promptflow/internal/jsonvalue"
	"github.com/favbox/promptflow/internal/safe"
	"github.com/favbox/promptflow/logs"
	"github.com/favbox/promptflow/schema"
)

// run 一次调用的解析状态，不在调用之间共享。
type run struct {
	c        *Composition
	req      *function.Request
	args     map[string]any
	cache    map[string]any
	visiting map[string]bool
	index    *IndexRequest
	metadata map[string]any
	usage    *schema.TokenUsage
}

// Call 执行组合，返回输出节点合并后的结果。
func (c *Composition) Call(ctx context.Context, req *function.Request) (resp *function.Response, err error) {
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      c.name,
		Type:      c.GetType(),
		Component: components.ComponentOfComposition,
	}, &function.CallbackInput{Request: req})
	defer func() {
		if p := recover(); p != nil {
			err = safe.NewPanicErr(p, debug.Stack())
		}
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	out, err := c.outputNode()
	if err != nil {
		return nil, err
	}
	if err = c.checkEdges(); err != nil {
		return nil, err
	}

	args, err := jsonvalue.NormalizeMap(req.Args)
	if err != nil {
		return nil, &GraphError{Composition: c.name, Err: err}
	}

	r := &run{
		c:        c,
		req:      req,
		args:     args,
		cache:    make(map[string]any, len(c.nodes)),
		visiting: make(map[string]bool),
		index:    &IndexRequest{Composition: c.name, Args: args},
		metadata: map[string]any{},
	}

	value, err := r.resolve(ctx, out)
	if err != nil {
		return nil, err
	}

	resp = &function.Response{Value: value, Usage: r.usage, Metadata: r.metadata}

	if r.index.Triggered() {
		if c.indexBuilder == nil {
			return nil, &GraphError{Composition: c.name, Err: ErrNoIndexBuilder}
		}
		logs.L().Debug("index build triggered",
			zap.String("composition", c.name),
			zap.Int("sources", len(r.index.Sources)),
			zap.Int("loaders", len(r.index.Loaders)))

		res, err := c.indexBuilder.BuildIndex(ctx, r.index)
		if err != nil {
			return nil, &GraphError{Composition: c.name, Err: fmt.Errorf("build index: %w", err)}
		}
		resp.Metadata["index"] = res
	}

	_ = callbacks.OnEnd(ctx, &function.CallbackOutput{Response: resp})
	return resp, nil
}

// Execute 最外层边界：调用组合，把错误展开为 Errors。
func (c *Composition) Execute(ctx context.Context, args map[string]any) *function.Outcome {
	resp, err := c.Call(ctx, &function.Request{Args: args})
	if err != nil {
		return &function.Outcome{Errors: function.ErrorList(err)}
	}
	return &function.Outcome{Response: resp.Value, ResponseMetadata: resp.Metadata}
}

// resolve 解析节点：先按边的顺序解析上游并合并，再执行节点本身。结果按节点缓存。
func (r *run) resolve(ctx context.Context, id string) (any, error) {
	if v, ok := r.cache[id]; ok {
		return jsonvalue.Copy(v), nil
	}
	if r.visiting[id] {
		return nil, newGraphError(r.c.name, ErrCycle, "at %s", id)
	}

	node, ok := r.c.nodes[id]
	if !ok {
		return nil, newGraphError(r.c.name, ErrMissingSourceNode, "%s", id)
	}

	r.visiting[id] = true
	defer delete(r.visiting, id)

	var (
		merged any
		loop   *LoopSpec
	)
	for _, src := range r.c.incoming[id] {
		srcNode, ok := r.c.nodes[src]
		if !ok {
			return nil, newGraphError(r.c.name, ErrMissingSourceNode, "edge %s -> %s", src, id)
		}

		v, err := r.resolve(ctx, src)
		if err != nil {
			return nil, err
		}
		if srcNode.Type == NodeLoop {
			loop = srcNode.Loop
		}
		merged = deepMerge(merged, v)
	}

	out, err := r.execNode(ctx, node, merged, loop)
	if err != nil {
		return nil, wrapNodeError(r.c.name, id, err)
	}

	out, err = jsonvalue.Normalize(out)
	if err != nil {
		return nil, wrapNodeError(r.c.name, id, err)
	}

	r.cache[id] = out
	return jsonvalue.Copy(out), nil
}

func (r *run) execNode(ctx context.Context, node *Node, merged any, loop *LoopSpec) (out any, err error) {
	name := node.Name
	if name == "" {
		name = node.ID
	}
	ctx = callbacks.StartStage(ctx, &callbacks.RunInfo{
		Name:      name,
		Type:      string(node.Type),
		Component: components.ComponentOfCompositionNode,
	}, &NodeCallbackInput{NodeID: node.ID, Type: node.Type, Args: merged})
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, safe.NewPanicErr(p, debug.Stack())
		}
		if err != nil {
			_ = callbacks.OnError(ctx, err)
		}
	}()

	switch node.Type {
	case NodeRequest, NodeSchedule:
		out = jsonvalue.Copy(r.args)
	case NodeFunction:
		out, err = r.iterate(merged, loop, func(args map[string]any) (any, error) {
			return r.callFunction(ctx, node, node.Function, args)
		})
	case NodeComposition:
		out, err = r.iterate(merged, loop, func(args map[string]any) (any, error) {
			return r.callFunction(ctx, node, node.Composition, args)
		})
	case NodeTool:
		if r.c.tools == nil {
			return nil, fmt.Errorf("tool node %s: no tool service", node.ID)
		}
		out, err = r.iterate(merged, loop, func(args map[string]any) (any, error) {
			return tool.Invoke(ctx, r.c.tools, node.Tool, args)
		})
	case NodeMapper:
		var in map[string]any
		in, err = asArgs(merged)
		if err == nil {
			out, err = node.Mapper.Apply(in)
		}
	case NodeLoop, NodeJoiner, NodeOutput:
		out = merged
	default:
		// 索引类节点不产生参数数据
		r.index.add(node)
	}
	if err != nil {
		return nil, err
	}

	_ = callbacks.OnEnd(ctx, &NodeCallbackOutput{NodeID: node.ID, Result: out})
	return out, nil
}

func (r *run) callFunction(ctx context.Context, node *Node, f function.Function, args map[string]any) (any, error) {
	resp, err := f.Call(ctx, &function.Request{
		Args:        args,
		History:     r.req.History,
		ModelKey:    node.ModelKey,
		ModelParams: r.req.ModelParams,
	})
	if err != nil {
		return nil, err
	}

	r.usage = function.AddUsage(r.usage, resp.Usage)
	if len(resp.Metadata) > 0 {
		r.metadata[node.ID] = resp.Metadata
	}
	return resp.Value, nil
}

// iterate 上游有循环节点时逐个元素顺序调用，结果汇总在循环声明的输出键下。
func (r *run) iterate(merged any, loop *LoopSpec, call func(args map[string]any) (any, error)) (any, error) {
	args, err := asArgs(merged)
	if err != nil {
		return nil, err
	}
	if loop == nil {
		return call(args)
	}

	v, _ := jsonvalue.Get(args, loop.Iterable)
	items, ok := v.([]any)
	if !ok && v != nil {
		return nil, fmt.Errorf("loop iterable %s is %T, not an array", loop.Iterable, v)
	}

	item := loop.Item
	if item == "" {
		item = DefaultLoopItem
	}

	results := make([]any, 0, len(items))
	for _, it := range items {
		iterArgs := jsonvalue.Copy(args)
		iterArgs[item] = it
		res, err := call(iterArgs)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return map[string]any{loop.Aggregate: results}, nil
}

// asArgs 把合并结果作为调用参数，非对象的结果放在 input 下。
func asArgs(merged any) (map[string]any, error) {
	switch v := merged.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return v, nil
	default:
		return map[string]any{"input": v}, nil
	}
}
