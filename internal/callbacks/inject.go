package callbacks

import (
	"context"

	"github.com/favbox/promptflow/components"
)

// InitCallbacks 使用给定的处理器初始化回调管理器并存入上下文。
func InitCallbacks(ctx context.Context, info *RunInfo, handlers ...Handler) context.Context {
	mgr, ok := newManager(info, handlers...)
	if ok {
		return ctxWithManager(ctx, mgr)
	}

	return ctxWithManager(ctx, nil)
}

// ReuseHandlers 复用上下文中的处理器，仅替换运行信息。
func ReuseHandlers(ctx context.Context, info *RunInfo) context.Context {
	cbm, ok := managerFromCtx(ctx)
	if !ok {
		return InitCallbacks(ctx, info)
	}

	return ctxWithManager(ctx, cbm.withRunInfo(info))
}

// EnsureRunInfo 上下文中没有运行信息时补充一个。
func EnsureRunInfo(ctx context.Context, typ string, comp components.Component) context.Context {
	cbm, ok := managerFromCtx(ctx)
	if !ok {
		return InitCallbacks(ctx, &RunInfo{
			Type:      typ,
			Component: comp,
		})
	}

	if cbm.runInfo == nil {
		return ReuseHandlers(ctx, &RunInfo{
			Type:      typ,
			Component: comp,
		})
	}

	return ctx
}

// AppendHandlers 在现有调用级处理器之后追加处理器。
func AppendHandlers(ctx context.Context, info *RunInfo, handlers ...Handler) context.Context {
	cbm, ok := managerFromCtx(ctx)
	if !ok {
		return InitCallbacks(ctx, info, handlers...)
	}

	nh := make([]Handler, len(cbm.handlers)+len(handlers))
	copy(nh[:len(cbm.handlers)], cbm.handlers)
	copy(nh[len(cbm.handlers):], handlers)

	if info == nil {
		info = cbm.runInfo
	}

	return InitCallbacks(ctx, info, nh...)
}

// Handle 回调处理函数类型。
type Handle[T any] func(context.Context, T, *RunInfo, []Handler) (context.Context, T)

// On 执行指定时机的回调处理。
//
// start 为 true 时，管理器中的运行信息被移入上下文，
// 之后同一阶段的 OnEnd/OnError/OnEvent 从上下文读取，嵌套阶段不会互相覆盖。
func On[T any](ctx context.Context, inOut T, handle Handle[T], timing CallbackTiming, start bool) (context.Context, T) {
	mgr, ok := managerFromCtx(ctx)
	if !ok {
		return ctx, inOut
	}

	nMgr := *mgr

	var info *RunInfo
	if start {
		info = nMgr.runInfo
		nMgr.runInfo = nil
		ctx = context.WithValue(ctx, CtxRunInfoKey{}, info)
	} else {
		if nMgr.runInfo != nil {
			info = nMgr.runInfo
		} else {
			info, _ = ctx.Value(CtxRunInfoKey{}).(*RunInfo)
		}
	}

	hs := make([]Handler, 0, len(nMgr.handlers)+len(nMgr.globalHandlers))
	for _, group := range [][]Handler{nMgr.handlers, nMgr.globalHandlers} {
		for _, handler := range group {
			timingChecker, ok_ := handler.(TimingChecker)
			if !ok_ || timingChecker.Needed(ctx, info, timing) {
				hs = append(hs, handler)
			}
		}
	}

	var out T
	ctx, out = handle(ctx, inOut, info, hs)

	return ctxWithManager(ctx, &nMgr), out
}

// OnStartHandle 逆序执行 OnStart，后注册的处理器先执行。
func OnStartHandle[T any](ctx context.Context, input T, runInfo *RunInfo, handlers []Handler) (context.Context, T) {
	for i := len(handlers) - 1; i >= 0; i-- {
		ctx = handlers[i].OnStart(ctx, runInfo, input)
	}

	return ctx, input
}

// OnEndHandle 顺序执行 OnEnd。
func OnEndHandle[T any](ctx context.Context, output T, runInfo *RunInfo, handlers []Handler) (context.Context, T) {
	for _, handler := range handlers {
		ctx = handler.OnEnd(ctx, runInfo, output)
	}

	return ctx, output
}

// OnErrorHandle 顺序执行 OnError。
func OnErrorHandle(ctx context.Context, err error, runInfo *RunInfo, handlers []Handler) (context.Context, error) {
	for _, handler := range handlers {
		ctx = handler.OnError(ctx, runInfo, err)
	}

	return ctx, err
}

// OnEventHandle 顺序执行 OnEvent。
func OnEventHandle[T any](ctx context.Context, event T, runInfo *RunInfo, handlers []Handler) (context.Context, T) {
	for _, handler := range handlers {
		ctx = handler.OnEvent(ctx, runInfo, event)
	}

	return ctx, event
}
