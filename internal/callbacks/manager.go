package callbacks

import "context"

// CtxManagerKey 上下文管理器键类型。
type CtxManagerKey struct{}

// CtxRunInfoKey 上下文运行信息键类型。
type CtxRunInfoKey struct{}

// manager 回调管理器，随 context 传递，每次调用独立持有一份。
type manager struct {
	// globalHandlers 创建时复制的全局处理器
	globalHandlers []Handler
	// handlers 调用级处理器，在全局处理器之前执行
	handlers []Handler
	// runInfo 下一个 OnStart 将使用的运行信息
	runInfo *RunInfo
}

// GlobalHandlers 全局回调处理器集合。
// 只应在进程初始化期间修改。
var GlobalHandlers []Handler

// newManager 合并全局处理器和调用级处理器，没有任何处理器时返回 false。
func newManager(runInfo *RunInfo, handlers ...Handler) (*manager, bool) {
	if len(handlers)+len(GlobalHandlers) == 0 {
		return nil, false
	}

	hs := make([]Handler, len(GlobalHandlers))
	copy(hs, GlobalHandlers)

	return &manager{
		globalHandlers: hs,
		handlers:       handlers,
		runInfo:        runInfo,
	}, true
}

// withRunInfo 复制管理器并替换运行信息。
func (m *manager) withRunInfo(runInfo *RunInfo) *manager {
	if m == nil {
		return nil
	}

	n := *m
	n.runInfo = runInfo
	return &n
}

// managerFromCtx 从上下文中取出管理器的副本。
func managerFromCtx(ctx context.Context) (*manager, bool) {
	v := ctx.Value(CtxManagerKey{})
	m, ok := v.(*manager)
	if ok && m != nil {
		n := *m
		return &n, true
	}

	return nil, false
}

// ctxWithManager 将管理器存入上下文。
func ctxWithManager(ctx context.Context, manager *manager) context.Context {
	return context.WithValue(ctx, CtxManagerKey{}, manager)
}
