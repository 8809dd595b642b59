// Package callbacks 提供执行引擎每个阶段边界上的回调机制。
//
// 语义函数、实现、提示词增强、提示词模板、输出处理、组合图和智能体在开始、结束、出错时
// 都会触发回调，处理器可以据此实现日志、追踪、成本统计等治理功能。
//
// 处理器随 context.Context 传递，而不是保存在长期共享的组件实例上，
// 因此同一个语义函数或组合图实例被多个请求并发调用时，各请求的回调互不干扰。
//
// 用法：
//
//	handler := callbacks.NewHandlerBuilder().
//		OnStartFn(func(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
//			return ctx
//		}).
//		OnErrorFn(func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
//			return ctx
//		}).
//		Build()
//
//	ctx = callbacks.InitCallbacks(ctx, nil, handler)
//	resp, err := fn.Call(ctx, req)
//
// 按组件类型分别处理回调时，使用 utils/callbacks 中的 HandlerHelper。
package callbacks
