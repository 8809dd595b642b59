package callbacks

import "context"

// HandlerBuilder 回调处理器构建器。
//
// 只需设置关心的回调函数，未设置的时机由 TimingChecker 自动跳过。
type HandlerBuilder struct {
	onStartFn func(ctx context.Context, info *RunInfo, input CallbackInput) context.Context
	onEndFn   func(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context
	onErrorFn func(ctx context.Context, info *RunInfo, err error) context.Context
	onEventFn func(ctx context.Context, info *RunInfo, event CallbackEvent) context.Context
}

type handlerImpl struct {
	HandlerBuilder
}

func (hb *handlerImpl) OnStart(ctx context.Context, info *RunInfo, input CallbackInput) context.Context {
	return hb.onStartFn(ctx, info, input)
}

func (hb *handlerImpl) OnEnd(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context {
	return hb.onEndFn(ctx, info, output)
}

func (hb *handlerImpl) OnError(ctx context.Context, info *RunInfo, err error) context.Context {
	return hb.onErrorFn(ctx, info, err)
}

func (hb *handlerImpl) OnEvent(ctx context.Context, info *RunInfo, event CallbackEvent) context.Context {
	return hb.onEventFn(ctx, info, event)
}

// Needed 实现 TimingChecker，未设置回调函数的时机返回 false。
func (hb *handlerImpl) Needed(_ context.Context, _ *RunInfo, timing CallbackTiming) bool {
	switch timing {
	case TimingOnStart:
		return hb.onStartFn != nil
	case TimingOnEnd:
		return hb.onEndFn != nil
	case TimingOnError:
		return hb.onErrorFn != nil
	case TimingOnEvent:
		return hb.onEventFn != nil
	default:
		return false
	}
}

// NewHandlerBuilder 创建 HandlerBuilder。
func NewHandlerBuilder() *HandlerBuilder {
	return &HandlerBuilder{}
}

// OnStartFn 设置阶段开始时的回调函数。
func (hb *HandlerBuilder) OnStartFn(
	fn func(ctx context.Context, info *RunInfo, input CallbackInput) context.Context) *HandlerBuilder {

	hb.onStartFn = fn
	return hb
}

// OnEndFn 设置阶段正常结束时的回调函数。
func (hb *HandlerBuilder) OnEndFn(
	fn func(ctx context.Context, info *RunInfo, output CallbackOutput) context.Context) *HandlerBuilder {

	hb.onEndFn = fn
	return hb
}

// OnErrorFn 设置阶段出错时的回调函数。
func (hb *HandlerBuilder) OnErrorFn(
	fn func(ctx context.Context, info *RunInfo, err error) context.Context) *HandlerBuilder {

	hb.onErrorFn = fn
	return hb
}

// OnEventFn 设置阶段内部事件的回调函数。
func (hb *HandlerBuilder) OnEventFn(
	fn func(ctx context.Context, info *RunInfo, event CallbackEvent) context.Context) *HandlerBuilder {

	hb.onEventFn = fn
	return hb
}

// Build 构建 Handler。
func (hb *HandlerBuilder) Build() Handler {
	return &handlerImpl{*hb}
}
