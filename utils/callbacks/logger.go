package callbacks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/favbox/promptflow/callbacks"
)

type stageStartKey struct{}

// NewLoggerHandler 返回记录每个阶段开始、结束、出错和事件的处理器。
// 开始和事件为 debug 级别，结束为 info，出错为 warn。
func NewLoggerHandler(l *zap.Logger) callbacks.Handler {
	if l == nil {
		l = zap.NewNop()
	}
	return &loggerHandler{l: l}
}

type loggerHandler struct {
	l *zap.Logger
}

func stageFields(info *callbacks.RunInfo) []zap.Field {
	if info == nil {
		return nil
	}
	return []zap.Field{
		zap.String("component", string(info.Component)),
		zap.String("type", info.Type),
		zap.String("name", info.Name),
	}
}

func elapsed(ctx context.Context) zap.Field {
	if start, ok := ctx.Value(stageStartKey{}).(time.Time); ok {
		return zap.Duration("elapsed", time.Since(start))
	}
	return zap.Skip()
}

func (h *loggerHandler) OnStart(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackInput) context.Context {
	h.l.Debug("stage start", stageFields(info)...)
	return context.WithValue(ctx, stageStartKey{}, time.Now())
}

func (h *loggerHandler) OnEnd(ctx context.Context, info *callbacks.RunInfo, _ callbacks.CallbackOutput) context.Context {
	h.l.Info("stage end", append(stageFields(info), elapsed(ctx))...)
	return ctx
}

func (h *loggerHandler) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	h.l.Warn("stage failed", append(stageFields(info), elapsed(ctx), zap.Error(err))...)
	return ctx
}

func (h *loggerHandler) OnEvent(ctx context.Context, info *callbacks.RunInfo, event callbacks.CallbackEvent) context.Context {
	h.l.Debug("stage event", append(stageFields(info), zap.String("event", fmt.Sprintf("%T", event)))...)
	return ctx
}
