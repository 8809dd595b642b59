// Package tracer 把一次顶层调用的全部阶段记录成一棵带计时的帧树，
// 根帧结束时整棵树交给 Sink 保存，用于审计和成本统计。
package tracer

import (
	"context"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/favbox/promptflow/callbacks"
	"github.com/favbox/promptflow/components"
	"github.com/favbox/promptflow/components/model"
	"github.com/favbox/promptflow/logs"
	"github.com/favbox/promptflow/schema"
)

// Sink 接收已结束的调用树。
type Sink interface {
	UpsertTrace(ctx context.Context, record *Record, username string) error
}

// SinkFunc 函数形式的 Sink。
type SinkFunc func(ctx context.Context, record *Record, username string) error

// UpsertTrace 调用 f。
func (f SinkFunc) UpsertTrace(ctx context.Context, record *Record, username string) error {
	return f(ctx, record, username)
}

// Frame 调用树中的一个阶段。
type Frame struct {
	ID         string               `json:"id"`
	ParentID   string               `json:"parent_id,omitempty"`
	Type       string               `json:"type"`
	Name       string               `json:"name,omitempty"`
	Component  components.Component `json:"component"`
	Start      time.Time            `json:"start"`
	End        time.Time            `json:"end"`
	Duration   time.Duration        `json:"duration"`
	Properties map[string]any       `json:"properties,omitempty"`
	Error      string               `json:"error,omitempty"`
	Children   []*Frame             `json:"children,omitempty"`

	mu     sync.Mutex
	closed bool
}

// Record 一次顶层调用的完整记录。
type Record struct {
	TraceID  string             `json:"trace_id"`
	Name     string             `json:"name,omitempty"`
	Duration time.Duration      `json:"duration"`
	Usage    *schema.TokenUsage `json:"usage,omitempty"`
	Root     *Frame             `json:"root"`
}

// JSON 序列化记录，map 的键按字典序输出。
func (r *Record) JSON() (string, error) {
	return sonic.ConfigStd.MarshalToString(r)
}

// Walk 深度优先遍历调用树，父帧先于子帧。
func (r *Record) Walk(fn func(f *Frame)) {
	var walk func(f *Frame)
	walk = func(f *Frame) {
		fn(f)
		for _, c := range f.Children {
			walk(c)
		}
	}
	if r.Root != nil {
		walk(r.Root)
	}
}

// Option 追踪器选项。
type Option func(t *Tracer)

// WithUsername 设置提交记录时附带的用户名。
func WithUsername(username string) Option {
	return func(t *Tracer) {
		t.username = username
	}
}

// WithLogger 设置记录 Sink 失败的日志器，默认使用 logs.L()。
func WithLogger(l *zap.Logger) Option {
	return func(t *Tracer) {
		t.logger = l
	}
}

// WithInputs 在帧属性中保留各阶段的输入和输出。
func WithInputs() Option {
	return func(t *Tracer) {
		t.keepIO = true
	}
}

// Tracer 一个回调处理器。帧保存在 ctx 中，不同的顶层调用互不共享。
type Tracer struct {
	sink     Sink
	username string
	logger   *zap.Logger
	keepIO   bool
}

type frameKey struct {
	t *Tracer
}

// New 创建追踪器，sink 为 nil 时只构建调用树不提交。
//
//	ctx = callbacks.InitCallbacks(ctx, nil, tracer.New(sink, tracer.WithUsername("ann")))
func New(sink Sink, opts ...Option) *Tracer {
	t := &Tracer{sink: sink}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// FrameFromContext 返回 ctx 中当前阶段的帧。
func (t *Tracer) FrameFromContext(ctx context.Context) *Frame {
	f, _ := ctx.Value(frameKey{t: t}).(*Frame)
	return f
}

func (t *Tracer) OnStart(ctx context.Context, info *callbacks.RunInfo, input callbacks.CallbackInput) context.Context {
	f := &Frame{
		ID:         uuid.NewString(),
		Start:      time.Now(),
		Properties: map[string]any{},
	}
	if info != nil {
		f.Type, f.Name, f.Component = info.Type, info.Name, info.Component
	}
	if t.keepIO && input != nil {
		f.Properties["input"] = input
	}

	if parent := t.FrameFromContext(ctx); parent != nil {
		f.ParentID = parent.ID
		parent.mu.Lock()
		parent.Children = append(parent.Children, f)
		parent.mu.Unlock()
	}

	return context.WithValue(ctx, frameKey{t: t}, f)
}

func (t *Tracer) OnEnd(ctx context.Context, info *callbacks.RunInfo, output callbacks.CallbackOutput) context.Context {
	f := t.FrameFromContext(ctx)
	if f == nil {
		return ctx
	}

	f.mu.Lock()
	if t.keepIO && output != nil {
		f.Properties["output"] = output
	}
	if f.Component == components.ComponentOfChatModel {
		if out := model.ConvCallbackOutput(output); out != nil && out.TokenUsage != nil {
			f.Properties["usage"] = out.TokenUsage
		}
	}
	f.mu.Unlock()

	t.close(ctx, f, nil)
	return ctx
}

func (t *Tracer) OnError(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
	if f := t.FrameFromContext(ctx); f != nil {
		t.close(ctx, f, err)
	}
	return ctx
}

// OnEvent 事件按发生顺序记录在帧的 events 属性中。
func (t *Tracer) OnEvent(ctx context.Context, info *callbacks.RunInfo, event callbacks.CallbackEvent) context.Context {
	f := t.FrameFromContext(ctx)
	if f == nil {
		return ctx
	}

	f.mu.Lock()
	events, _ := f.Properties["events"].([]any)
	f.Properties["events"] = append(events, event)
	f.mu.Unlock()

	return ctx
}

func (t *Tracer) close(ctx context.Context, f *Frame, err error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.End = time.Now()
	f.Duration = f.End.Sub(f.Start)
	if err != nil {
		f.Error = err.Error()
	}
	if len(f.Properties) == 0 {
		f.Properties = nil
	}
	f.mu.Unlock()

	if f.ParentID == "" {
		t.flush(ctx, f)
	}
}

func (t *Tracer) flush(ctx context.Context, root *Frame) {
	if t.sink == nil {
		return
	}

	record := &Record{
		TraceID:  root.ID,
		Name:     root.Name,
		Duration: root.Duration,
		Root:     root,
	}
	record.Walk(func(f *Frame) {
		usage, ok := f.Properties["usage"].(*schema.TokenUsage)
		if !ok {
			return
		}
		if record.Usage == nil {
			record.Usage = &schema.TokenUsage{}
		}
		record.Usage.PromptTokens += usage.PromptTokens
		record.Usage.CompletionTokens += usage.CompletionTokens
		record.Usage.TotalTokens += usage.TotalTokens
	})

	if err := t.sink.UpsertTrace(ctx, record, t.username); err != nil {
		logger := t.logger
		if logger == nil {
			logger = logs.L()
		}
		logger.Error("upsert trace failed", zap.String("trace_id", record.TraceID), zap.Error(err))
	}
}
