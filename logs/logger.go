// Package logs 持有进程级的 zap 日志器。
//
// 库代码只通过 L() 记录日志，默认丢弃全部输出；由可执行程序调用 SetLogger 决定输出方式。
package logs

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var global atomic.Pointer[zap.Logger]

func init() {
	global.Store(zap.NewNop())
}

// L 返回当前日志器。
func L() *zap.Logger {
	return global.Load()
}

// SetLogger 替换日志器，传入 nil 时恢复为丢弃输出。
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	global.Store(l)
}

// New 构建命令行使用的日志器，verbose 时输出 debug 级别。
func New(verbose bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return config.Build()
}
