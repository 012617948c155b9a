package logger

import (
	"context"
	"log/slog"
)

// Logger 日志接口，args 为 slog 风格的 key/value 对
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	WarnContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)

	With(args ...any) Logger
	WithGroup(name string) Logger
}

// Nop 丢弃所有日志
func Nop() Logger {
	return &SLog{slogger: slog.New(slog.DiscardHandler)}
}
