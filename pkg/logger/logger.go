package logger

import (
	"context"
)

type Logger interface {
	Debug(ctx context.Context, msg string, fields ...KeyValue)
	Info(ctx context.Context, msg string, fields ...KeyValue)
	Warn(ctx context.Context, msg string, fields ...KeyValue)
	Error(ctx context.Context, msg string, fields ...KeyValue)
}

type KeyValue struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

func KV(k string, v interface{}) KeyValue {
	return KeyValue{
		Key:   k,
		Value: v,
	}
}

// global is used by the package-level Debug/Info/Warn/Error functions.
// Commands must call SetGlobalLogger once, right after the config is loaded.
var global Logger = NewNoop()

func SetGlobalLogger(l Logger) {
	if l == nil {
		return
	}

	global = l
}

func Debug(ctx context.Context, msg string, fields ...KeyValue) {
	global.Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...KeyValue) {
	global.Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...KeyValue) {
	global.Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...KeyValue) {
	global.Error(ctx, msg, fields...)
}
