package logger

import "context"

// tracerCtxKey avoid allocating when assigning to an interface{}, context keys often have concrete type struct{}.
type tracerCtxKey struct{}

var tracerKey = tracerCtxKey{}

// Tracer carries per-invocation correlation data. For this tool an invocation
// is one CLI run (one migration or one rollout), so RemoteAddr is usually
// "system" and AppTraceID a fresh UUID.
type Tracer struct {
	RemoteAddr string `json:"remote_addr,omitempty"`
	AppTraceID string `json:"app_trace_id,omitempty"`
}

// Inject inject Tracer object into context.
// As Go doc said: https://golang.org/pkg/context/#WithValue
// Use context Values only for request-scoped data that transits processes and APIs,
// not for passing optional parameters to functions.
func Inject(ctx context.Context, stuff Tracer) context.Context {
	return context.WithValue(ctx, tracerKey, stuff)
}

// Extract get Tracer information from context
func Extract(ctx context.Context) (Tracer, bool) {
	stuff, ok := ctx.Value(tracerKey).(Tracer)
	if !ok {
		return Tracer{}, false
	}

	return stuff, ok
}

// MustExtract will extract Tracer without false condition.
// When Tracer is not exist, it will return empty Tracer instead of error.
func MustExtract(ctx context.Context) Tracer {
	stuff, _ := Extract(ctx)
	return stuff
}
