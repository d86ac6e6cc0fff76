package logger

import "context"

// Noop discards everything. It is the default global logger so library code
// can log before a command wires the real one.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (n *Noop) Debug(ctx context.Context, msg string, fields ...KeyValue) {}
func (n *Noop) Info(ctx context.Context, msg string, fields ...KeyValue)  {}
func (n *Noop) Warn(ctx context.Context, msg string, fields ...KeyValue)  {}
func (n *Noop) Error(ctx context.Context, msg string, fields ...KeyValue) {}

var _ Logger = (*Noop)(nil)
