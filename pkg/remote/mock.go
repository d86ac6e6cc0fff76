package remote

import (
	"context"
	"sync"
)

// Mock is a scripted Channel for tests. RunFunc decides each command's
// result; calls are recorded for assertions.
type Mock struct {
	mu sync.Mutex

	RunFunc  func(ctx context.Context, command string) (Result, error)
	CopyFunc func(ctx context.Context, localPath, remotePath string) error

	RunCalls  []string
	CopyCalls []CopyCall
}

type CopyCall struct {
	LocalPath  string
	RemotePath string
}

var _ Channel = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{
		RunCalls:  make([]string, 0),
		CopyCalls: make([]CopyCall, 0),
	}
}

func (m *Mock) Run(ctx context.Context, command string) (Result, error) {
	m.mu.Lock()
	m.RunCalls = append(m.RunCalls, command)
	m.mu.Unlock()

	if m.RunFunc != nil {
		return m.RunFunc(ctx, command)
	}

	return Result{}, nil
}

func (m *Mock) Copy(ctx context.Context, localPath, remotePath string) error {
	m.mu.Lock()
	m.CopyCalls = append(m.CopyCalls, CopyCall{LocalPath: localPath, RemotePath: remotePath})
	m.mu.Unlock()

	if m.CopyFunc != nil {
		return m.CopyFunc(ctx, localPath, remotePath)
	}

	return nil
}

func (m *Mock) Close() error {
	return nil
}

// Commands returns a copy of the recorded command history.
func (m *Mock) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.RunCalls))
	copy(out, m.RunCalls)
	return out
}
