// Package remote is the command-execution and file-transfer channel against a
// Deployment Target, the programmatic equivalent of an SSH/SCP session.
package remote

import (
	"context"
	"io"
)

// Result is the captured outcome of one remote command.
type Result struct {
	Stdout   string `json:"stdout,omitempty"`
	Stderr   string `json:"stderr,omitempty"`
	ExitCode int    `json:"exit_code"`
}

func (r Result) Ok() bool {
	return r.ExitCode == 0
}

// Runner executes a command string on the target and returns exit status plus
// captured output. A non-zero exit is not an error; err is reserved for
// channel failures (connection lost, session setup).
type Runner interface {
	Run(ctx context.Context, command string) (Result, error)
}

// Copier copies a local file to a path on the target, overwriting with latest
// content; no diffing.
type Copier interface {
	Copy(ctx context.Context, localPath, remotePath string) error
}

// Channel is the full remote-execution surface the orchestrator needs.
type Channel interface {
	Runner
	Copier
	io.Closer
}
