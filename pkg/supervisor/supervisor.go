// Package supervisor discovers which mechanism keeps the application process
// alive on a Deployment Target and restarts it through that mechanism. The
// fleet is heterogeneous, so detection probes a fixed priority order and
// degrades to an explicit Unknown handle instead of guessing.
package supervisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/multierr"

	"github.com/mahasewa/ops/pkg/logger"
	"github.com/mahasewa/ops/pkg/remote"
)

type Kind string

const (
	KindComposeStack Kind = "compose"
	KindSystemd      Kind = "systemd"
	KindPM2          Kind = "pm2"
	KindUnknown      Kind = "unknown"
)

// ErrManualIntervention is returned by the Unknown handle's restart methods.
var ErrManualIntervention = errors.New("no known service manager detected, manual intervention required")

// Supervisor is one restart mechanism candidate.
type Supervisor interface {
	Kind() Kind

	// Detect reports whether this mechanism manages the service on the
	// target: a compose file present, a unit registered, a process listed.
	Detect(ctx context.Context, runner remote.Runner) (bool, error)

	// Restart restarts just the named service.
	Restart(ctx context.Context, runner remote.Runner) error

	// RestartAll restarts everything this manager controls. Used once as a
	// fallback when the narrow restart fails.
	RestartAll(ctx context.Context, runner remote.Runner) error

	// Instructions returns manual remediation steps for the operator.
	Instructions() string
}

// Config describes the service being supervised on the target.
type Config struct {
	WorkDir     string `validate:"required"`
	Service     string `validate:"required"`
	ComposeFile string
}

// Candidates returns the detection candidates in fixed priority order:
// compose stack, then systemd unit, then pm2 process.
func Candidates(conf Config) ([]Supervisor, error) {
	err := validator.New().Struct(conf)
	if err != nil {
		return nil, fmt.Errorf("supervisor config invalid: %w", err)
	}

	composeFile := conf.ComposeFile
	if composeFile == "" {
		composeFile = "docker-compose.yml"
	}

	return []Supervisor{
		&ComposeStack{WorkDir: conf.WorkDir, Service: conf.Service, ComposeFile: composeFile},
		&Systemd{Service: conf.Service},
		&PM2{Service: conf.Service},
	}, nil
}

// Discover probes each candidate in order and returns the first that claims
// the service. A detection error is recoverable: it is logged and the next
// candidate probed. When nothing matches, the Unknown handle is returned so
// the rollout can report manual instructions instead of aborting.
func Discover(ctx context.Context, runner remote.Runner, candidates []Supervisor) Supervisor {
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			break
		}

		found, err := candidate.Detect(ctx, runner)
		if err != nil {
			logger.Warn(ctx, "service manager probe failed",
				logger.KV("kind", candidate.Kind()),
				logger.KV("error", err),
			)
			continue
		}

		if found {
			logger.Info(ctx, "service manager detected", logger.KV("kind", candidate.Kind()))
			return candidate
		}
	}

	return &Unknown{}
}

// RestartWithFallback restarts the service; on failure it tries the broader
// "restart everything" command exactly once, then surfaces both failures.
func RestartWithFallback(ctx context.Context, runner remote.Runner, sup Supervisor) error {
	err := sup.Restart(ctx, runner)
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrManualIntervention) {
		return err
	}

	logger.Warn(ctx, "service restart failed, trying restart-all fallback",
		logger.KV("kind", sup.Kind()),
		logger.KV("error", err),
	)

	if fallbackErr := sup.RestartAll(ctx, runner); fallbackErr != nil {
		return multierr.Append(err, fallbackErr)
	}

	return nil
}

// runChecked executes a command and folds a non-zero exit into an error.
func runChecked(ctx context.Context, runner remote.Runner, command string) error {
	res, err := runner.Run(ctx, command)
	if err != nil {
		return err
	}

	if !res.Ok() {
		return fmt.Errorf("command %q exited %d: %s", command, res.ExitCode, res.Stderr)
	}

	return nil
}
