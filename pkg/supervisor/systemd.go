package supervisor

import (
	"context"
	"fmt"

	"github.com/mahasewa/ops/pkg/remote"
)

// Systemd supervises the service through an init-system unit.
type Systemd struct {
	Service string
}

func (s *Systemd) Kind() Kind { return KindSystemd }

func (s *Systemd) Detect(ctx context.Context, runner remote.Runner) (bool, error) {
	// `systemctl cat` exits non-zero when the unit is not registered
	res, err := runner.Run(ctx, fmt.Sprintf("systemctl cat %s.service > /dev/null 2>&1", s.Service))
	if err != nil {
		return false, err
	}

	return res.Ok(), nil
}

func (s *Systemd) Restart(ctx context.Context, runner remote.Runner) error {
	return runChecked(ctx, runner, fmt.Sprintf("sudo systemctl restart %s.service", s.Service))
}

func (s *Systemd) RestartAll(ctx context.Context, runner remote.Runner) error {
	return runChecked(ctx, runner,
		fmt.Sprintf("sudo systemctl daemon-reload && sudo systemctl restart %s.service", s.Service))
}

func (s *Systemd) Instructions() string {
	return fmt.Sprintf("run: sudo systemctl restart %s.service", s.Service)
}

var _ Supervisor = (*Systemd)(nil)
