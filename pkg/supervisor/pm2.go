package supervisor

import (
	"context"
	"fmt"

	"github.com/mahasewa/ops/pkg/remote"
)

// PM2 supervises the service through a pm2-managed process.
type PM2 struct {
	Service string
}

func (s *PM2) Kind() Kind { return KindPM2 }

func (s *PM2) Detect(ctx context.Context, runner remote.Runner) (bool, error) {
	res, err := runner.Run(ctx, fmt.Sprintf("pm2 describe %s > /dev/null 2>&1", s.Service))
	if err != nil {
		return false, err
	}

	return res.Ok(), nil
}

func (s *PM2) Restart(ctx context.Context, runner remote.Runner) error {
	return runChecked(ctx, runner, fmt.Sprintf("pm2 restart %s --update-env", s.Service))
}

func (s *PM2) RestartAll(ctx context.Context, runner remote.Runner) error {
	return runChecked(ctx, runner, "pm2 restart all --update-env")
}

func (s *PM2) Instructions() string {
	return fmt.Sprintf("run: pm2 restart %s --update-env", s.Service)
}

var _ Supervisor = (*PM2)(nil)
