package supervisor

import (
	"context"
	"fmt"

	"github.com/mahasewa/ops/pkg/remote"
)

// ComposeStack supervises the service through a docker compose project in the
// target's working directory.
type ComposeStack struct {
	WorkDir     string
	Service     string
	ComposeFile string
}

func (s *ComposeStack) Kind() Kind { return KindComposeStack }

func (s *ComposeStack) Detect(ctx context.Context, runner remote.Runner) (bool, error) {
	res, err := runner.Run(ctx, fmt.Sprintf("test -f %s/%s && command -v docker", s.WorkDir, s.ComposeFile))
	if err != nil {
		return false, err
	}

	return res.Ok(), nil
}

func (s *ComposeStack) Restart(ctx context.Context, runner remote.Runner) error {
	return runChecked(ctx, runner,
		fmt.Sprintf("cd %s && docker compose -f %s restart %s", s.WorkDir, s.ComposeFile, s.Service))
}

func (s *ComposeStack) RestartAll(ctx context.Context, runner remote.Runner) error {
	// down/up rather than restart so compose picks up changed images and env
	return runChecked(ctx, runner,
		fmt.Sprintf("cd %s && docker compose -f %s up -d --force-recreate", s.WorkDir, s.ComposeFile))
}

func (s *ComposeStack) Instructions() string {
	return fmt.Sprintf("run: cd %s && docker compose -f %s restart %s", s.WorkDir, s.ComposeFile, s.Service)
}

var _ Supervisor = (*ComposeStack)(nil)
