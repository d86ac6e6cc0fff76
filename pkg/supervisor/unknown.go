package supervisor

import (
	"context"

	"github.com/mahasewa/ops/pkg/remote"
)

// Unknown is the explicit no-match outcome. Restarting through it always
// fails with ErrManualIntervention so the rollout reports DEGRADED with
// operator instructions instead of attempting an unsafe guess.
type Unknown struct{}

func (s *Unknown) Kind() Kind { return KindUnknown }

func (s *Unknown) Detect(ctx context.Context, runner remote.Runner) (bool, error) {
	return true, nil
}

func (s *Unknown) Restart(ctx context.Context, runner remote.Runner) error {
	return ErrManualIntervention
}

func (s *Unknown) RestartAll(ctx context.Context, runner remote.Runner) error {
	return ErrManualIntervention
}

func (s *Unknown) Instructions() string {
	return "no compose file, systemd unit, or pm2 process found for the service; " +
		"inspect the host and restart the application manually, then re-run the health check"
}

var _ Supervisor = (*Unknown)(nil)
