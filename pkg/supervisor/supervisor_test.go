package supervisor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mahasewa/ops/pkg/remote"
)

func testCandidates(t *testing.T) []Supervisor {
	t.Helper()

	candidates, err := Candidates(Config{
		WorkDir: "/opt/mahasewa",
		Service: "backend",
	})
	require.NoError(t, err)
	return candidates
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	t.Run("fixed priority order", func(t *testing.T) {
		t.Parallel()

		candidates := testCandidates(t)
		require.Len(t, candidates, 3)
		assert.Equal(t, KindComposeStack, candidates[0].Kind())
		assert.Equal(t, KindSystemd, candidates[1].Kind())
		assert.Equal(t, KindPM2, candidates[2].Kind())
	})

	t.Run("default compose file", func(t *testing.T) {
		t.Parallel()

		candidates := testCandidates(t)
		compose, ok := candidates[0].(*ComposeStack)
		require.True(t, ok)
		assert.Equal(t, "docker-compose.yml", compose.ComposeFile)
	})

	t.Run("missing service name", func(t *testing.T) {
		t.Parallel()

		_, err := Candidates(Config{WorkDir: "/opt/mahasewa"})
		assert.Error(t, err)
	})
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("first match wins", func(t *testing.T) {
		t.Parallel()

		mock := remote.NewMock()
		mock.RunFunc = func(ctx context.Context, command string) (remote.Result, error) {
			// every probe succeeds, compose is first in priority order
			return remote.Result{ExitCode: 0}, nil
		}

		sup := Discover(ctx, mock, testCandidates(t))
		assert.Equal(t, KindComposeStack, sup.Kind())
	})

	t.Run("falls through to later candidate", func(t *testing.T) {
		t.Parallel()

		mock := remote.NewMock()
		mock.RunFunc = func(ctx context.Context, command string) (remote.Result, error) {
			if strings.Contains(command, "pm2 describe") {
				return remote.Result{ExitCode: 0}, nil
			}
			return remote.Result{ExitCode: 1}, nil
		}

		sup := Discover(ctx, mock, testCandidates(t))
		assert.Equal(t, KindPM2, sup.Kind())
	})

	t.Run("probe error is recoverable", func(t *testing.T) {
		t.Parallel()

		mock := remote.NewMock()
		mock.RunFunc = func(ctx context.Context, command string) (remote.Result, error) {
			if strings.Contains(command, "systemctl cat") {
				return remote.Result{ExitCode: 0}, nil
			}
			return remote.Result{}, errors.New("connection reset")
		}

		sup := Discover(ctx, mock, testCandidates(t))
		assert.Equal(t, KindSystemd, sup.Kind())
	})

	t.Run("nothing matches yields unknown", func(t *testing.T) {
		t.Parallel()

		mock := remote.NewMock()
		mock.RunFunc = func(ctx context.Context, command string) (remote.Result, error) {
			return remote.Result{ExitCode: 1}, nil
		}

		sup := Discover(ctx, mock, testCandidates(t))
		assert.Equal(t, KindUnknown, sup.Kind())
		assert.NotEmpty(t, sup.Instructions())
	})
}

func TestRestartWithFallback(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sup := &ComposeStack{WorkDir: "/opt/mahasewa", Service: "backend", ComposeFile: "docker-compose.yml"}

	t.Run("narrow restart succeeds", func(t *testing.T) {
		t.Parallel()

		mock := remote.NewMock()
		err := RestartWithFallback(ctx, mock, sup)
		require.NoError(t, err)

		commands := mock.Commands()
		require.Len(t, commands, 1)
		assert.Contains(t, commands[0], "docker compose -f docker-compose.yml restart backend")
	})

	t.Run("fallback runs exactly once", func(t *testing.T) {
		t.Parallel()

		mock := remote.NewMock()
		mock.RunFunc = func(ctx context.Context, command string) (remote.Result, error) {
			if strings.Contains(command, "restart backend") {
				return remote.Result{ExitCode: 1, Stderr: "no such service"}, nil
			}
			return remote.Result{ExitCode: 0}, nil
		}

		err := RestartWithFallback(ctx, mock, sup)
		require.NoError(t, err)

		commands := mock.Commands()
		require.Len(t, commands, 2)
		assert.Contains(t, commands[1], "up -d --force-recreate")
	})

	t.Run("both failures surface", func(t *testing.T) {
		t.Parallel()

		mock := remote.NewMock()
		mock.RunFunc = func(ctx context.Context, command string) (remote.Result, error) {
			return remote.Result{ExitCode: 1, Stderr: "daemon not running"}, nil
		}

		err := RestartWithFallback(ctx, mock, sup)
		require.Error(t, err)
		assert.Len(t, mock.Commands(), 2)
	})

	t.Run("unknown asks for manual intervention", func(t *testing.T) {
		t.Parallel()

		mock := remote.NewMock()
		err := RestartWithFallback(ctx, mock, &Unknown{})
		assert.ErrorIs(t, err, ErrManualIntervention)

		// no fallback attempt for a manager we cannot drive
		assert.Empty(t, mock.Commands())
	})
}

func TestSupervisorCommands(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	testCases := []struct {
		name        string
		sup         Supervisor
		wantDetect  string
		wantRestart string
		wantAll     string
	}{
		{
			name:        "compose",
			sup:         &ComposeStack{WorkDir: "/opt/mahasewa", Service: "backend", ComposeFile: "compose.yml"},
			wantDetect:  "test -f /opt/mahasewa/compose.yml",
			wantRestart: "docker compose -f compose.yml restart backend",
			wantAll:     "up -d --force-recreate",
		},
		{
			name:        "systemd",
			sup:         &Systemd{Service: "mahasewa-backend"},
			wantDetect:  "systemctl cat mahasewa-backend.service",
			wantRestart: "sudo systemctl restart mahasewa-backend",
			wantAll:     "daemon-reload",
		},
		{
			name:        "pm2",
			sup:         &PM2{Service: "backend"},
			wantDetect:  "pm2 describe backend",
			wantRestart: "pm2 restart backend --update-env",
			wantAll:     "pm2 restart all --update-env",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mock := remote.NewMock()

			_, err := tc.sup.Detect(ctx, mock)
			require.NoError(t, err)
			require.NoError(t, tc.sup.Restart(ctx, mock))
			require.NoError(t, tc.sup.RestartAll(ctx, mock))

			commands := mock.Commands()
			require.Len(t, commands, 3)
			assert.Contains(t, commands[0], tc.wantDetect)
			assert.Contains(t, commands[1], tc.wantRestart)
			assert.Contains(t, commands[2], tc.wantAll)
		})
	}
}
