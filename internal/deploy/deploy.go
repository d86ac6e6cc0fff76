// Package deploy runs one rollout against one Deployment Target:
// sync artifacts, run the schema migration, restart the service through
// whatever supervises it, then confirm liveness. Steps are sequential; only
// the migration step aborts the rollout, everything else degrades.
package deploy

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sony/sonyflake"
	"go.uber.org/multierr"

	"github.com/mahasewa/ops/pkg/healthcheck"
	"github.com/mahasewa/ops/pkg/logger"
	"github.com/mahasewa/ops/pkg/remote"
	"github.com/mahasewa/ops/pkg/schema"
	"github.com/mahasewa/ops/pkg/supervisor"
)

// Migrator runs the migration unit against the target database. The
// orchestrator only cares about the report and whether it was fatal.
type Migrator interface {
	Migrate(ctx context.Context) (schema.Report, error)
}

// HealthChecker confirms post-restart liveness.
type HealthChecker interface {
	Check(ctx context.Context) healthcheck.Result
}

// MigratorFunc adapts a plain function to the Migrator interface.
type MigratorFunc func(ctx context.Context) (schema.Report, error)

func (f MigratorFunc) Migrate(ctx context.Context) (schema.Report, error) {
	return f(ctx)
}

type OrchestratorConfig struct {
	Channel remote.Channel `validate:"required"`

	Host    string
	Service string `validate:"required"`
	WorkDir string `validate:"required"`

	// Artifacts are local file paths copied into WorkDir keeping their base
	// names: compose definition, env template, migration SQL text.
	Artifacts []string `validate:"required,min=1"`

	Candidates []supervisor.Supervisor `validate:"required,min=1"`

	Migrator Migrator      `validate:"required"`
	Health   HealthChecker `validate:"required"`

	// GenerateSecret asks the rollout to mint one fresh credential and carry
	// it on the report for display.
	GenerateSecret bool

	IDGen *sonyflake.Sonyflake
}

type Orchestrator struct {
	config   OrchestratorConfig
	secretFn func(n int) (string, error)
}

func New(conf OrchestratorConfig) (*Orchestrator, error) {
	err := validator.New().Struct(conf)
	if err != nil {
		return nil, fmt.Errorf("deploy orchestrator config invalid: %w", err)
	}

	if conf.IDGen == nil {
		// NewSonyflake returns nil when it cannot derive a machine ID from a
		// private IPv4, which happens on containers and some VPSes; rolloutID
		// falls back to a timestamp in that case
		conf.IDGen = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		})
	}

	return &Orchestrator{
		config:   conf,
		secretFn: GenerateSecret,
	}, nil
}

// Run executes one rollout. The returned error is non-nil only when the
// migration step failed (or the context was canceled); every other failure is
// folded into the report as a warning and the outcome becomes DEGRADED.
func (o *Orchestrator) Run(ctx context.Context) (Report, error) {
	report := Report{
		RolloutID: o.rolloutID(),
		Host:      o.config.Host,
		Service:   o.config.Service,
		Outcome:   OutcomeSucceeded,
	}

	logger.Info(ctx, "rollout starting",
		logger.KV("rollout_id", report.RolloutID),
		logger.KV("host", o.config.Host),
		logger.KV("service", o.config.Service),
	)

	if o.config.GenerateSecret {
		secret, err := o.secretFn(32)
		if err != nil {
			report.addStep(PhasePreparing, StepWarn, fmt.Sprintf("secret generation failed: %s", err))
			report.Outcome = OutcomeDegraded
		} else {
			report.GeneratedSecret = secret
		}
	}

	// SYNCING
	if err := o.syncArtifacts(ctx, &report); err != nil {
		return report, err
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	// MIGRATING — the only fatal step: a broken schema is unsafe to proceed past
	migReport, err := o.config.Migrator.Migrate(ctx)
	report.Migration = &migReport
	if err != nil {
		report.addStep(PhaseMigrating, StepFatal, err.Error())
		return report, fmt.Errorf("migration step: %w", err)
	}

	if migReport.ProbesPassed() {
		report.addStep(PhaseMigrating, StepOK, "")
	} else {
		report.addStep(PhaseMigrating, StepWarn, "one or more verification probes failed")
		report.Outcome = OutcomeDegraded
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}

	// RESTARTING
	o.restart(ctx, &report)

	if err := ctx.Err(); err != nil {
		return report, err
	}

	// PROBING
	health := o.config.Health.Check(ctx)
	report.Health = &health
	if health.Healthy {
		report.addStep(PhaseProbing, StepOK, fmt.Sprintf("status %d after %d attempt(s)", health.StatusCode, health.Attempts))
	} else {
		report.addStep(PhaseProbing, StepWarn, health.Error)
		report.Outcome = OutcomeDegraded
	}

	logger.Info(ctx, "rollout finished",
		logger.KV("rollout_id", report.RolloutID),
		logger.KV("outcome", report.Outcome),
	)

	return report, nil
}

// syncArtifacts copies every artifact, collecting failures instead of
// stopping; a partial sync degrades the rollout but does not abort it. Only a
// canceled context is returned as an error.
func (o *Orchestrator) syncArtifacts(ctx context.Context, report *Report) error {
	var syncErr error
	for _, artifact := range o.config.Artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}

		dest := path.Join(o.config.WorkDir, filepath.Base(artifact))
		if err := o.config.Channel.Copy(ctx, artifact, dest); err != nil {
			logger.Warn(ctx, "artifact sync failed",
				logger.KV("artifact", artifact),
				logger.KV("dest", dest),
				logger.KV("error", err),
			)
			syncErr = multierr.Append(syncErr, fmt.Errorf("%s: %w", filepath.Base(artifact), err))
			continue
		}

		logger.Info(ctx, "artifact synced", logger.KV("artifact", artifact), logger.KV("dest", dest))
	}

	if syncErr != nil {
		report.addStep(PhaseSyncing, StepWarn, syncErr.Error())
		report.Outcome = OutcomeDegraded
		return nil
	}

	report.addStep(PhaseSyncing, StepOK, fmt.Sprintf("%d artifact(s)", len(o.config.Artifacts)))
	return nil
}

func (o *Orchestrator) restart(ctx context.Context, report *Report) {
	sup := supervisor.Discover(ctx, o.config.Channel, o.config.Candidates)
	report.Supervisor = sup.Kind()

	if sup.Kind() == supervisor.KindUnknown {
		report.addStep(PhaseRestarting, StepWarn, sup.Instructions())
		report.Outcome = OutcomeDegraded
		return
	}

	if err := supervisor.RestartWithFallback(ctx, o.config.Channel, sup); err != nil {
		report.addStep(PhaseRestarting, StepWarn,
			fmt.Sprintf("restart failed (%s); %s", err, sup.Instructions()))
		report.Outcome = OutcomeDegraded
		return
	}

	report.addStep(PhaseRestarting, StepOK, string(sup.Kind()))
}

func (o *Orchestrator) rolloutID() string {
	// IDGen is nil when no machine ID could be derived, and NextID fails when
	// the clock runs far ahead; a timestamp is an acceptable stand-in for a
	// display-only correlation ID
	if o.config.IDGen != nil {
		if id, err := o.config.IDGen.NextID(); err == nil {
			return strconv.FormatUint(id, 10)
		}
	}

	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
