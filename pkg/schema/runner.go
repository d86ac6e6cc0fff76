package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/mahasewa/ops/pkg/logger"
)

type RunnerConfig struct {
	DB      *sqlx.DB `validate:"required"`
	Dialect Dialect  `validate:"required,oneof=postgres mysql sqlite3"`
}

// Runner applies migration units against one database connection. Each Run is
// independent: safety comes from the per-change guards, not from a tracking
// table.
type Runner struct {
	config RunnerConfig
}

func NewRunner(conf RunnerConfig) (*Runner, error) {
	err := validator.New().Struct(conf)
	if err != nil {
		return nil, fmt.Errorf("schema runner config invalid: %w", err)
	}

	return &Runner{config: conf}, nil
}

// Run applies every change in order, then executes every probe. A DDL failure
// for any reason other than "object already exists" aborts the remaining
// sequence and is returned as an error; probe failures are reported only.
func (r *Runner) Run(ctx context.Context, unit Unit) (Report, error) {
	report := Report{Unit: unit.Name, Dialect: r.config.Dialect}

	err := validator.New().Struct(unit)
	if err != nil {
		report.Fatal = err.Error()
		return report, fmt.Errorf("migration unit invalid: %w", err)
	}

	for _, change := range unit.Changes {
		result := ChangeResult{Change: change.Describe(), Kind: change.Kind()}

		status, err := r.apply(ctx, change)
		if err != nil {
			result.Status = StatusFailed
			result.Error = err.Error()
			report.Changes = append(report.Changes, result)
			report.Fatal = err.Error()

			// a partially-migrated schema is unsafe to proceed past
			logger.Error(ctx, "schema change failed, aborting unit",
				logger.KV("unit", unit.Name),
				logger.KV("change", change.Describe()),
				logger.KV("error", err),
			)
			return report, fmt.Errorf("apply %s: %w", change.Describe(), err)
		}

		result.Status = status
		report.Changes = append(report.Changes, result)
		logger.Info(ctx, "schema change done",
			logger.KV("change", change.Describe()),
			logger.KV("status", status),
		)
	}

	report.Probes = r.probe(ctx, unit)
	return report, nil
}

// Verify runs only the unit's probes, read-only.
func (r *Runner) Verify(ctx context.Context, unit Unit) (Report, error) {
	report := Report{Unit: unit.Name, Dialect: r.config.Dialect}
	report.Probes = r.probe(ctx, unit)
	return report, nil
}

func (r *Runner) apply(ctx context.Context, change Change) (ChangeStatus, error) {
	query, args, err := change.Guard(r.config.Dialect)
	if err != nil {
		return StatusFailed, err
	}

	var present int
	err = r.config.DB.GetContext(ctx, &present, r.config.DB.Rebind(query), args...)
	if err != nil {
		return StatusFailed, fmt.Errorf("guard query: %w", err)
	}

	if present > 0 {
		return StatusAlreadyPresent, nil
	}

	ddl, err := change.DDL(r.config.Dialect)
	if err != nil {
		return StatusFailed, err
	}

	_, err = r.config.DB.ExecContext(ctx, ddl)
	if err != nil {
		// a guard can race another invocation, the database's own duplicate
		// error still counts as already applied
		if isAlreadyExists(err) {
			return StatusAlreadyPresent, nil
		}
		return StatusFailed, err
	}

	return StatusApplied, nil
}

func (r *Runner) probe(ctx context.Context, unit Unit) []ProbeResult {
	results := make([]ProbeResult, 0, len(unit.Probes))
	for _, probe := range unit.Probes {
		result := probe.Check(ctx, r.config.DB, r.config.Dialect)
		if !result.Passed {
			logger.Warn(ctx, "verification probe failed",
				logger.KV("probe", result.Probe),
				logger.KV("observed", result.Observed),
				logger.KV("error", result.Error),
			)
		}

		results = append(results, result)
	}

	return results
}

func isAlreadyExists(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "duplicate column") ||
		strings.Contains(msg, "duplicate key name")
}
