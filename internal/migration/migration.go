// Package migration wires the configured database to the content migration
// unit for the CLI commands and the deploy rollout.
package migration

import (
	"context"
	"fmt"
	"strings"

	"github.com/mahasewa/ops/assets/migrations/content"
	"github.com/mahasewa/ops/config"
	"github.com/mahasewa/ops/pkg/logger"
	"github.com/mahasewa/ops/pkg/multidb"
	"github.com/mahasewa/ops/pkg/schema"
)

// Run opens the configured database, applies the content unit with its
// verification probes, and closes the connection. Each call is one
// independent execution; idempotence comes from the unit's guards.
func Run(ctx context.Context, conf *config.Config) (schema.Report, error) {
	return execute(ctx, conf, func(ctx context.Context, runner *schema.Runner) (schema.Report, error) {
		return runner.Run(ctx, content.Unit())
	})
}

// Verify runs only the unit's verification probes, read-only.
func Verify(ctx context.Context, conf *config.Config) (schema.Report, error) {
	return execute(ctx, conf, func(ctx context.Context, runner *schema.Runner) (schema.Report, error) {
		return runner.Verify(ctx, content.Unit())
	})
}

// Render returns the unit's DDL for the configured database's dialect without
// touching the database.
func Render(conf *config.Config) (string, error) {
	label := dbLabel(conf)

	resource, ok := conf.DatabaseResources[label]
	if !ok {
		return "", fmt.Errorf("unknown database label '%s'", label)
	}

	return schema.Render(content.Unit(), schema.Dialect(resource.Driver))
}

func execute(ctx context.Context, conf *config.Config,
	fn func(ctx context.Context, runner *schema.Runner) (schema.Report, error),
) (schema.Report, error) {
	label := dbLabel(conf)

	conns, err := multidb.NewSqlDbConnMaker(multidb.SqlDbConnMakerConfig{
		Config: conf.DatabaseResources,
	})
	if err != nil {
		return schema.Report{}, fmt.Errorf("prepare database connections: %w", err)
	}

	defer func() {
		if closeErr := conns.Close(); closeErr != nil {
			logger.Error(ctx, "error close db", logger.KV("error", closeErr))
		}
	}()

	driver, err := conns.GetDriver(label)
	if err != nil {
		return schema.Report{}, err
	}

	db, err := conns.GetSqlx(driver, label)
	if err != nil {
		return schema.Report{}, err
	}

	if err := db.PingContext(ctx); err != nil {
		return schema.Report{}, fmt.Errorf("ping db '%s': %w", label, err)
	}

	runner, err := schema.NewRunner(schema.RunnerConfig{
		DB:      db,
		Dialect: schema.Dialect(driver),
	})
	if err != nil {
		return schema.Report{}, err
	}

	return fn(ctx, runner)
}

func dbLabel(conf *config.Config) string {
	return strings.TrimSpace(strings.ToLower(conf.Migration.DBLabel))
}
