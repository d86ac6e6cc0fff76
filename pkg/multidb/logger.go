package multidb

import (
	"context"

	sqldblogger "github.com/simukti/sqldb-logger"

	"github.com/mahasewa/ops/pkg/logger"
)

type QueryLogger struct{}

func (q *QueryLogger) Log(ctx context.Context, level sqldblogger.Level, msg string, data map[string]interface{}) {
	logger.Debug(ctx, msg, logger.KV("level", level), logger.KV("sql", data))
}

var _ sqldblogger.Logger = (*QueryLogger)(nil)
