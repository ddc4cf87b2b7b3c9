package db

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/bikurim/procurement-backend/pkg/logger"
)

// queryLogger routes gorm's statement trace into the service logger. Only
// failed and slow statements are written. Not-found lookups stay quiet and
// constraint violations, which services map to 409s, are warnings.
type queryLogger struct {
	logg *logger.Logger
	slow time.Duration
}

func newQueryLogger(logg *logger.Logger, slow time.Duration) gormlogger.Interface {
	if logg == nil {
		return gormlogger.Discard
	}
	return &queryLogger{logg: logg, slow: slow}
}

func (q *queryLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return q }

func (q *queryLogger) Info(context.Context, string, ...any) {}

func (q *queryLogger) Warn(ctx context.Context, msg string, _ ...any) {
	q.logg.Warn(ctx, "db."+msg)
}

func (q *queryLogger) Error(ctx context.Context, msg string, _ ...any) {
	q.logg.Error(ctx, "db.error", errors.New(msg))
}

func (q *queryLogger) Trace(ctx context.Context, begin time.Time, sql func() (string, int64), err error) {
	took := time.Since(begin)
	fields := func() context.Context {
		stmt, rows := sql()
		return q.logg.WithFields(ctx, map[string]any{
			"sql":         stmt,
			"rows":        rows,
			"duration_ms": took.Milliseconds(),
		})
	}
	switch {
	case err == nil || errors.Is(err, gorm.ErrRecordNotFound):
		if q.slow > 0 && took > q.slow {
			q.logg.Warn(fields(), "db.slow_query")
		}
	case IsUniqueViolation(err, "") || IsForeignKeyViolation(err):
		q.logg.Warn(q.logg.WithField(fields(), "error", err.Error()), "db.constraint_violation")
	default:
		q.logg.Error(fields(), "db.query_failed", err)
	}
}
