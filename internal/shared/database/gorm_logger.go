package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cineplex/pkg/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// gormLogger sends gorm's output through the application logger. Missing rows
// are expected by the repositories and are not logged as errors.
type gormLogger struct {
	log           *logger.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

func newGormLogger(log *logger.Logger, verbose bool) gormlogger.Interface {
	level := gormlogger.Warn
	if verbose {
		level = gormlogger.Info
	}
	return &gormLogger{log: log, level: level, slowThreshold: slowQueryThreshold}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.log.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.log.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.log.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.log.ErrorWithContext(ctx, "Query failed", err, map[string]interface{}{
			"sql":      sql,
			"rows":     rows,
			"duration": elapsed.String(),
		})
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, _ := fc()
		l.log.LogSlowQuery(ctx, sql, elapsed)
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.log.DebugWithContext(ctx, "Query", map[string]interface{}{
			"sql":      sql,
			"rows":     rows,
			"duration": elapsed.String(),
		})
	}
}
