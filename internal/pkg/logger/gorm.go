package logger

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger 把 gorm 的 SQL 日志转发到全局 zap logger
type GormLogger struct {
	SlowThreshold time.Duration
	Level         gormlogger.LogLevel
}

func NewGormLogger(slow time.Duration, level gormlogger.LogLevel) *GormLogger {
	return &GormLogger{SlowThreshold: slow, Level: level}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	n := *l
	n.Level = level
	return &n
}

func (l *GormLogger) Info(_ context.Context, msg string, data ...any) {
	if l.Level >= gormlogger.Info {
		L().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.Level >= gormlogger.Warn {
		L().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(_ context.Context, msg string, data ...any) {
	if l.Level >= gormlogger.Error {
		L().Errorf(msg, data...)
	}
}

func (l *GormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.Level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	log := L().Desugar().WithOptions(zap.AddCallerSkip(2)).Sugar()

	switch {
	case err != nil && l.Level >= gormlogger.Error && !errors.Is(err, gormlogger.ErrRecordNotFound):
		sql, rows := fc()
		log.Errorw("sql failed", "sql", sql, "rows", rows, "elapsed", elapsed, "error", err)
	case l.SlowThreshold > 0 && elapsed > l.SlowThreshold && l.Level >= gormlogger.Warn:
		sql, rows := fc()
		log.Warnw("slow sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	case l.Level >= gormlogger.Info:
		sql, rows := fc()
		log.Debugw("sql", "sql", sql, "rows", rows, "elapsed", elapsed)
	}
}
