// Package logging builds the zap logger and adapts it to gorm and echo.
package logging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"garden/pkg/middleware"
)

// SlowQuery is the threshold above which gorm queries are logged as warnings.
const SlowQuery = 200 * time.Millisecond

// New builds a JSON production logger, or a console development logger when
// dev is set. An unparsable level falls back to info.
func New(level string, dev bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

type gormLogger struct {
	l     *zap.Logger
	level logger.LogLevel
}

// Gorm adapts l to gorm's logger. Errors and slow queries are always
// reported; every query is traced at debug level when l has debug enabled.
func Gorm(l *zap.Logger) logger.Interface {
	level := logger.Warn
	if l.Core().Enabled(zapcore.DebugLevel) {
		level = logger.Info
	}
	return &gormLogger{l: l.Named("gorm"), level: level}
}

func (g *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	return &gormLogger{l: g.l, level: level}
}

func (g *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info {
		g.l.Info(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn {
		g.l.Warn(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error {
		g.l.Error(fmt.Sprintf(msg, data...))
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= logger.Error:
		sql, rows := fc()
		g.l.Error("query failed", zap.Error(err), zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	case elapsed > SlowQuery && g.level >= logger.Warn:
		sql, rows := fc()
		g.l.Warn("slow query", zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	case g.level >= logger.Info:
		sql, rows := fc()
		g.l.Debug("query", zap.Duration("elapsed", elapsed), zap.String("sql", sql), zap.Int64("rows", rows))
	}
}

// Echo logs one line per request.
func Echo(l *zap.Logger) echo.MiddlewareFunc {
	l = l.Named("http")
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if uid := middleware.UID(c); uid != "" {
				fields = append(fields, zap.String("uid", uid))
			}
			if v.Error != nil {
				l.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			l.Info("request", fields...)
			return nil
		},
	})
}
