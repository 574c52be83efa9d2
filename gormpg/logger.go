package gormpg

import (
	"os"

	slogGorm "github.com/orandin/slog-gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/fulcrumproject/taskdb/logging"
)

// NewGormLogger configures the statement logger from the log format and level.
// With traceAll every statement is logged, otherwise only errors and slow queries.
func NewGormLogger(cfg *Conf, traceAll bool) gormLogger.Interface {
	handler := logging.NewHandler(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	options := []slogGorm.Option{slogGorm.WithHandler(handler)}
	if traceAll {
		options = append(options, slogGorm.WithTraceAll())
	}
	return slogGorm.New(options...)
}
