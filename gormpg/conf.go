package gormpg

import (
	"log/slog"
)

// Conf holds the ORM statement logger settings
type Conf struct {
	LogLevel  slog.Level `json:"logLevel" env:"DB_LOG_LEVEL"`
	LogFormat string     `json:"logFormat" env:"DB_LOG_FORMAT" validate:"omitempty,oneof=text json"`
}
