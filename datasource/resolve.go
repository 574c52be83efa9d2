package datasource

import (
	"strconv"
	"strings"

	"github.com/fulcrumproject/taskdb/env"
	"github.com/fulcrumproject/taskdb/tasks"
)

// Environment keys read by the resolver
const (
	KeyDatabaseURL = "DATABASE_URL"
	KeyHost        = "DB_HOST"
	KeyPort        = "DB_PORT"
	KeyUsername    = "DB_USERNAME"
	KeyPassword    = "DB_PASSWORD"
	KeyName        = "DB_NAME"
	KeySynchronize = "DB_SYNCHRONIZE"
	KeyLogging     = "DB_LOGGING"
	KeyNodeEnv     = "NODE_ENV"
)

// Defaults used when a key is unset or empty
const (
	DefaultHost     = "localhost"
	DefaultPort     = 5432
	DefaultUsername = "postgres"
	DefaultPassword = "password"
	DefaultDatabase = "task_management"

	productionEnv = "production"
)

var (
	// RuntimeMigrations locates the migrations bundled with the built application
	RuntimeMigrations = []string{"dist/migrations/*.sql"}
	// CLIEntities locates the entity sources for the migration CLI
	CLIEntities = []string{"tasks/*.go"}
	// CLIMigrations locates the migration sources for the migration CLI
	CLIMigrations = []string{"migrations/*.sql"}
)

// Mode selects the resolution strategy
type Mode string

const (
	ModeRuntime Mode = "runtime"
	ModeCLI     Mode = "cli"
)

// Resolve builds the shared options for the given mode.
// Any mode other than ModeCLI resolves the runtime way.
func Resolve(r env.Reader, mode Mode) Options {
	if mode == ModeCLI {
		return NewCLIOptions(r).Options
	}
	return NewRuntimeOptions(env.NewConfig(r)).Options
}

// NewRuntimeOptions resolves the options handed to the application container.
// Values come through the defaulting accessor, so unset or malformed values take their defaults.
func NewRuntimeOptions(cfg *env.Config) RuntimeOptions {
	opts := Options{
		Type:        Postgres,
		SSL:         sslFor(cfg.String(KeyNodeEnv, "")),
		Synchronize: cfg.Bool(KeySynchronize, false),
		Logging:     cfg.Bool(KeyLogging, false),
	}

	if url := cfg.String(KeyDatabaseURL, ""); url != "" {
		opts.Connection = URLSpec{URL: url}
	} else {
		opts.Connection = FieldSpec{
			Host:     cfg.String(KeyHost, DefaultHost),
			Port:     validPort(cfg.Int(KeyPort, DefaultPort)),
			Username: cfg.String(KeyUsername, DefaultUsername),
			Password: cfg.String(KeyPassword, DefaultPassword),
			Database: cfg.String(KeyName, DefaultDatabase),
		}
	}

	return RuntimeOptions{
		Options:    opts,
		Entities:   tasks.Entities(),
		Migrations: append([]string(nil), RuntimeMigrations...),
	}
}

// NewCLIOptions resolves the options for the migration CLI from raw environment values.
// Synchronize and Logging are always off.
func NewCLIOptions(r env.Reader) CLIOptions {
	opts := Options{
		Type: Postgres,
		SSL:  sslFor(env.Raw(r, KeyNodeEnv)),
	}

	if url := env.Raw(r, KeyDatabaseURL); url != "" {
		opts.Connection = URLSpec{URL: url}
	} else {
		opts.Connection = FieldSpec{
			Host:     or(env.Raw(r, KeyHost), DefaultHost),
			Port:     parsePort(env.Raw(r, KeyPort)),
			Username: or(env.Raw(r, KeyUsername), DefaultUsername),
			Password: or(env.Raw(r, KeyPassword), DefaultPassword),
			Database: or(env.Raw(r, KeyName), DefaultDatabase),
		}
	}

	return CLIOptions{
		Options:    opts,
		Entities:   append([]string(nil), CLIEntities...),
		Migrations: append([]string(nil), CLIMigrations...),
	}
}

func sslFor(nodeEnv string) SSLMode {
	if nodeEnv == productionEnv {
		return SSLEnabled(false)
	}
	return SSLDisabled()
}

func or(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func parsePort(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return DefaultPort
	}
	return validPort(n)
}

// validPort maps values outside the TCP port range to the default
func validPort(n int) int {
	if n < 1 || n > 65535 {
		return DefaultPort
	}
	return n
}
