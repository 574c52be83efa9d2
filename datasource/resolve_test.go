package datasource

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulcrumproject/taskdb/env"
	"github.com/fulcrumproject/taskdb/tasks"
)

func TestNewRuntimeOptions(t *testing.T) {
	tests := []struct {
		name         string
		values       env.Map
		validateFunc func(t *testing.T, opts RuntimeOptions)
	}{
		{
			name:   "nothing set",
			values: env.Map{},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.Equal(t, FieldSpec{
					Host:     "localhost",
					Port:     5432,
					Username: "postgres",
					Password: "password",
					Database: "task_management",
				}, opts.Connection)
				assert.False(t, opts.Synchronize)
				assert.False(t, opts.Logging)
				assert.Equal(t, SSLDisabled(), opts.SSL)
			},
		},
		{
			name: "discrete fields",
			values: env.Map{
				"DB_HOST":     "db.internal",
				"DB_PORT":     "6543",
				"DB_USERNAME": "tasks",
				"DB_PASSWORD": "s3cret",
				"DB_NAME":     "tasks_prod",
			},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.Equal(t, FieldSpec{
					Host:     "db.internal",
					Port:     6543,
					Username: "tasks",
					Password: "s3cret",
					Database: "tasks_prod",
				}, opts.Connection)
			},
		},
		{
			name: "url wins over discrete fields",
			values: env.Map{
				"DATABASE_URL": "postgres://u:p@h:5432/d",
				"DB_HOST":      "ignored",
				"DB_PORT":      "1234",
			},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.Equal(t, URLSpec{URL: "postgres://u:p@h:5432/d"}, opts.Connection)
			},
		},
		{
			name:   "empty url falls back to fields",
			values: env.Map{"DATABASE_URL": "", "DB_HOST": "db.internal"},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				spec, ok := opts.Connection.(FieldSpec)
				require.True(t, ok)
				assert.Equal(t, "db.internal", spec.Host)
			},
		},
		{
			name:   "non-numeric port",
			values: env.Map{"DB_PORT": "abc"},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.Equal(t, 5432, opts.Connection.(FieldSpec).Port)
			},
		},
		{
			name:   "out of range port",
			values: env.Map{"DB_PORT": "70000"},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.Equal(t, 5432, opts.Connection.(FieldSpec).Port)
			},
		},
		{
			name:   "sync and logging enabled",
			values: env.Map{"DB_SYNCHRONIZE": "true", "DB_LOGGING": "true"},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.True(t, opts.Synchronize)
				assert.True(t, opts.Logging)
			},
		},
		{
			name:   "malformed sync flag stays off",
			values: env.Map{"DB_SYNCHRONIZE": "sure"},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.False(t, opts.Synchronize)
			},
		},
		{
			name:   "production with url",
			values: env.Map{"NODE_ENV": "production", "DATABASE_URL": "postgres://u:p@h:5432/d"},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.Equal(t, SSLEnabled(false), opts.SSL)
			},
		},
		{
			name:   "production with fields",
			values: env.Map{"NODE_ENV": "production"},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.Equal(t, SSLEnabled(false), opts.SSL)
			},
		},
		{
			name:   "non-production env",
			values: env.Map{"NODE_ENV": "Production"},
			validateFunc: func(t *testing.T, opts RuntimeOptions) {
				assert.Equal(t, SSLDisabled(), opts.SSL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewRuntimeOptions(env.NewConfig(tt.values))

			assert.Equal(t, Postgres, opts.Type)
			assert.Equal(t, tasks.Entities(), opts.Entities)
			assert.Equal(t, []string{"dist/migrations/*.sql"}, opts.Migrations)
			tt.validateFunc(t, opts)
		})
	}
}

func TestNewCLIOptions(t *testing.T) {
	tests := []struct {
		name         string
		values       env.Map
		validateFunc func(t *testing.T, opts CLIOptions)
	}{
		{
			name:   "nothing set",
			values: env.Map{},
			validateFunc: func(t *testing.T, opts CLIOptions) {
				assert.Equal(t, FieldSpec{
					Host:     "localhost",
					Port:     5432,
					Username: "postgres",
					Password: "password",
					Database: "task_management",
				}, opts.Connection)
			},
		},
		{
			name:   "sync and logging forced off",
			values: env.Map{"DB_SYNCHRONIZE": "true", "DB_LOGGING": "true"},
			validateFunc: func(t *testing.T, opts CLIOptions) {
				assert.False(t, opts.Synchronize)
				assert.False(t, opts.Logging)
			},
		},
		{
			name:   "empty values use defaults",
			values: env.Map{"DB_HOST": "", "DB_PORT": "", "DB_USERNAME": ""},
			validateFunc: func(t *testing.T, opts CLIOptions) {
				spec := opts.Connection.(FieldSpec)
				assert.Equal(t, "localhost", spec.Host)
				assert.Equal(t, 5432, spec.Port)
				assert.Equal(t, "postgres", spec.Username)
			},
		},
		{
			name:   "zero port",
			values: env.Map{"DB_PORT": "0"},
			validateFunc: func(t *testing.T, opts CLIOptions) {
				assert.Equal(t, 5432, opts.Connection.(FieldSpec).Port)
			},
		},
		{
			name:   "url with production ssl",
			values: env.Map{"DATABASE_URL": "postgres://u:p@h:5432/d", "NODE_ENV": "production"},
			validateFunc: func(t *testing.T, opts CLIOptions) {
				assert.Equal(t, URLSpec{URL: "postgres://u:p@h:5432/d"}, opts.Connection)
				assert.Equal(t, SSLEnabled(false), opts.SSL)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewCLIOptions(tt.values)

			assert.Equal(t, Postgres, opts.Type)
			assert.Equal(t, []string{"tasks/*.go"}, opts.Entities)
			assert.Equal(t, []string{"migrations/*.sql"}, opts.Migrations)
			tt.validateFunc(t, opts)
		})
	}
}

func TestResolve_PathsAgree(t *testing.T) {
	snapshots := []env.Map{
		{},
		{"DATABASE_URL": "postgres://u:p@h:5432/d"},
		{"DATABASE_URL": "", "DB_HOST": "db", "DB_PORT": "6000"},
		{"DB_PORT": "abc", "DB_USERNAME": "svc", "DB_PASSWORD": "pw", "DB_NAME": "tasks"},
		{"DB_PORT": "99999", "NODE_ENV": "production"},
		{"DB_PORT": "-1", "NODE_ENV": "development", "DB_SYNCHRONIZE": "true"},
	}

	for _, values := range snapshots {
		runtime := Resolve(values, ModeRuntime)
		cli := Resolve(values, ModeCLI)

		assert.Equal(t, runtime.Type, cli.Type)
		assert.Equal(t, runtime.Connection, cli.Connection)
		assert.Equal(t, runtime.SSL, cli.SSL)
		assert.False(t, cli.Synchronize)
		assert.False(t, cli.Logging)
	}
}

func TestNewRuntimeOptions_JSON(t *testing.T) {
	tests := []struct {
		name     string
		values   env.Map
		expected string
	}{
		{
			name:   "url",
			values: env.Map{"DATABASE_URL": "postgres://u:p@h:5432/d"},
			expected: `{
				"type": "postgres",
				"url": "postgres://u:p@h:5432/d",
				"entities": ["*tasks.Task"],
				"migrations": ["dist/migrations/*.sql"],
				"synchronize": false,
				"logging": false,
				"ssl": false
			}`,
		},
		{
			name:   "fields",
			values: env.Map{},
			expected: `{
				"type": "postgres",
				"host": "localhost",
				"port": 5432,
				"username": "postgres",
				"password": "password",
				"database": "task_management",
				"entities": ["*tasks.Task"],
				"migrations": ["dist/migrations/*.sql"],
				"synchronize": false,
				"logging": false,
				"ssl": false
			}`,
		},
		{
			name:   "production",
			values: env.Map{"DATABASE_URL": "postgres://u:p@h:5432/d", "NODE_ENV": "production"},
			expected: `{
				"type": "postgres",
				"url": "postgres://u:p@h:5432/d",
				"entities": ["*tasks.Task"],
				"migrations": ["dist/migrations/*.sql"],
				"synchronize": false,
				"logging": false,
				"ssl": {"rejectUnauthorized": false}
			}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(NewRuntimeOptions(env.NewConfig(tt.values)))
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))
		})
	}
}

func TestNewCLIOptions_JSON(t *testing.T) {
	data, err := json.Marshal(NewCLIOptions(env.Map{"DB_LOGGING": "true"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "postgres",
		"host": "localhost",
		"port": 5432,
		"username": "postgres",
		"password": "password",
		"database": "task_management",
		"entities": ["tasks/*.go"],
		"migrations": ["migrations/*.sql"],
		"synchronize": false,
		"logging": false,
		"ssl": false
	}`, string(data))
}

func TestResolve_DoesNotShareGlobals(t *testing.T) {
	cli := NewCLIOptions(env.Map{})
	cli.Migrations[0] = "mutated"
	assert.Equal(t, []string{"migrations/*.sql"}, CLIMigrations)

	runtime := NewRuntimeOptions(env.NewConfig(env.Map{}))
	runtime.Migrations[0] = "mutated"
	assert.Equal(t, []string{"dist/migrations/*.sql"}, RuntimeMigrations)
}
