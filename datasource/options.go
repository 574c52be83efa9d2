package datasource

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// DriverType names the relational driver the options are built for
type DriverType string

const Postgres DriverType = "postgres"

// ConnectionSpec describes how to reach the database. It is either a URLSpec or a FieldSpec.
type ConnectionSpec interface {
	isConnectionSpec()
}

// URLSpec connects with a single connection URL
type URLSpec struct {
	URL string `json:"url" validate:"required"`
}

// FieldSpec connects with discrete connection fields
type FieldSpec struct {
	Host     string `json:"host" validate:"required"`
	Port     int    `json:"port" validate:"min=1,max=65535"`
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
	Database string `json:"database" validate:"required"`
}

func (URLSpec) isConnectionSpec()   {}
func (FieldSpec) isConnectionSpec() {}

// SSLMode is either disabled or enabled with a certificate validation policy
type SSLMode struct {
	Enabled            bool
	RejectUnauthorized bool
}

// SSLDisabled returns a disabled SSLMode
func SSLDisabled() SSLMode {
	return SSLMode{}
}

// SSLEnabled returns an enabled SSLMode. rejectUnauthorized controls server certificate validation.
func SSLEnabled(rejectUnauthorized bool) SSLMode {
	return SSLMode{Enabled: true, RejectUnauthorized: rejectUnauthorized}
}

// MarshalJSON renders false when disabled, {"rejectUnauthorized": bool} otherwise
func (s SSLMode) MarshalJSON() ([]byte, error) {
	if !s.Enabled {
		return []byte("false"), nil
	}
	return json.Marshal(struct {
		RejectUnauthorized bool `json:"rejectUnauthorized"`
	}{s.RejectUnauthorized})
}

// Options is the part of the configuration shared by the runtime and CLI consumers
type Options struct {
	Type        DriverType
	Connection  ConnectionSpec
	SSL         SSLMode
	Synchronize bool
	Logging     bool
}

// RuntimeOptions is consumed by the application container when it opens the ORM connection.
// Entities are references to the mapped model types and Migrations points at bundled artifacts.
type RuntimeOptions struct {
	Options
	Entities   []any
	Migrations []string
}

// CLIOptions is consumed by the migration CLI. Entities and Migrations are source file globs.
type CLIOptions struct {
	Options
	Entities   []string
	Migrations []string
}

// Validate checks the connection fields against the driver's expectations
func (o Options) Validate() error {
	if o.Type != Postgres {
		return fmt.Errorf("unsupported driver type %q", o.Type)
	}
	if o.Connection == nil {
		return fmt.Errorf("missing connection spec")
	}
	v := validator.New()
	if err := v.Struct(o.Connection); err != nil {
		return fmt.Errorf("invalid connection spec: %w", err)
	}
	return nil
}

// Redacted returns a copy of the options with the password masked
func (o Options) Redacted() Options {
	switch c := o.Connection.(type) {
	case URLSpec:
		o.Connection = URLSpec{URL: redactURL(c.URL)}
	case FieldSpec:
		if c.Password != "" {
			c.Password = redactedPassword
		}
		o.Connection = c
	}
	return o
}

type optionsJSON struct {
	Type        DriverType `json:"type"`
	URL         string     `json:"url,omitempty"`
	Host        string     `json:"host,omitempty"`
	Port        int        `json:"port,omitempty"`
	Username    string     `json:"username,omitempty"`
	Password    string     `json:"password,omitempty"`
	Database    string     `json:"database,omitempty"`
	Entities    []string   `json:"entities,omitempty"`
	Migrations  []string   `json:"migrations,omitempty"`
	Synchronize bool       `json:"synchronize"`
	Logging     bool       `json:"logging"`
	SSL         SSLMode    `json:"ssl"`
}

func (o Options) toJSON() optionsJSON {
	out := optionsJSON{
		Type:        o.Type,
		Synchronize: o.Synchronize,
		Logging:     o.Logging,
		SSL:         o.SSL,
	}
	switch c := o.Connection.(type) {
	case URLSpec:
		out.URL = c.URL
	case FieldSpec:
		out.Host = c.Host
		out.Port = c.Port
		out.Username = c.Username
		out.Password = c.Password
		out.Database = c.Database
	}
	return out
}

// MarshalJSON flattens the connection spec into the options object
func (o Options) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.toJSON())
}

// MarshalJSON renders entities by their Go type name
func (o RuntimeOptions) MarshalJSON() ([]byte, error) {
	out := o.Options.toJSON()
	for _, e := range o.Entities {
		out.Entities = append(out.Entities, fmt.Sprintf("%T", e))
	}
	out.Migrations = o.Migrations
	return json.Marshal(out)
}

// MarshalJSON includes the entity and migration globs
func (o CLIOptions) MarshalJSON() ([]byte, error) {
	out := o.Options.toJSON()
	out.Entities = o.Entities
	out.Migrations = o.Migrations
	return json.Marshal(out)
}
