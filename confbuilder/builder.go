package confbuilder

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"

	"github.com/fulcrumproject/taskdb/env"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	levelType    = reflect.TypeOf(slog.Level(0))
)

// Builder implements a generic builder pattern for creating configuration instances
type Builder[T any] struct {
	config    T
	envPrefix string
	envTag    string
	envFiles  []string
	filepath  *string
	source    env.Reader
	lenient   bool
}

// New returns a Builder with the provided default configuration and options
func New[T any](defaultConf T) *Builder[T] {
	return &Builder[T]{
		config:   defaultConf,
		envTag:   "env",
		envFiles: []string{},
		source:   env.OS(),
	}
}

// EnvPrefix sets the environment variable prefix
func (b *Builder[T]) EnvPrefix(prefix string) *Builder[T] {
	b.envPrefix = prefix
	return b
}

// EnvTag sets the struct tag name for environment variables
func (b *Builder[T]) EnvTag(tag string) *Builder[T] {
	b.envTag = tag
	return b
}

// EnvFiles sets the environment files to load into the process environment
func (b *Builder[T]) EnvFiles(files ...string) *Builder[T] {
	b.envFiles = files
	return b
}

// File sets the JSON configuration file to load
func (b *Builder[T]) File(filepath *string) *Builder[T] {
	b.filepath = filepath
	return b
}

// Source sets the environment the builder reads variables from
func (b *Builder[T]) Source(r env.Reader) *Builder[T] {
	b.source = r
	return b
}

// Lenient keeps the current value of a field when its variable cannot be parsed, instead of failing
func (b *Builder[T]) Lenient() *Builder[T] {
	b.lenient = true
	return b
}

// Build validates and returns the final configuration
func (b *Builder[T]) Build() (T, error) {
	var config T

	sourceValue := reflect.ValueOf(b.config)
	if sourceValue.Kind() == reflect.Ptr && sourceValue.IsNil() {
		return config, fmt.Errorf("cannot load environment variables into nil pointer")
	}

	// Allocate memory for pointer types
	configType := reflect.TypeOf(config)
	isPointer := configType.Kind() == reflect.Ptr
	if isPointer {
		config = reflect.New(configType.Elem()).Interface().(T)
	}

	var target any
	if isPointer {
		target = config
	} else {
		target = &config
	}

	// Clone the config to avoid modifying the original instance
	if err := copier.Copy(target, b.config); err != nil {
		return config, fmt.Errorf("failed to clone config: %w", err)
	}

	if b.filepath != nil && *b.filepath != "" {
		data, err := os.ReadFile(*b.filepath)
		if err != nil {
			return config, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := json.Unmarshal(data, target); err != nil {
			return config, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if len(b.envFiles) > 0 {
		if err := env.LoadFiles(b.envFiles...); err != nil {
			return config, fmt.Errorf("failed to load environment variables: %w", err)
		}
	}

	l := &loader{source: b.source, prefix: b.envPrefix, tag: b.envTag, lenient: b.lenient}
	if l.source == nil {
		l.source = env.OS()
	}
	if err := l.load(target, ""); err != nil {
		return config, fmt.Errorf("failed to override configuration from environment: %w", err)
	}

	v := validator.New()
	if err := v.Struct(target); err != nil {
		return config, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

type loader struct {
	source  env.Reader
	prefix  string
	tag     string
	lenient bool
}

// load walks the struct fields, descending into nested structs.
// A nested struct's tag is joined to its children's tags with an underscore.
func (l *loader) load(target any, parentEnvPath string) error {
	v := reflect.ValueOf(target)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return fmt.Errorf("cannot load environment variables into nil pointer")
		}
		v = v.Elem()
	}

	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)
		if !fieldValue.CanSet() {
			continue
		}

		envVar, hasTag := field.Tag.Lookup(l.tag)
		path := joinEnvPath(parentEnvPath, envVar)

		if fieldValue.Kind() == reflect.Struct {
			if !hasTag || envVar == "" {
				path = parentEnvPath
			}
			if err := l.load(fieldValue.Addr().Interface(), path); err != nil {
				return fmt.Errorf("error loading sub config field %s: %w", field.Name, err)
			}
			continue
		}

		if !hasTag || envVar == "" {
			continue
		}

		envValue := env.Raw(l.source, l.prefix+path)
		if envValue == "" {
			continue
		}

		if err := setField(fieldValue, envValue); err != nil {
			if l.lenient {
				slog.Warn("Ignoring malformed environment variable", "var", l.prefix+path, "error", err)
				continue
			}
			return fmt.Errorf("%s for %s: %w", errKind(fieldValue), l.prefix+path, err)
		}
	}

	return nil
}

func joinEnvPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "_" + name
}

var errInvalidLevel = errors.New("unknown level")

func setField(fieldValue reflect.Value, envValue string) error {
	switch fieldValue.Kind() {
	case reflect.String:
		fieldValue.SetString(envValue)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch fieldValue.Type() {
		case durationType:
			duration, err := time.ParseDuration(envValue)
			if err != nil {
				return err
			}
			fieldValue.SetInt(int64(duration))
		case levelType:
			// Accepts names and offsets such as "warn" or "INFO+2"
			var level slog.Level
			if err := level.UnmarshalText([]byte(strings.ToUpper(envValue))); err != nil {
				return fmt.Errorf("%w: %s", errInvalidLevel, envValue)
			}
			fieldValue.SetInt(int64(level))
		default:
			val, err := strconv.ParseInt(envValue, 10, 64)
			if err != nil {
				return err
			}
			fieldValue.SetInt(val)
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		val, err := strconv.ParseUint(envValue, 10, 64)
		if err != nil {
			return err
		}
		fieldValue.SetUint(val)

	case reflect.Float32, reflect.Float64:
		val, err := strconv.ParseFloat(envValue, 64)
		if err != nil {
			return err
		}
		fieldValue.SetFloat(val)

	case reflect.Bool:
		val, err := strconv.ParseBool(envValue)
		if err != nil {
			return err
		}
		fieldValue.SetBool(val)

	case reflect.Slice:
		// Only []string is supported
		if fieldValue.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(envValue, ",")
			for i, p := range parts {
				parts[i] = strings.TrimSpace(p)
			}
			fieldValue.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}

func errKind(fieldValue reflect.Value) string {
	switch fieldValue.Type() {
	case durationType:
		return "invalid duration value"
	case levelType:
		return "invalid slog level value"
	}
	switch fieldValue.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "invalid integer value"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "invalid unsigned integer value"
	case reflect.Float32, reflect.Float64:
		return "invalid float value"
	case reflect.Bool:
		return "invalid boolean value"
	default:
		return "invalid value"
	}
}
