package env

import (
	"os"
	"strconv"
	"strings"
)

// Reader gives read access to a key-value environment
type Reader interface {
	Lookup(key string) (string, bool)
}

type osReader struct{}

func (osReader) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// OS returns a Reader backed by the process environment
func OS() Reader {
	return osReader{}
}

// Map is a Reader over a fixed set of values
type Map map[string]string

// Lookup implements Reader
func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Raw returns the value for key as-is, or an empty string when it is unset
func Raw(r Reader, key string) string {
	v, _ := r.Lookup(key)
	return v
}

// Config is a defaulting accessor over a Reader.
// Missing or empty keys, and values that cannot be coerced, yield the default.
type Config struct {
	reader Reader
}

// NewConfig wraps a Reader, falling back to the process environment when nil
func NewConfig(r Reader) *Config {
	if r == nil {
		r = OS()
	}
	return &Config{reader: r}
}

func (c *Config) lookup(key string) (string, bool) {
	v, ok := c.reader.Lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// String returns the value for key or def
func (c *Config) String(key, def string) string {
	if v, ok := c.lookup(key); ok {
		return v
	}
	return def
}

// Int returns the value for key parsed as a base 10 integer, or def
func (c *Config) Int(key string, def int) int {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Bool returns the value for key parsed with strconv.ParseBool, or def
func (c *Config) Bool(key string, def bool) bool {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}
