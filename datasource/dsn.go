package datasource

import (
	"fmt"
	"net/url"
	"strings"
)

const redactedPassword = "********"

// Keyword returns the libpq sslmode keyword for the mode
func (s SSLMode) Keyword() string {
	switch {
	case !s.Enabled:
		return "disable"
	case s.RejectUnauthorized:
		return "verify-full"
	default:
		return "require"
	}
}

// DSN renders the connection for the postgres driver.
// A URL keeps an explicit sslmode query parameter, otherwise the SSL mode is appended.
func (o Options) DSN() string {
	switch c := o.Connection.(type) {
	case URLSpec:
		return urlWithSSLMode(c.URL, o.SSL.Keyword())
	case FieldSpec:
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
			quoteValue(c.Host), quoteValue(c.Username), quoteValue(c.Password),
			quoteValue(c.Database), c.Port, o.SSL.Keyword())
	default:
		return ""
	}
}

// WithDatabase returns a copy of the options pointing at another database on the same server
func (o Options) WithDatabase(name string) Options {
	switch c := o.Connection.(type) {
	case URLSpec:
		u, err := url.Parse(c.URL)
		if err != nil {
			return o
		}
		u.Path = "/" + name
		o.Connection = URLSpec{URL: u.String()}
	case FieldSpec:
		c.Database = name
		o.Connection = c
	}
	return o
}

func urlWithSSLMode(raw, mode string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	if q.Has("sslmode") {
		return raw
	}
	q.Set("sslmode", mode)
	u.RawQuery = q.Encode()
	return u.String()
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Redacted()
}

// quoteValue quotes a keyword/value DSN value when it is empty or contains spaces, quotes or backslashes
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}
