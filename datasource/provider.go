package datasource

import (
	"slices"
	"sync"

	"github.com/fulcrumproject/taskdb/env"
)

// Factory creates the runtime options for the application container
type Factory interface {
	CreateRuntimeOptions() RuntimeOptions
}

// Config is the Factory backed by the environment accessor
type Config struct {
	env *env.Config
}

// NewConfig returns a Factory reading through cfg
func NewConfig(cfg *env.Config) *Config {
	return &Config{env: cfg}
}

func (c *Config) CreateRuntimeOptions() RuntimeOptions {
	return NewRuntimeOptions(c.env)
}

// Provider invokes its Factory once and hands out the same options for the life of the process
type Provider struct {
	factory Factory
	once    sync.Once
	opts    RuntimeOptions
}

func NewProvider(f Factory) *Provider {
	return &Provider{factory: f}
}

// Options returns the cached runtime options, creating them on first use.
// The returned slices are copies, so callers cannot mutate the cached value.
func (p *Provider) Options() RuntimeOptions {
	p.once.Do(func() {
		p.opts = p.factory.CreateRuntimeOptions()
	})
	opts := p.opts
	opts.Entities = slices.Clone(p.opts.Entities)
	opts.Migrations = slices.Clone(p.opts.Migrations)
	return opts
}
