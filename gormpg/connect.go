package gormpg

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fulcrumproject/taskdb/datasource"
)

// NewConnection opens the database described by the resolved runtime options.
// When opts.Synchronize is set the mapped entities are auto-migrated.
func NewConnection(opts datasource.RuntimeOptions, conf *Conf) (*gorm.DB, error) {
	if conf == nil {
		conf = &Conf{}
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid datasource options: %w", err)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: opts.DSN(),
	}), &gorm.Config{
		Logger:                                   NewGormLogger(conf, opts.Logging),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if opts.Synchronize && len(opts.Entities) > 0 {
		if err := db.AutoMigrate(opts.Entities...); err != nil {
			return nil, fmt.Errorf("failed to synchronize schema: %w", err)
		}
	}
	return db, nil
}
