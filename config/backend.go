package config

import (
	"github.com/nats-io/nats.go"

	"github.com/vinayprograms/tasklist/errors"
	"github.com/vinayprograms/tasklist/state"
)

// OpenStateStore opens the configured backend. The caller owns the store
// and must Close it; for nats that also closes the connection.
func (c *Config) OpenStateStore() (state.StateStore, error) {
	timeout := c.Storage.Timeout.Duration

	switch c.Storage.Backend {
	case BackendMemory:
		return state.NewMemoryStore(), nil

	case BackendBolt:
		cfg := state.DefaultBoltStoreConfig()
		cfg.Path = c.StoragePath()
		store, err := state.NewBoltStore(cfg)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrCodeUnavailable, "open bolt store",
				errors.WithMetadata("path", cfg.Path))
		}
		return store, nil

	case BackendSQLite:
		cfg := state.DefaultSQLiteStoreConfig()
		cfg.Path = c.StoragePath()
		if timeout > 0 {
			cfg.Timeout = timeout
		}
		store, err := state.NewSQLiteStore(cfg)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrCodeUnavailable, "open sqlite store",
				errors.WithMetadata("path", cfg.Path))
		}
		return store, nil

	case BackendNATS:
		opts := []nats.Option{nats.Name("tasklist")}
		if timeout > 0 {
			opts = append(opts, nats.Timeout(timeout))
		}
		nc, err := nats.Connect(c.Storage.NATS.URL, opts...)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrCodeUnavailable, "connect to nats",
				errors.WithMetadata("url", c.Storage.NATS.URL))
		}

		cfg := state.DefaultNATSStoreConfig()
		cfg.Conn = nc
		cfg.CloseConn = true
		if c.Storage.NATS.Bucket != "" {
			cfg.Bucket = c.Storage.NATS.Bucket
		}
		if timeout > 0 {
			cfg.Timeout = timeout
		}
		store, err := state.NewNATSStore(cfg)
		if err != nil {
			nc.Close()
			return nil, errors.WrapWithCode(err, errors.ErrCodeUnavailable, "open nats store",
				errors.WithMetadata("bucket", cfg.Bucket))
		}
		return store, nil
	}

	return nil, errors.InvalidInput("unknown storage backend " + c.Storage.Backend)
}
