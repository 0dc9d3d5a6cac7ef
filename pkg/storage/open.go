package storage

import (
	"context"

	ngerrors "github.com/matzehuels/nodegraph/pkg/errors"
)

// Config selects and configures a backend.
type Config struct {
	Backend string // memory, file, redis or mongo; empty means file
	Dir     string // file backend directory; empty means DefaultDataDir

	Redis RedisConfig
	Mongo MongoConfig
}

// Open connects to the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case "", BackendFile:
		s, err := NewFileStore(cfg.Dir)
		if err != nil {
			return nil, ngerrors.Wrap(ngerrors.ErrCodeStorageUnavailable, err, "open file store")
		}
		return s, nil
	case BackendRedis:
		s, err := NewRedisStore(ctx, cfg.Redis)
		if err != nil {
			return nil, ngerrors.Wrap(ngerrors.ErrCodeStorageUnavailable, err, "open redis store")
		}
		return s, nil
	case BackendMongo:
		s, err := NewMongoStore(ctx, cfg.Mongo)
		if err != nil {
			return nil, ngerrors.Wrap(ngerrors.ErrCodeStorageUnavailable, err, "open mongo store")
		}
		return s, nil
	}
	return nil, ngerrors.New(ngerrors.ErrCodeInvalidConfig, "unknown storage backend %q", cfg.Backend)
}
