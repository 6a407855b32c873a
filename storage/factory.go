package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/seniorinteract/internal/config"
	"github.com/rs/zerolog/log"
)

const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// New builds the backend selected by cfg. A Redis backend that cannot be
// reached falls back to the file backend. The returned closer is never nil.
func New(ctx context.Context, cfg interface {
	config.EnvConfig
	config.StorageConfig
}) (Backend, io.Closer, error) {
	switch cfg.GetStorageBackend() {
	case BackendMemory:
		log.Info().Msg("Using in-memory storage")
		return NewMemoryBackend(), nopCloser{}, nil

	case BackendRedis:
		rb, err := NewRedisBackend(ctx, RedisOptions{
			Addr:      cfg.GetRedisAddr(),
			Username:  cfg.GetRedisUsername(),
			Password:  cfg.GetRedisPassword(),
			DB:        cfg.GetRedisDB(),
			KeyPrefix: cfg.GetRedisKeyPrefix(),
			Profile:   cfg.GetProfile(),
		})
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.GetRedisAddr()).Msg("Redis unavailable, falling back to file storage")
			break
		}
		log.Info().Str("addr", cfg.GetRedisAddr()).Str("profile", cfg.GetProfile()).Msg("Using Redis storage")
		return rb, rb, nil

	case BackendFile, "":

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.GetStorageBackend())
	}

	fb := NewFileBackend(cfg.GetDataFolder(), cfg.GetProfile())
	log.Info().Str("path", fb.Path()).Msg("Using file storage")
	return fb, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
