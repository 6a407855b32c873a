package config

type StorageConfig interface {
	GetStorageBackend() string
	GetRedisAddr() string
	GetRedisUsername() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

type Storage struct{}

var _ StorageConfig = Storage{}

// GetStorageBackend is one of "file", "memory" or "redis".
func (Storage) GetStorageBackend() string {
	return GetEnv("STORAGE_BACKEND", "file")
}

func (Storage) GetRedisAddr() string {
	return GetEnv("REDIS_ADDR", "localhost:6379")
}

func (Storage) GetRedisUsername() string {
	return GetEnv("REDIS_USERNAME", "")
}

func (Storage) GetRedisPassword() string {
	return GetEnv("REDIS_PASSWORD", "")
}

func (Storage) GetRedisDB() int {
	return GetEnvInt("REDIS_DB", 0)
}

func (Storage) GetRedisKeyPrefix() string {
	return GetEnv("REDIS_KEY_PREFIX", "seniorinteract:")
}
