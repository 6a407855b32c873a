package config

import (
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	SessionConfig
	StorageConfig
	ProviderConfig
	ValidationConfig
}

type EnvConfig interface {
	GetAppName() string
	GetAppVersion() string
	GetDataFolder() string
	GetProfile() string
	GetLogLevel() string
	GetEnv() string
}

type mainConfig struct {
	EnvVars
	Session
	Storage
	Provider
	Validation
}

// New loads an optional .env file from the working directory and returns a
// Config backed by environment variables.
func New() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded")
	}
	return mainConfig{}
}
