package config

import "time"

type SessionConfig interface {
	GetSessionTTL() time.Duration
	GetStorageSlotKey() string
}

type Session struct{}

var _ SessionConfig = Session{}

func (Session) GetSessionTTL() time.Duration {
	return GetEnvDuration("SESSION_TTL", 24*time.Hour)
}

// GetStorageSlotKey keeps the key the browser build used so existing slots stay readable.
func (Session) GetStorageSlotKey() string {
	return GetEnv("SESSION_SLOT_KEY", "senioriteract_sesion")
}
