package sessions

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/seniorinteract/internal/config"
	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/storage"
	"github.com/rs/zerolog/log"
)

// Store owns the single session slot of a device profile. Reads expire the
// record lazily: an expired or unreadable record is deleted and reported as
// absent.
//
// The mutex only serialises callers sharing this Store. Two processes writing
// the same backend race, and the last writer wins.
type Store struct {
	backend storage.Backend
	slotKey string
	ttl     time.Duration
	nowTime func() time.Time // injectable for testing
	mu      sync.Mutex
}

// StoreOption defines a function type to modify the Store instance.
type StoreOption func(*Store)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// NewStore creates a Store over backend using the slot key and TTL from cfg.
func NewStore(backend storage.Backend, cfg config.SessionConfig, options ...StoreOption) (*Store, error) {
	if backend == nil {
		return nil, errors.New("[NewStore] backend is required")
	}
	if cfg == nil {
		return nil, errors.New("[NewStore] config is required")
	}
	if cfg.GetStorageSlotKey() == "" {
		return nil, errors.New("[NewStore] storage slot key is required")
	}
	if cfg.GetSessionTTL() <= 0 {
		return nil, errors.New("[NewStore] session TTL must be positive")
	}

	s := &Store{
		backend: backend,
		slotKey: cfg.GetStorageSlotKey(),
		ttl:     cfg.GetSessionTTL(),
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured session lifetime
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Save replaces the slot with a new record created now. When the backend
// rejects the write the error wraps ErrStorageWriteFailed and the session is
// not considered saved.
func (s *Store) Save(ctx context.Context, user UserSnapshot, creds Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	creds.CreatedAt = s.nowTime()
	data, err := encodeRecord(&Record{User: user, Credentials: creds})
	if err != nil {
		return err
	}

	if err := s.backend.Set(ctx, s.slotKey, data); err != nil {
		log.Err(err).Str("slot", s.slotKey).Msg("Failed to save session")
		return fmt.Errorf("%w: %w", errors.ErrStorageWriteFailed, err)
	}

	log.Debug().Str("user_id", user.ID).Msg("Session saved")
	return nil
}

// Load returns the current record, or false when there is none. Corrupted
// and expired records are removed from the slot before returning false.
func (s *Store) Load(ctx context.Context) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, found, err := s.backend.Get(ctx, s.slotKey)
	if err != nil {
		log.Warn().Err(err).Str("slot", s.slotKey).Msg("Failed to read session slot")
		return nil, false
	}
	if !found {
		return nil, false
	}

	record, err := decodeRecord(raw)
	if err != nil {
		log.Warn().Err(err).Str("slot", s.slotKey).Msg("Clearing unreadable session")
		s.clearLocked(ctx)
		return nil, false
	}

	if record.IsExpired(s.nowTime(), s.ttl) {
		log.Info().Str("user_id", record.User.ID).Msg("Session expired")
		s.clearLocked(ctx)
		return nil, false
	}

	return record, true
}

// IsActive reports whether a valid session exists
func (s *Store) IsActive(ctx context.Context) bool {
	_, ok := s.Load(ctx)
	return ok
}

// CurrentUser returns the user of the valid session, if any
func (s *Store) CurrentUser(ctx context.Context) (*UserSnapshot, bool) {
	record, ok := s.Load(ctx)
	if !ok {
		return nil, false
	}
	return &record.User, true
}

// Clear empties the slot. Clearing an empty slot is not an error.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, s.slotKey); err != nil {
		return fmt.Errorf("clear session slot: %w", err)
	}
	log.Debug().Msg("Session cleared")
	return nil
}

func (s *Store) clearLocked(ctx context.Context) {
	if err := s.backend.Delete(ctx, s.slotKey); err != nil {
		log.Warn().Err(err).Str("slot", s.slotKey).Msg("Failed to clear session slot")
	}
}
