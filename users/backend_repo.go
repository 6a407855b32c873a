package users

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/storage"
)

var _ UserRepo = (*BackendRepo)(nil)

// BackendRepo keeps the whole account directory as a JSON array under a
// single backend key.
type BackendRepo struct {
	backend storage.Backend
	key     string
	lock    sync.Mutex
}

func NewBackendRepo(backend storage.Backend, key string) *BackendRepo {
	return &BackendRepo{
		backend: backend,
		key:     key,
	}
}

func (r *BackendRepo) Upsert(ctx context.Context, user *User) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return err
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	replaced := false
	for i, existing := range list {
		if existing.ID == user.ID {
			list[i] = user
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, user)
	}

	return r.save(ctx, list)
}

func (r *BackendRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (r *BackendRepo) GetByID(ctx context.Context, id string) (*User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range list {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, errors.ErrUserNotFound
}

func (r *BackendRepo) List(ctx context.Context) ([]*User, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.load(ctx)
}

func (r *BackendRepo) load(ctx context.Context) ([]*User, error) {
	raw, found, err := r.backend.Get(ctx, r.key)
	if err != nil {
		return nil, fmt.Errorf("read user directory: %w", err)
	}
	if !found || raw == "" {
		return []*User{}, nil
	}

	var list []*User
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, fmt.Errorf("decode user directory: %w", err)
	}
	return list, nil
}

func (r *BackendRepo) save(ctx context.Context, list []*User) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode user directory: %w", err)
	}
	if err := r.backend.Set(ctx, r.key, string(data)); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrStorageWriteFailed, err)
	}
	return nil
}
