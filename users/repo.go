package users

import "context"

// UserRepo stores local accounts. Lookups return ErrUserNotFound (from
// internal/errors) when nothing matches.
type UserRepo interface {
	Upsert(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
