package sessions

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jrsteele09/seniorinteract/internal/errors"
	"github.com/jrsteele09/seniorinteract/internal/utils"
	"github.com/jrsteele09/seniorinteract/rut"
	"github.com/jrsteele09/seniorinteract/users"
)

// wireRecord is the stored JSON layout. Field names are part of the storage
// contract and must stay stable.
type wireRecord struct {
	User        *wireUser        `json:"user"`
	Credentials *wireCredentials `json:"credentials"`
}

type wireUser struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Name       string `json:"name"`
	Surname    string `json:"surname"`
	Identifier string `json:"identifier"`
	Role       string `json:"role"`
	BirthDate  string `json:"birthDate"`
	Phone      string `json:"phone"`
}

type wireCredentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	RemoteExpiry int64  `json:"remoteExpiry"`
	CreatedAt    int64  `json:"createdAt"` // epoch milliseconds
}

func encodeRecord(r *Record) (string, error) {
	w := wireRecord{
		User: &wireUser{
			ID:        r.User.ID,
			Email:     r.User.Email,
			Name:      r.User.Name,
			Surname:   r.User.Surname,
			Role:      string(users.ParseRole(string(r.User.Role))),
			BirthDate: r.User.BirthDate,
			Phone:     r.User.Phone,
		},
		Credentials: &wireCredentials{
			AccessToken:  r.Credentials.AccessToken,
			RefreshToken: r.Credentials.RefreshToken,
			RemoteExpiry: r.Credentials.RemoteExpiry,
		},
	}
	w.User.Identifier = utils.Value(r.User.Identifier).String()
	if !r.Credentials.CreatedAt.IsZero() {
		w.Credentials.CreatedAt = r.Credentials.CreatedAt.UnixMilli()
	}

	data, err := json.Marshal(w)
	if err != nil {
		return "", fmt.Errorf("encode session record: %w", err)
	}
	return string(data), nil
}

// decodeRecord fails with ErrCorruptedRecord for anything that is not a
// well-formed record.
func decodeRecord(raw string) (*Record, error) {
	var w wireRecord
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCorruptedRecord, err)
	}
	if w.User == nil || w.Credentials == nil {
		return nil, fmt.Errorf("%w: missing user or credentials", errors.ErrCorruptedRecord)
	}

	r := &Record{
		User: UserSnapshot{
			ID:        w.User.ID,
			Email:     w.User.Email,
			Name:      w.User.Name,
			Surname:   w.User.Surname,
			Role:      users.ParseRole(w.User.Role),
			BirthDate: w.User.BirthDate,
			Phone:     w.User.Phone,
		},
		Credentials: Credentials{
			AccessToken:  w.Credentials.AccessToken,
			RefreshToken: w.Credentials.RefreshToken,
			RemoteExpiry: w.Credentials.RemoteExpiry,
		},
	}

	if w.User.Identifier != "" {
		id, err := rut.Parse(w.User.Identifier)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errors.ErrCorruptedRecord, err)
		}
		r.User.Identifier = &id
	}
	if w.Credentials.CreatedAt > 0 {
		r.Credentials.CreatedAt = time.UnixMilli(w.Credentials.CreatedAt)
	}

	return r, nil
}
