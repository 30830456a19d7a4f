// Copyright (C) 2026 Enclica Interactive.
// See LICENSE for copying information.

package volt

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/Enclicainteractive/volt/internal/jsonutil"
	"github.com/Enclicainteractive/volt/storage"
)

// Age verification categories.
const (
	AgeAdult = "adult"
	AgeChild = "child"
)

// AgeVerification records when and how a user was verified.
type AgeVerification struct {
	Category   string `json:"category"`
	VerifiedAt int64  `json:"verifiedAt"`
}

// User is an account record. Fields the model does not claim survive in
// Extra across every mutation.
type User struct {
	ID              string           `json:"id"`
	Username        string           `json:"username,omitempty"`
	Status          string           `json:"status,omitempty"`
	CreatedAt       int64            `json:"createdAt,omitempty"`
	UpdatedAt       int64            `json:"updatedAt,omitempty"`
	AgeVerification *AgeVerification `json:"ageVerification,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// MarshalJSON merges unmodelled fields back into the record.
func (user User) MarshalJSON() ([]byte, error) {
	type alias User
	return jsonutil.Marshal(alias(user), user.Extra)
}

// UnmarshalJSON keeps unmodelled fields aside in Extra.
func (user *User) UnmarshalJSON(data []byte) error {
	type alias User
	var known alias
	extra, err := jsonutil.Unmarshal(data, &known)
	if err != nil {
		return err
	}
	*user = User(known)
	user.Extra = extra
	return nil
}

// UsersService manages the users collection.
type UsersService struct {
	db   *DB
	coll collection[User]
}

// Get returns a user or ErrNotFound.
func (service *UsersService) Get(id string) (User, error) {
	user, ok, err := service.coll.get(id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, storage.ErrNotFound.New("user %s", id)
	}
	return user, nil
}

// List returns every user sorted by identity.
func (service *UsersService) List() ([]User, error) {
	records, err := service.coll.all()
	if err != nil {
		return nil, err
	}
	users := make([]User, 0, len(records))
	for _, user := range records {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// Upsert stores the user, stamping CreatedAt once and UpdatedAt always.
func (service *UsersService) Upsert(ctx context.Context, user User) (err error) {
	defer mon.Task()(&ctx)(&err)

	if user.ID == "" {
		return storage.ErrConstraint.New("user id is required")
	}
	return service.coll.mutate(ctx, user.ID, func(record *User, exists bool) error {
		if exists {
			user.CreatedAt = record.CreatedAt
		}
		if user.CreatedAt == 0 {
			user.CreatedAt = now()
		}
		user.UpdatedAt = now()
		*record = user
		return nil
	})
}

// Patch applies fn to an existing user and stamps UpdatedAt.
func (service *UsersService) Patch(ctx context.Context, id string, fn func(*User)) (err error) {
	defer mon.Task()(&ctx)(&err)

	return service.coll.mutate(ctx, id, func(record *User, exists bool) error {
		if !exists {
			return storage.ErrNotFound.New("user %s", id)
		}
		fn(record)
		record.ID = id
		record.UpdatedAt = now()
		return nil
	})
}

// SetStatus updates the presence status.
func (service *UsersService) SetStatus(ctx context.Context, id, status string) error {
	return service.Patch(ctx, id, func(user *User) { user.Status = status })
}

// SetAgeVerification records a verification with the given category.
func (service *UsersService) SetAgeVerification(ctx context.Context, id, category string) error {
	if category != AgeAdult && category != AgeChild {
		return storage.ErrConstraint.New("unknown age verification category %q", category)
	}
	return service.Patch(ctx, id, func(user *User) {
		user.AgeVerification = &AgeVerification{Category: category, VerifiedAt: now()}
	})
}

// IsAgeVerified reports whether the user holds a live verification.
// Adult verifications never expire; child verifications lapse after the
// configured offset.
func (service *UsersService) IsAgeVerified(id string) (bool, error) {
	user, ok, err := service.coll.get(id)
	if err != nil || !ok {
		return false, err
	}
	verification := user.AgeVerification
	if verification == nil {
		return false, nil
	}
	if verification.Category == AgeAdult {
		return true, nil
	}
	expiry := verification.VerifiedAt + service.db.config.ChildVerificationTTL.Milliseconds()
	return now() < expiry, nil
}
