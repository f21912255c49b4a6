// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that start with a letter and contain only
// letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Credential is a stored account record for one role. Owned by the
// persistence layer; read-only to the session core.
type Credential struct {
	ID           int32
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ValidateUsername validates a username against registration rules.
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("AUTH_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("AUTH_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// AccountLookup resolves a username to a stored credential record.
// Implementations return ErrNotFound (possibly wrapped) when no account
// has the given username.
type AccountLookup interface {
	FindByUsername(ctx context.Context, username string) (*Credential, error)
}

// AccountRegistrar inserts a new credential record and returns its assigned
// id. Implementations return ErrUsernameTaken (possibly wrapped) on a
// duplicate username.
type AccountRegistrar interface {
	Register(ctx context.Context, username, passwordHash string) (int32, error)
}

// AccountRepository is the full persistence contract for one role's
// accounts. Any implementation is substitutable; the core never sees the
// storage technology behind it.
type AccountRepository interface {
	AccountLookup
	AccountRegistrar
}
