// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested account does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidCredentials is the single outward signal for a failed login.
// Lookup misses and password mismatches both collapse into it so callers
// cannot enumerate usernames.
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrUsernameTaken is returned when registering a username that already
// exists for the role.
var ErrUsernameTaken = errors.New("username already taken")
