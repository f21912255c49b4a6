// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package auth

import (
	"github.com/samber/oops"
)

// Role identifies which side of the quest board a credential belongs to.
type Role string

const (
	// RoleAdventurer is a quest-taking account.
	RoleAdventurer Role = "adventurer"

	// RoleGuildCommander is a quest-posting account.
	RoleGuildCommander Role = "guild_commander"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleAdventurer || r == RoleGuildCommander
}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", oops.Code("AUTH_INVALID_ROLE").
			With("role", s).
			Errorf("unknown role: %q", s)
	}
	return r, nil
}

// SecretPair holds the two independent signing secrets for one role.
// The access and refresh secrets are never derived from each other.
type SecretPair struct {
	Secret        string
	RefreshSecret string
}

// Secrets holds the signing secrets for both roles. It is loaded once at
// startup and treated as immutable for the process lifetime.
type Secrets struct {
	Adventurer     SecretPair
	GuildCommander SecretPair
}

// For returns the secret pair for the given role.
func (s Secrets) For(role Role) (SecretPair, error) {
	switch role {
	case RoleAdventurer:
		return s.Adventurer, nil
	case RoleGuildCommander:
		return s.GuildCommander, nil
	default:
		return SecretPair{}, oops.Code("AUTH_INVALID_ROLE").
			With("role", string(role)).
			Errorf("unknown role: %q", string(role))
	}
}

// Validate checks that all four secrets are present. A missing secret is a
// fatal configuration error: the process must not start without it.
func (s Secrets) Validate() error {
	missing := func(role Role, which string) error {
		return oops.Code("CONFIG_MISSING_SECRET").
			With("role", string(role)).
			With("secret", which).
			Errorf("%s %s secret is not configured", string(role), which)
	}

	if s.Adventurer.Secret == "" {
		return missing(RoleAdventurer, "access")
	}
	if s.Adventurer.RefreshSecret == "" {
		return missing(RoleAdventurer, "refresh")
	}
	if s.GuildCommander.Secret == "" {
		return missing(RoleGuildCommander, "access")
	}
	if s.GuildCommander.RefreshSecret == "" {
		return missing(RoleGuildCommander, "refresh")
	}
	return nil
}
