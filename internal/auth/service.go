// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/samber/oops"
)

// dummyPasswordHash is used when a username does not exist so that password
// verification still runs and response time stays consistent. It is a fake
// digest that will never match any password.
//
//nolint:gosec // G101: intentionally fake digest for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service issues and refreshes session passports. It is stateless; every
// call is independent and safe for arbitrary concurrency. The only shared
// state is the immutable secret configuration captured at construction.
type Service struct {
	secrets     Secrets
	adventurers AccountLookup
	commanders  AccountLookup
	hasher      PasswordHasher
	now         func() time.Time
}

// NewService creates a Service. The secrets must be complete; both lookups
// and the hasher are required.
func NewService(secrets Secrets, adventurers, commanders AccountLookup, hasher PasswordHasher) (*Service, error) {
	if err := secrets.Validate(); err != nil {
		return nil, err
	}
	if adventurers == nil {
		return nil, oops.Errorf("adventurer lookup is required")
	}
	if commanders == nil {
		return nil, oops.Errorf("guild commander lookup is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &Service{
		secrets:     secrets,
		adventurers: adventurers,
		commanders:  commanders,
		hasher:      hasher,
		now:         time.Now,
	}, nil
}

// WithClock overrides the service's time source. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) lookupFor(role Role) (AccountLookup, error) {
	switch role {
	case RoleAdventurer:
		return s.adventurers, nil
	case RoleGuildCommander:
		return s.commanders, nil
	default:
		return nil, oops.Code("AUTH_INVALID_ROLE").
			With("role", string(role)).
			Errorf("unknown role: %q", string(role))
	}
}

// Login verifies the credentials against the role's account store and, on
// success, issues a fresh passport. Lookup misses and password mismatches
// are indistinguishable to the caller: both return ErrInvalidCredentials,
// and a dummy digest is verified on misses to keep response time constant.
func (s *Service) Login(ctx context.Context, role Role, username, password string) (*Passport, error) {
	lookup, err := s.lookupFor(role)
	if err != nil {
		return nil, err
	}
	pair, err := s.secrets.For(role)
	if err != nil {
		return nil, err
	}

	credential, lookupErr := lookup.FindByUsername(ctx, username)

	targetHash := dummyPasswordHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = credential.PasswordHash
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Keep the dummy digest so verification still runs.
	default:
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "find account by username").
			With("role", string(role)).
			Wrap(lookupErr)
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil {
		if !exists {
			return nil, ErrInvalidCredentials
		}
		// A corrupt stored digest is an internal error, not bad user input.
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			With("role", string(role)).
			Wrap(verifyErr)
	}
	if !exists || !valid {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	subject := strconv.FormatInt(int64(credential.ID), 10)
	return s.issuePassport(pair, subject, role, now, now.Add(RefreshTokenTTL))
}

// Refresh verifies the refresh token against the role's refresh secret and
// reissues the passport: the new access token gets a fresh window from this
// moment, while the new refresh token keeps the original expiry. An expired
// refresh token fails here; this is the single enforcement point for
// absolute session lifetime.
func (s *Service) Refresh(_ context.Context, role Role, refreshToken string) (*Passport, error) {
	pair, err := s.secrets.For(role)
	if err != nil {
		return nil, err
	}

	claims, err := VerifyToken(pair.RefreshSecret, refreshToken)
	if err != nil {
		// ErrTokenExpired and ErrTokenInvalid propagate unchanged.
		return nil, err
	}
	if claims.Role != role {
		return nil, ErrTokenInvalid
	}

	return s.issuePassport(pair, claims.Subject, role, s.now(), claims.ExpiresAt)
}

// issuePassport signs the access/refresh token pair. refreshExpiry is
// now+RefreshTokenTTL at login and the preserved original expiry on refresh.
func (s *Service) issuePassport(pair SecretPair, subject string, role Role, now, refreshExpiry time.Time) (*Passport, error) {
	accessToken, err := SignClaims(pair.Secret, Claims{
		Subject:   subject,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: now.Add(AccessTokenTTL),
	})
	if err != nil {
		return nil, oops.Code("AUTH_SIGN_FAILED").
			With("token", "access").
			Wrap(err)
	}

	refreshToken, err := SignClaims(pair.RefreshSecret, Claims{
		Subject:   subject,
		Role:      role,
		IssuedAt:  now,
		ExpiresAt: refreshExpiry,
	})
	if err != nil {
		return nil, oops.Code("AUTH_SIGN_FAILED").
			With("token", "refresh").
			Wrap(err)
	}

	return &Passport{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RegistrationService creates accounts: it validates the username, hashes
// the password, and inserts the credential record.
type RegistrationService struct {
	adventurers AccountRegistrar
	commanders  AccountRegistrar
	hasher      PasswordHasher
}

// NewRegistrationService creates a RegistrationService.
func NewRegistrationService(adventurers, commanders AccountRegistrar, hasher PasswordHasher) (*RegistrationService, error) {
	if adventurers == nil {
		return nil, oops.Errorf("adventurer registrar is required")
	}
	if commanders == nil {
		return nil, oops.Errorf("guild commander registrar is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	return &RegistrationService{
		adventurers: adventurers,
		commanders:  commanders,
		hasher:      hasher,
	}, nil
}

// Register creates a new account for the role and returns its id.
func (s *RegistrationService) Register(ctx context.Context, role Role, username, password string) (int32, error) {
	var registrar AccountRegistrar
	switch role {
	case RoleAdventurer:
		registrar = s.adventurers
	case RoleGuildCommander:
		registrar = s.commanders
	default:
		return 0, oops.Code("AUTH_INVALID_ROLE").
			With("role", string(role)).
			Errorf("unknown role: %q", string(role))
	}

	if err := ValidateUsername(username); err != nil {
		return 0, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return 0, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			With("role", string(role)).
			Wrap(err)
	}

	id, err := registrar.Register(ctx, username, digest)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return 0, err
		}
		return 0, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "insert account").
			With("role", string(role)).
			With("username", username).
			Wrap(err)
	}
	return id, nil
}
