// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questboard/questboard/internal/auth"
	"github.com/questboard/questboard/internal/auth/postgres"
	"github.com/questboard/questboard/pkg/errutil"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func TestAdventurerRepository_FindByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the credential", func(t *testing.T) {
		mock := newMock(t)
		now := time.Now()
		mock.ExpectQuery(`SELECT id, username, password_hash, created_at, updated_at\s+FROM adventurers`).
			WithArgs("alice").
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}).
				AddRow(int32(7), "alice", "$argon2id$...", now, now))

		repo := postgres.NewAdventurerRepository(mock)
		credential, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int32(7), credential.ID)
		assert.Equal(t, "alice", credential.Username)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing username wraps ErrNotFound", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM adventurers`).
			WithArgs("nobody").
			WillReturnRows(pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}))

		repo := postgres.NewAdventurerRepository(mock)
		_, err := repo.FindByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, auth.ErrNotFound)
		errutil.AssertErrorCode(t, err, "ACCOUNT_NOT_FOUND")
		errutil.AssertErrorContext(t, err, "username", "nobody")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database failure is not ErrNotFound", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`FROM adventurers`).
			WithArgs("alice").
			WillReturnError(errors.New("connection refused"))

		repo := postgres.NewAdventurerRepository(mock)
		_, err := repo.FindByUsername(ctx, "alice")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGuildCommanderRepository_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the assigned id", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO guild_commanders`).
			WithArgs("bram", "$argon2id$...", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int32(3)))

		repo := postgres.NewGuildCommanderRepository(mock)
		id, err := repo.Register(ctx, "bram", "$argon2id$...")
		require.NoError(t, err)
		assert.Equal(t, int32(3), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation wraps ErrUsernameTaken", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO guild_commanders`).
			WithArgs("bram", "$argon2id$...", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505"})

		repo := postgres.NewGuildCommanderRepository(mock)
		_, err := repo.Register(ctx, "bram", "$argon2id$...")
		assert.ErrorIs(t, err, auth.ErrUsernameTaken)
		errutil.AssertErrorCode(t, err, "ACCOUNT_USERNAME_TAKEN")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("case-insensitive duplicate wraps ErrUsernameTaken", func(t *testing.T) {
		// The schema enforces uniqueness on LOWER(username), so inserting
		// "Bram" alongside an existing "bram" raises the same violation.
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO guild_commanders`).
			WithArgs("Bram", "$argon2id$...", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "idx_guild_commanders_username"})

		repo := postgres.NewGuildCommanderRepository(mock)
		_, err := repo.Register(ctx, "Bram", "$argon2id$...")
		assert.ErrorIs(t, err, auth.ErrUsernameTaken)
		errutil.AssertErrorContext(t, err, "username", "Bram")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("other database failure is passed through wrapped", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`INSERT INTO guild_commanders`).
			WithArgs("bram", "$argon2id$...", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection refused"))

		repo := postgres.NewGuildCommanderRepository(mock)
		_, err := repo.Register(ctx, "bram", "$argon2id$...")
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrUsernameTaken)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
