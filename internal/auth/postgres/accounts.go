// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

// Package postgres implements the auth account contracts over PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/questboard/questboard/internal/auth"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock satisfies
// it in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AdventurerRepository implements auth.AccountRepository over the
// adventurers table.
type AdventurerRepository struct {
	db DB
}

// NewAdventurerRepository creates a new AdventurerRepository.
func NewAdventurerRepository(db DB) *AdventurerRepository {
	return &AdventurerRepository{db: db}
}

// FindByUsername resolves an adventurer credential (case-insensitive).
func (r *AdventurerRepository) FindByUsername(ctx context.Context, username string) (*auth.Credential, error) {
	return findByUsername(ctx, r.db, "adventurers", username)
}

// Register inserts a new adventurer and returns its assigned id.
func (r *AdventurerRepository) Register(ctx context.Context, username, passwordHash string) (int32, error) {
	return register(ctx, r.db, "adventurers", username, passwordHash)
}

// GuildCommanderRepository implements auth.AccountRepository over the
// guild_commanders table.
type GuildCommanderRepository struct {
	db DB
}

// NewGuildCommanderRepository creates a new GuildCommanderRepository.
func NewGuildCommanderRepository(db DB) *GuildCommanderRepository {
	return &GuildCommanderRepository{db: db}
}

// FindByUsername resolves a guild commander credential (case-insensitive).
func (r *GuildCommanderRepository) FindByUsername(ctx context.Context, username string) (*auth.Credential, error) {
	return findByUsername(ctx, r.db, "guild_commanders", username)
}

// Register inserts a new guild commander and returns its assigned id.
func (r *GuildCommanderRepository) Register(ctx context.Context, username, passwordHash string) (int32, error) {
	return register(ctx, r.db, "guild_commanders", username, passwordHash)
}

// The two account tables are disjoint but share one shape, so the SQL is
// shared with the table name interpolated from the constants above.
func findByUsername(ctx context.Context, db DB, table, username string) (*auth.Credential, error) {
	row := db.QueryRow(ctx, `
		SELECT id, username, password_hash, created_at, updated_at
		FROM `+table+`
		WHERE LOWER(username) = LOWER($1)
	`, username)

	var c auth.Credential
	err := row.Scan(&c.ID, &c.Username, &c.PasswordHash, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("table", table).
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_FIND_FAILED").
			With("operation", "find account by username").
			With("table", table).
			Wrap(err)
	}
	return &c, nil
}

func register(ctx context.Context, db DB, table, username, passwordHash string) (int32, error) {
	now := time.Now()
	row := db.QueryRow(ctx, `
		INSERT INTO `+table+` (username, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, username, passwordHash, now, now)

	var id int32
	if err := row.Scan(&id); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, oops.Code("ACCOUNT_USERNAME_TAKEN").
				With("table", table).
				With("username", username).
				Wrap(auth.ErrUsernameTaken)
		}
		return 0, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "insert account").
			With("table", table).
			Wrap(err)
	}
	return id, nil
}

// Compile-time interface checks.
var (
	_ auth.AccountRepository = (*AdventurerRepository)(nil)
	_ auth.AccountRepository = (*GuildCommanderRepository)(nil)
)
