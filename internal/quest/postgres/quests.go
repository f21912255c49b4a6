// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

// Package postgres implements the quest board repositories over PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/questboard/questboard/internal/quest"
)

// DB is the subset of pgxpool.Pool the repository uses. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuestRepository implements the board, ops, crew, and journey contracts
// over the quests and quest_crew tables.
type QuestRepository struct {
	db DB
}

// NewQuestRepository creates a new QuestRepository.
func NewQuestRepository(db DB) *QuestRepository {
	return &QuestRepository{db: db}
}

const questColumns = "id, name, description, status, guild_commander_id, created_at, updated_at"

// ViewDetails retrieves one quest by id.
func (r *QuestRepository) ViewDetails(ctx context.Context, questID int32) (*quest.Quest, error) {
	row := r.db.QueryRow(ctx, `
		SELECT `+questColumns+`
		FROM quests
		WHERE id = $1
	`, questID)

	q, err := scanQuest(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("QUEST_NOT_FOUND").
			With("quest_id", questID).
			Wrap(quest.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("QUEST_VIEW_FAILED").
			With("operation", "view quest details").
			With("quest_id", questID).
			Wrap(err)
	}
	return q, nil
}

// BoardChecking lists quests matching the filter, newest first.
func (r *QuestRepository) BoardChecking(ctx context.Context, filter quest.BoardFilter) ([]*quest.Quest, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Name != "" {
		args = append(args, "%"+filter.Name+"%")
		conditions = append(conditions, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}

	sql := `SELECT ` + questColumns + ` FROM quests`
	if len(conditions) > 0 {
		sql += " WHERE " + strings.Join(conditions, " AND ")
	}
	sql += " ORDER BY created_at DESC"

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, oops.Code("QUEST_BOARD_FAILED").
			With("operation", "list quests").
			Wrap(err)
	}
	defer rows.Close()

	var quests []*quest.Quest
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, oops.Code("QUEST_BOARD_FAILED").
				With("operation", "scan quest row").
				Wrap(err)
		}
		quests = append(quests, q)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("QUEST_BOARD_FAILED").
			With("operation", "iterate quests").
			Wrap(err)
	}
	return quests, nil
}

// CrewCount counts the adventurers joined to a quest.
func (r *QuestRepository) CrewCount(ctx context.Context, questID int32) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM quest_crew WHERE quest_id = $1
	`, questID).Scan(&count)
	if err != nil {
		return 0, oops.Code("CREW_COUNT_FAILED").
			With("quest_id", questID).
			Wrap(err)
	}
	return count, nil
}

// Add inserts a new open quest and returns its id.
func (r *QuestRepository) Add(ctx context.Context, draft quest.Draft, guildCommanderID int32) (int32, error) {
	now := time.Now()
	var id int32
	err := r.db.QueryRow(ctx, `
		INSERT INTO quests (name, description, status, guild_commander_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, draft.Name, draft.Description, string(quest.StatusOpen), guildCommanderID, now, now).Scan(&id)
	if err != nil {
		return 0, oops.Code("QUEST_ADD_FAILED").
			With("operation", "insert quest").
			With("guild_commander_id", guildCommanderID).
			Wrap(err)
	}
	return id, nil
}

// Edit replaces a quest's content, scoped to the posting commander.
func (r *QuestRepository) Edit(ctx context.Context, questID, guildCommanderID int32, draft quest.Draft) (int32, error) {
	var id int32
	err := r.db.QueryRow(ctx, `
		UPDATE quests
		SET name = $3, description = $4, updated_at = $5
		WHERE id = $1 AND guild_commander_id = $2
		RETURNING id
	`, questID, guildCommanderID, draft.Name, draft.Description, time.Now()).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, oops.Code("QUEST_NOT_FOUND").
			With("quest_id", questID).
			With("guild_commander_id", guildCommanderID).
			Wrap(quest.ErrNotFound)
	}
	if err != nil {
		return 0, oops.Code("QUEST_EDIT_FAILED").
			With("operation", "update quest").
			With("quest_id", questID).
			Wrap(err)
	}
	return id, nil
}

// Remove deletes a quest, scoped to the posting commander.
func (r *QuestRepository) Remove(ctx context.Context, questID, guildCommanderID int32) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM quests WHERE id = $1 AND guild_commander_id = $2
	`, questID, guildCommanderID)
	if err != nil {
		return oops.Code("QUEST_REMOVE_FAILED").
			With("operation", "delete quest").
			With("quest_id", questID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("QUEST_NOT_FOUND").
			With("quest_id", questID).
			With("guild_commander_id", guildCommanderID).
			Wrap(quest.ErrNotFound)
	}
	return nil
}

// Join adds an adventurer to a quest's crew.
func (r *QuestRepository) Join(ctx context.Context, m quest.Membership) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO quest_crew (quest_id, adventurer_id) VALUES ($1, $2)
	`, m.QuestID, m.AdventurerID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("CREW_ALREADY_JOINED").
				With("quest_id", m.QuestID).
				With("adventurer_id", m.AdventurerID).
				Wrap(quest.ErrAlreadyJoined)
		}
		return oops.Code("CREW_JOIN_FAILED").
			With("operation", "insert membership").
			With("quest_id", m.QuestID).
			Wrap(err)
	}
	return nil
}

// Leave removes an adventurer from a quest's crew.
func (r *QuestRepository) Leave(ctx context.Context, m quest.Membership) error {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM quest_crew WHERE quest_id = $1 AND adventurer_id = $2
	`, m.QuestID, m.AdventurerID)
	if err != nil {
		return oops.Code("CREW_LEAVE_FAILED").
			With("operation", "delete membership").
			With("quest_id", m.QuestID).
			Wrap(err)
	}
	if tag.RowsAffected() == 0 {
		return oops.Code("CREW_NOT_MEMBER").
			With("quest_id", m.QuestID).
			With("adventurer_id", m.AdventurerID).
			Wrap(quest.ErrNotFound)
	}
	return nil
}

// UpdateStatus applies a status transition, scoped to the posting commander.
func (r *QuestRepository) UpdateStatus(ctx context.Context, questID, guildCommanderID int32, status quest.Status) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE quests SET status = $3, updated_at = $4
		WHERE id = $1 AND guild_commander_id = $2
	`, questID, guildCommanderID, string(status), time.Now())
	if err != nil {
		return false, oops.Code("QUEST_TRANSITION_FAILED").
			With("operation", "update status").
			With("quest_id", questID).
			Wrap(err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanQuest(row pgx.Row) (*quest.Quest, error) {
	var (
		q      quest.Quest
		status string
	)
	err := row.Scan(&q.ID, &q.Name, &q.Description, &status, &q.GuildCommanderID, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("QUEST_SCAN_FAILED").Wrap(err)
	}
	q.Status = quest.Status(status)
	return &q, nil
}

// Compile-time interface checks.
var (
	_ quest.BoardRepository   = (*QuestRepository)(nil)
	_ quest.OpsRepository     = (*QuestRepository)(nil)
	_ quest.CrewRepository    = (*QuestRepository)(nil)
	_ quest.JourneyRepository = (*QuestRepository)(nil)
)
