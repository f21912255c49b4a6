// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

// Package quest implements the quest board: posting, browsing, crew
// membership, and journey status transitions.
package quest

import (
	"context"
	"errors"
	"time"
)

// MaxCrewSize is the adventurer capacity of a single quest.
const MaxCrewSize = 4

// Status is the lifecycle state of a quest.
type Status string

const (
	StatusOpen      Status = "Open"
	StatusInJourney Status = "In Journey"
	StatusCompleted Status = "Completed"
	StatusFailed    Status = "Failed"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInJourney, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// Joinable reports whether adventurers may join or leave a quest in this
// state. Crew changes are only allowed before a journey starts or after it
// failed.
func (s Status) Joinable() bool {
	return s == StatusOpen || s == StatusFailed
}

// ErrNotFound is returned when a requested quest does not exist.
var ErrNotFound = errors.New("not found")

// Quest is a posted quest as stored on the board.
type Quest struct {
	ID               int32
	Name             string
	Description      *string
	Status           Status
	GuildCommanderID int32
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// View is a quest together with its current crew size.
type View struct {
	Quest
	CrewCount int64
}

// BoardFilter narrows a board listing. Zero values match everything.
type BoardFilter struct {
	Name   string
	Status Status
}

// Draft is the commander-supplied content of a new or edited quest.
type Draft struct {
	Name        string
	Description *string
}

// Membership links one adventurer to one quest.
type Membership struct {
	QuestID      int32
	AdventurerID int32
}

// BoardRepository reads quests and crew counts.
type BoardRepository interface {
	ViewDetails(ctx context.Context, questID int32) (*Quest, error)
	BoardChecking(ctx context.Context, filter BoardFilter) ([]*Quest, error)
	CrewCount(ctx context.Context, questID int32) (int64, error)
}

// OpsRepository mutates quest records on behalf of their posting commander.
type OpsRepository interface {
	Add(ctx context.Context, draft Draft, guildCommanderID int32) (int32, error)
	Edit(ctx context.Context, questID, guildCommanderID int32, draft Draft) (int32, error)
	Remove(ctx context.Context, questID, guildCommanderID int32) error
}

// CrewRepository maintains the quest/adventurer junction.
type CrewRepository interface {
	Join(ctx context.Context, membership Membership) error
	Leave(ctx context.Context, membership Membership) error
}

// JourneyRepository applies status transitions, scoped to the posting
// commander. Returns false when no row matched (wrong quest or commander).
type JourneyRepository interface {
	UpdateStatus(ctx context.Context, questID, guildCommanderID int32, status Status) (bool, error)
}
