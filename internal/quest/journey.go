// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package quest

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// ErrInvalidTransition is returned for a status change the quest's current
// state does not allow.
var ErrInvalidTransition = errors.New("quest status transition not allowed")

// JourneyService drives quest status transitions on behalf of the posting
// commander. Allowed edges: Open/Failed -> In Journey, In Journey ->
// Completed, In Journey -> Failed.
type JourneyService struct {
	journey JourneyRepository
	board   BoardRepository
}

// NewJourneyService creates a JourneyService.
func NewJourneyService(journey JourneyRepository, board BoardRepository) (*JourneyService, error) {
	if journey == nil {
		return nil, oops.Errorf("journey repository is required")
	}
	if board == nil {
		return nil, oops.Errorf("board repository is required")
	}
	return &JourneyService{journey: journey, board: board}, nil
}

// InJourney marks the quest as departed.
func (s *JourneyService) InJourney(ctx context.Context, questID, guildCommanderID int32) error {
	return s.transition(ctx, questID, guildCommanderID, StatusInJourney, func(current Status) bool {
		return current == StatusOpen || current == StatusFailed
	})
}

// ToCompleted marks an in-journey quest as completed.
func (s *JourneyService) ToCompleted(ctx context.Context, questID, guildCommanderID int32) error {
	return s.transition(ctx, questID, guildCommanderID, StatusCompleted, func(current Status) bool {
		return current == StatusInJourney
	})
}

// ToFailed marks an in-journey quest as failed.
func (s *JourneyService) ToFailed(ctx context.Context, questID, guildCommanderID int32) error {
	return s.transition(ctx, questID, guildCommanderID, StatusFailed, func(current Status) bool {
		return current == StatusInJourney
	})
}

func (s *JourneyService) transition(ctx context.Context, questID, guildCommanderID int32, to Status, allowed func(Status) bool) error {
	q, err := s.board.ViewDetails(ctx, questID)
	if err != nil {
		return err
	}
	if !allowed(q.Status) {
		return oops.Code("QUEST_INVALID_TRANSITION").
			With("quest_id", questID).
			With("from", string(q.Status)).
			With("to", string(to)).
			Wrap(ErrInvalidTransition)
	}

	// The commander id in the predicate keeps one commander from moving
	// another commander's quest.
	updated, err := s.journey.UpdateStatus(ctx, questID, guildCommanderID, to)
	if err != nil {
		return oops.Code("QUEST_TRANSITION_FAILED").
			With("operation", "update status").
			With("quest_id", questID).
			With("status", string(to)).
			Wrap(err)
	}
	if !updated {
		return oops.Code("QUEST_NOT_OWNED").
			With("quest_id", questID).
			With("guild_commander_id", guildCommanderID).
			Wrap(ErrNotFound)
	}
	return nil
}
