// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package quest

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// Crew errors.
var (
	ErrQuestFull         = errors.New("quest is full")
	ErrQuestNotJoinable  = errors.New("quest is not open for joining")
	ErrQuestNotLeaveable = errors.New("quest cannot be left in its current state")
	ErrAlreadyJoined     = errors.New("adventurer already joined this quest")
)

// CrewService moves adventurers on and off quest crews.
type CrewService struct {
	crew  CrewRepository
	board BoardRepository
}

// NewCrewService creates a CrewService.
func NewCrewService(crew CrewRepository, board BoardRepository) (*CrewService, error) {
	if crew == nil {
		return nil, oops.Errorf("crew repository is required")
	}
	if board == nil {
		return nil, oops.Errorf("board repository is required")
	}
	return &CrewService{crew: crew, board: board}, nil
}

// Join adds the adventurer to the quest's crew. The quest must be joinable
// (Open or Failed) and below capacity.
func (s *CrewService) Join(ctx context.Context, questID, adventurerID int32) error {
	q, err := s.board.ViewDetails(ctx, questID)
	if err != nil {
		return err
	}

	count, err := s.board.CrewCount(ctx, questID)
	if err != nil {
		return oops.Code("CREW_JOIN_FAILED").
			With("operation", "count crew").
			With("quest_id", questID).
			Wrap(err)
	}

	if count >= MaxCrewSize {
		return oops.Code("QUEST_FULL").With("quest_id", questID).Wrap(ErrQuestFull)
	}
	if !q.Status.Joinable() {
		return oops.Code("QUEST_NOT_JOINABLE").
			With("quest_id", questID).
			With("status", string(q.Status)).
			Wrap(ErrQuestNotJoinable)
	}

	return s.crew.Join(ctx, Membership{QuestID: questID, AdventurerID: adventurerID})
}

// Leave removes the adventurer from the quest's crew. Allowed only while the
// quest is Open or Failed; a crew cannot abandon a journey in progress.
func (s *CrewService) Leave(ctx context.Context, questID, adventurerID int32) error {
	q, err := s.board.ViewDetails(ctx, questID)
	if err != nil {
		return err
	}

	if !q.Status.Joinable() {
		return oops.Code("QUEST_NOT_LEAVEABLE").
			With("quest_id", questID).
			With("status", string(q.Status)).
			Wrap(ErrQuestNotLeaveable)
	}

	return s.crew.Leave(ctx, Membership{QuestID: questID, AdventurerID: adventurerID})
}
