// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package quest

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// ErrQuestStarted is returned when editing or removing a quest that already
// has crew members.
var ErrQuestStarted = errors.New("quest is already started")

// OpsService lets guild commanders manage their posted quests.
type OpsService struct {
	ops   OpsRepository
	board BoardRepository
}

// NewOpsService creates an OpsService.
func NewOpsService(ops OpsRepository, board BoardRepository) (*OpsService, error) {
	if ops == nil {
		return nil, oops.Errorf("ops repository is required")
	}
	if board == nil {
		return nil, oops.Errorf("board repository is required")
	}
	return &OpsService{ops: ops, board: board}, nil
}

// Add posts a new quest and returns its id.
func (s *OpsService) Add(ctx context.Context, guildCommanderID int32, draft Draft) (int32, error) {
	if draft.Name == "" {
		return 0, oops.Code("QUEST_INVALID_DRAFT").Errorf("quest name cannot be empty")
	}
	return s.ops.Add(ctx, draft, guildCommanderID)
}

// Edit replaces a quest's content. Refused once any adventurer has joined.
func (s *OpsService) Edit(ctx context.Context, questID, guildCommanderID int32, draft Draft) (int32, error) {
	if draft.Name == "" {
		return 0, oops.Code("QUEST_INVALID_DRAFT").Errorf("quest name cannot be empty")
	}

	count, err := s.board.CrewCount(ctx, questID)
	if err != nil {
		return 0, oops.Code("QUEST_EDIT_FAILED").
			With("operation", "count crew").
			With("quest_id", questID).
			Wrap(err)
	}
	if count > 0 {
		return 0, oops.Code("QUEST_ALREADY_STARTED").With("quest_id", questID).Wrap(ErrQuestStarted)
	}

	return s.ops.Edit(ctx, questID, guildCommanderID, draft)
}

// Remove deletes a quest. Refused once any adventurer has joined.
func (s *OpsService) Remove(ctx context.Context, questID, guildCommanderID int32) error {
	count, err := s.board.CrewCount(ctx, questID)
	if err != nil {
		return oops.Code("QUEST_REMOVE_FAILED").
			With("operation", "count crew").
			With("quest_id", questID).
			Wrap(err)
	}
	if count > 0 {
		return oops.Code("QUEST_ALREADY_STARTED").With("quest_id", questID).Wrap(ErrQuestStarted)
	}

	return s.ops.Remove(ctx, questID, guildCommanderID)
}
