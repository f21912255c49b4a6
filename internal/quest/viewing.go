// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package quest

import (
	"context"

	"github.com/samber/oops"
)

// ViewingService answers read-only quest board queries.
type ViewingService struct {
	board BoardRepository
}

// NewViewingService creates a ViewingService.
func NewViewingService(board BoardRepository) (*ViewingService, error) {
	if board == nil {
		return nil, oops.Errorf("board repository is required")
	}
	return &ViewingService{board: board}, nil
}

// ViewDetails returns one quest with its crew count.
func (s *ViewingService) ViewDetails(ctx context.Context, questID int32) (*View, error) {
	q, err := s.board.ViewDetails(ctx, questID)
	if err != nil {
		return nil, err
	}

	count, err := s.board.CrewCount(ctx, questID)
	if err != nil {
		return nil, oops.Code("QUEST_VIEW_FAILED").
			With("operation", "count crew").
			With("quest_id", questID).
			Wrap(err)
	}

	return &View{Quest: *q, CrewCount: count}, nil
}

// BoardChecking lists quests matching the filter, each with its crew count.
func (s *ViewingService) BoardChecking(ctx context.Context, filter BoardFilter) ([]*View, error) {
	quests, err := s.board.BoardChecking(ctx, filter)
	if err != nil {
		return nil, err
	}

	views := make([]*View, 0, len(quests))
	for _, q := range quests {
		count, err := s.board.CrewCount(ctx, q.ID)
		if err != nil {
			return nil, oops.Code("QUEST_BOARD_FAILED").
				With("operation", "count crew").
				With("quest_id", q.ID).
				Wrap(err)
		}
		views = append(views, &View{Quest: *q, CrewCount: count})
	}
	return views, nil
}
