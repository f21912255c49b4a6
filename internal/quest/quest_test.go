// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package quest_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/questboard/questboard/internal/quest"
)

// stubBoard is an in-memory board for service tests.
type stubBoard struct {
	quests map[int32]*quest.Quest
	crew   map[int32][]int32
}

func newStubBoard() *stubBoard {
	return &stubBoard{quests: map[int32]*quest.Quest{}, crew: map[int32][]int32{}}
}

func (b *stubBoard) add(q *quest.Quest) *quest.Quest {
	b.quests[q.ID] = q
	return q
}

func (b *stubBoard) ViewDetails(_ context.Context, questID int32) (*quest.Quest, error) {
	q, ok := b.quests[questID]
	if !ok {
		return nil, quest.ErrNotFound
	}
	return q, nil
}

func (b *stubBoard) BoardChecking(_ context.Context, filter quest.BoardFilter) ([]*quest.Quest, error) {
	var out []*quest.Quest
	for _, q := range b.quests {
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

func (b *stubBoard) CrewCount(_ context.Context, questID int32) (int64, error) {
	return int64(len(b.crew[questID])), nil
}

func (b *stubBoard) Join(_ context.Context, m quest.Membership) error {
	b.crew[m.QuestID] = append(b.crew[m.QuestID], m.AdventurerID)
	return nil
}

func (b *stubBoard) Leave(_ context.Context, m quest.Membership) error {
	members := b.crew[m.QuestID]
	for i, id := range members {
		if id == m.AdventurerID {
			b.crew[m.QuestID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return quest.ErrNotFound
}

func (b *stubBoard) Add(_ context.Context, draft quest.Draft, guildCommanderID int32) (int32, error) {
	id := int32(len(b.quests) + 1)
	b.add(&quest.Quest{ID: id, Name: draft.Name, Description: draft.Description, Status: quest.StatusOpen, GuildCommanderID: guildCommanderID})
	return id, nil
}

func (b *stubBoard) Edit(_ context.Context, questID, _ int32, draft quest.Draft) (int32, error) {
	q, ok := b.quests[questID]
	if !ok {
		return 0, quest.ErrNotFound
	}
	q.Name = draft.Name
	q.Description = draft.Description
	return questID, nil
}

func (b *stubBoard) Remove(_ context.Context, questID, _ int32) error {
	delete(b.quests, questID)
	return nil
}

func (b *stubBoard) UpdateStatus(_ context.Context, questID, guildCommanderID int32, status quest.Status) (bool, error) {
	q, ok := b.quests[questID]
	if !ok || q.GuildCommanderID != guildCommanderID {
		return false, nil
	}
	q.Status = status
	return true, nil
}

func openQuest(id, commanderID int32) *quest.Quest {
	return &quest.Quest{ID: id, Name: "Slay the wyrm", Status: quest.StatusOpen, GuildCommanderID: commanderID}
}

func TestViewingService(t *testing.T) {
	ctx := context.Background()

	t.Run("details include crew count", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		board.crew[1] = []int32{7, 8}

		svc, err := quest.NewViewingService(board)
		require.NoError(t, err)

		view, err := svc.ViewDetails(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), view.CrewCount)
		assert.Equal(t, quest.StatusOpen, view.Status)
	})

	t.Run("missing quest propagates ErrNotFound", func(t *testing.T) {
		svc, err := quest.NewViewingService(newStubBoard())
		require.NoError(t, err)

		_, err = svc.ViewDetails(ctx, 99)
		assert.ErrorIs(t, err, quest.ErrNotFound)
	})

	t.Run("board listing honors status filter", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		failed := openQuest(2, 3)
		failed.Status = quest.StatusFailed
		board.add(failed)

		svc, err := quest.NewViewingService(board)
		require.NoError(t, err)

		views, err := svc.BoardChecking(ctx, quest.BoardFilter{Status: quest.StatusFailed})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, int32(2), views[0].ID)
	})
}

func TestOpsService(t *testing.T) {
	ctx := context.Background()

	newOps := func(t *testing.T, board *stubBoard) *quest.OpsService {
		t.Helper()
		svc, err := quest.NewOpsService(board, board)
		require.NoError(t, err)
		return svc
	}

	t.Run("add posts an open quest", func(t *testing.T) {
		board := newStubBoard()
		svc := newOps(t, board)

		id, err := svc.Add(ctx, 3, quest.Draft{Name: "Slay the wyrm"})
		require.NoError(t, err)
		assert.Equal(t, quest.StatusOpen, board.quests[id].Status)
	})

	t.Run("add rejects empty name", func(t *testing.T) {
		svc := newOps(t, newStubBoard())
		_, err := svc.Add(ctx, 3, quest.Draft{})
		assert.Error(t, err)
	})

	t.Run("edit refused once crew joined", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		board.crew[1] = []int32{7}
		svc := newOps(t, board)

		_, err := svc.Edit(ctx, 1, 3, quest.Draft{Name: "New name"})
		assert.ErrorIs(t, err, quest.ErrQuestStarted)
	})

	t.Run("remove refused once crew joined", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		board.crew[1] = []int32{7}
		svc := newOps(t, board)

		err := svc.Remove(ctx, 1, 3)
		assert.ErrorIs(t, err, quest.ErrQuestStarted)
		assert.Contains(t, board.quests, int32(1))
	})

	t.Run("remove succeeds with empty crew", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		svc := newOps(t, board)

		require.NoError(t, svc.Remove(ctx, 1, 3))
		assert.NotContains(t, board.quests, int32(1))
	})
}

func TestCrewService(t *testing.T) {
	ctx := context.Background()

	newCrew := func(t *testing.T, board *stubBoard) *quest.CrewService {
		t.Helper()
		svc, err := quest.NewCrewService(board, board)
		require.NoError(t, err)
		return svc
	}

	t.Run("join open quest", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		svc := newCrew(t, board)

		require.NoError(t, svc.Join(ctx, 1, 7))
		assert.Equal(t, []int32{7}, board.crew[1])
	})

	t.Run("join refused at capacity", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		board.crew[1] = []int32{10, 11, 12, 13}
		svc := newCrew(t, board)

		err := svc.Join(ctx, 1, 7)
		assert.ErrorIs(t, err, quest.ErrQuestFull)
	})

	t.Run("join refused while in journey", func(t *testing.T) {
		board := newStubBoard()
		q := openQuest(1, 3)
		q.Status = quest.StatusInJourney
		board.add(q)
		svc := newCrew(t, board)

		err := svc.Join(ctx, 1, 7)
		assert.ErrorIs(t, err, quest.ErrQuestNotJoinable)
	})

	t.Run("join allowed on failed quest", func(t *testing.T) {
		board := newStubBoard()
		q := openQuest(1, 3)
		q.Status = quest.StatusFailed
		board.add(q)
		svc := newCrew(t, board)

		assert.NoError(t, svc.Join(ctx, 1, 7))
	})

	t.Run("leave refused while in journey", func(t *testing.T) {
		board := newStubBoard()
		q := openQuest(1, 3)
		q.Status = quest.StatusInJourney
		board.add(q)
		board.crew[1] = []int32{7}
		svc := newCrew(t, board)

		err := svc.Leave(ctx, 1, 7)
		assert.ErrorIs(t, err, quest.ErrQuestNotLeaveable)
	})

	t.Run("leave open quest", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		board.crew[1] = []int32{7}
		svc := newCrew(t, board)

		require.NoError(t, svc.Leave(ctx, 1, 7))
		assert.Empty(t, board.crew[1])
	})
}

func TestJourneyService(t *testing.T) {
	ctx := context.Background()

	newJourney := func(t *testing.T, board *stubBoard) *quest.JourneyService {
		t.Helper()
		svc, err := quest.NewJourneyService(board, board)
		require.NoError(t, err)
		return svc
	}

	t.Run("open quest departs", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		svc := newJourney(t, board)

		require.NoError(t, svc.InJourney(ctx, 1, 3))
		assert.Equal(t, quest.StatusInJourney, board.quests[1].Status)
	})

	t.Run("failed quest may depart again", func(t *testing.T) {
		board := newStubBoard()
		q := openQuest(1, 3)
		q.Status = quest.StatusFailed
		board.add(q)
		svc := newJourney(t, board)

		assert.NoError(t, svc.InJourney(ctx, 1, 3))
	})

	t.Run("completed quest cannot depart", func(t *testing.T) {
		board := newStubBoard()
		q := openQuest(1, 3)
		q.Status = quest.StatusCompleted
		board.add(q)
		svc := newJourney(t, board)

		err := svc.InJourney(ctx, 1, 3)
		assert.ErrorIs(t, err, quest.ErrInvalidTransition)
	})

	t.Run("completion requires in journey", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		svc := newJourney(t, board)

		err := svc.ToCompleted(ctx, 1, 3)
		assert.ErrorIs(t, err, quest.ErrInvalidTransition)

		require.NoError(t, svc.InJourney(ctx, 1, 3))
		require.NoError(t, svc.ToCompleted(ctx, 1, 3))
		assert.Equal(t, quest.StatusCompleted, board.quests[1].Status)
	})

	t.Run("failure requires in journey", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		svc := newJourney(t, board)

		require.NoError(t, svc.InJourney(ctx, 1, 3))
		require.NoError(t, svc.ToFailed(ctx, 1, 3))
		assert.Equal(t, quest.StatusFailed, board.quests[1].Status)
	})

	t.Run("foreign commander cannot move the quest", func(t *testing.T) {
		board := newStubBoard()
		board.add(openQuest(1, 3))
		svc := newJourney(t, board)

		err := svc.InJourney(ctx, 1, 99)
		require.Error(t, err)
		assert.ErrorIs(t, err, quest.ErrNotFound)
		assert.Equal(t, quest.StatusOpen, board.quests[1].Status)
	})
}
