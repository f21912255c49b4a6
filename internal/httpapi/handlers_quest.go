// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/samber/oops"

	"github.com/questboard/questboard/internal/quest"
	"github.com/questboard/questboard/pkg/errutil"
)

// QuestHandler serves the quest board endpoints: viewing, ops, crew
// switchboard, and journey ledger.
type QuestHandler struct {
	viewing *quest.ViewingService
	ops     *quest.OpsService
	crew    *quest.CrewService
	journey *quest.JourneyService
	logger  *slog.Logger
}

// NewQuestHandler creates a QuestHandler.
func NewQuestHandler(viewing *quest.ViewingService, ops *quest.OpsService, crew *quest.CrewService, journey *quest.JourneyService, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{
		viewing: viewing,
		ops:     ops,
		crew:    crew,
		journey: journey,
		logger:  logger,
	}
}

// questResponse is the wire shape of a quest with its crew count.
type questResponse struct {
	ID               int32     `json:"id"`
	Name             string    `json:"name"`
	Description      *string   `json:"description"`
	Status           string    `json:"status"`
	GuildCommanderID int32     `json:"guild_commander_id"`
	CrewCount        int64     `json:"crew_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func toQuestResponse(v *quest.View) questResponse {
	return questResponse{
		ID:               v.ID,
		Name:             v.Name,
		Description:      v.Description,
		Status:           string(v.Status),
		GuildCommanderID: v.GuildCommanderID,
		CrewCount:        v.CrewCount,
		CreatedAt:        v.CreatedAt,
		UpdatedAt:        v.UpdatedAt,
	}
}

type questDraftRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// questID extracts the {quest_id} path value as an int32.
func questID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(r.PathValue("quest_id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

// ViewDetails handles GET /quest-viewing/{quest_id}.
func (h *QuestHandler) ViewDetails(w http.ResponseWriter, r *http.Request) {
	id, err := questID(r)
	if err != nil {
		http.Error(w, "invalid quest id", http.StatusBadRequest)
		return
	}

	view, err := h.viewing.ViewDetails(r.Context(), id)
	if errors.Is(err, quest.ErrNotFound) {
		http.Error(w, "quest not found", http.StatusNotFound)
		return
	}
	if err != nil {
		errutil.LogError(h.logger, "view quest details failed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toQuestResponse(view))
}

// BoardChecking handles GET /quest-viewing/board-checking?name=&status=.
func (h *QuestHandler) BoardChecking(w http.ResponseWriter, r *http.Request) {
	filter := quest.BoardFilter{
		Name: r.URL.Query().Get("name"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := quest.Status(status)
		if !s.Valid() {
			http.Error(w, "invalid status filter", http.StatusBadRequest)
			return
		}
		filter.Status = s
	}

	views, err := h.viewing.BoardChecking(r.Context(), filter)
	if err != nil {
		errutil.LogError(h.logger, "board checking failed", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	responses := make([]questResponse, 0, len(views))
	for _, v := range views {
		responses = append(responses, toQuestResponse(v))
	}
	writeJSON(w, http.StatusOK, responses)
}

// Add handles POST /quest-ops. Requires a guild commander identity.
func (h *QuestHandler) Add(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req questDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, err := h.ops.Add(r.Context(), identity.ID, quest.Draft{Name: req.Name, Description: req.Description})
	if err != nil {
		h.writeOpsError(w, err, "add quest failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

// Edit handles PATCH /quest-ops/{quest_id}.
func (h *QuestHandler) Edit(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := questID(r)
	if err != nil {
		http.Error(w, "invalid quest id", http.StatusBadRequest)
		return
	}

	var req questDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if _, err := h.ops.Edit(r.Context(), id, identity.ID, quest.Draft{Name: req.Name, Description: req.Description}); err != nil {
		h.writeOpsError(w, err, "edit quest failed")
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("Edit quest %d successfully", id))
}

// Remove handles DELETE /quest-ops/{quest_id}.
func (h *QuestHandler) Remove(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := questID(r)
	if err != nil {
		http.Error(w, "invalid quest id", http.StatusBadRequest)
		return
	}

	if err := h.ops.Remove(r.Context(), id, identity.ID); err != nil {
		h.writeOpsError(w, err, "remove quest failed")
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf("Remove quest %d successfully", id))
}

// Join handles POST /crew-switchboard/join/{quest_id}.
func (h *QuestHandler) Join(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := questID(r)
	if err != nil {
		http.Error(w, "invalid quest id", http.StatusBadRequest)
		return
	}

	if err := h.crew.Join(r.Context(), id, identity.ID); err != nil {
		h.writeCrewError(w, err, "join quest failed")
		return
	}

	writeText(w, http.StatusOK, "Joined quest successfully")
}

// Leave handles DELETE /crew-switchboard/leave/{quest_id}.
func (h *QuestHandler) Leave(w http.ResponseWriter, r *http.Request) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := questID(r)
	if err != nil {
		http.Error(w, "invalid quest id", http.StatusBadRequest)
		return
	}

	if err := h.crew.Leave(r.Context(), id, identity.ID); err != nil {
		h.writeCrewError(w, err, "leave quest failed")
		return
	}

	writeText(w, http.StatusOK, "Left quest successfully")
}

// InJourney handles PATCH /journey-ledger/in-journey/{quest_id}.
func (h *QuestHandler) InJourney(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.journey.InJourney, "Quest %d is in journey")
}

// ToCompleted handles PATCH /journey-ledger/to-completed/{quest_id}.
func (h *QuestHandler) ToCompleted(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.journey.ToCompleted, "Quest %d is completed")
}

// ToFailed handles PATCH /journey-ledger/to-failed/{quest_id}.
func (h *QuestHandler) ToFailed(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.journey.ToFailed, "Quest %d is failed")
}

func (h *QuestHandler) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, questID, guildCommanderID int32) error, okFormat string) {
	identity, ok := IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := questID(r)
	if err != nil {
		http.Error(w, "invalid quest id", http.StatusBadRequest)
		return
	}

	if err := apply(r.Context(), id, identity.ID); err != nil {
		switch {
		case errors.Is(err, quest.ErrNotFound):
			http.Error(w, "quest not found", http.StatusNotFound)
		case errors.Is(err, quest.ErrInvalidTransition):
			http.Error(w, "invalid status transition", http.StatusBadRequest)
		default:
			errutil.LogError(h.logger, "journey transition failed", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	writeText(w, http.StatusOK, fmt.Sprintf(okFormat, id))
}

func (h *QuestHandler) writeOpsError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, quest.ErrNotFound):
		http.Error(w, "quest not found", http.StatusNotFound)
	case errors.Is(err, quest.ErrQuestStarted):
		http.Error(w, "quest is already started", http.StatusConflict)
	case isDraftError(err):
		http.Error(w, "quest name cannot be empty", http.StatusBadRequest)
	default:
		errutil.LogError(h.logger, logMsg, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func (h *QuestHandler) writeCrewError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, quest.ErrNotFound):
		http.Error(w, "quest not found", http.StatusNotFound)
	case errors.Is(err, quest.ErrQuestFull):
		http.Error(w, "quest crew is full", http.StatusConflict)
	case errors.Is(err, quest.ErrQuestNotJoinable), errors.Is(err, quest.ErrQuestNotLeaveable):
		http.Error(w, "quest is not open for crew changes", http.StatusConflict)
	case errors.Is(err, quest.ErrAlreadyJoined):
		http.Error(w, "already joined this quest", http.StatusConflict)
	default:
		errutil.LogError(h.logger, logMsg, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func isDraftError(err error) bool {
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Code() == "QUEST_INVALID_DRAFT"
	}
	return false
}
