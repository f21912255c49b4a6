// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/oops"

	"github.com/questboard/questboard/internal/auth"
	"github.com/questboard/questboard/internal/observability"
	"github.com/questboard/questboard/pkg/errutil"
)

// AuthHandler serves the per-role login, refresh, and registration
// endpoints.
type AuthHandler struct {
	sessions     *auth.Service
	registration *auth.RegistrationService
	secure       bool
	logger       *slog.Logger
	metrics      *observability.Metrics
}

// NewAuthHandler creates an AuthHandler. secure controls the Secure
// attribute on session cookies.
func NewAuthHandler(sessions *auth.Service, registration *auth.RegistrationService, secure bool, logger *slog.Logger, metrics *observability.Metrics) *AuthHandler {
	return &AuthHandler{
		sessions:     sessions,
		registration: registration,
		secure:       secure,
		logger:       logger,
		metrics:      metrics,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a username/password pair for one role and sets
// the session cookies. Every failure is a generic 401.
func (h *AuthHandler) Login(role auth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		passport, err := h.sessions.Login(r.Context(), role, req.Username, req.Password)
		if err != nil {
			h.metrics.RecordLogin(string(role), false)
			h.logger.InfoContext(r.Context(), "login rejected", "role", role)
			http.Error(w, "invalid username or password", http.StatusUnauthorized)
			return
		}

		h.metrics.RecordLogin(string(role), true)
		setSessionCookies(w, passport, h.secure)
		writeText(w, http.StatusOK, "Login successfully")
	}
}

// Refresh rotates the session from the rft cookie. A missing cookie is a
// 400; any verification failure is a generic 401.
func (h *AuthHandler) Refresh(role auth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(refreshCookie)
		if err != nil {
			http.Error(w, "Refresh token not found", http.StatusBadRequest)
			return
		}

		passport, err := h.sessions.Refresh(r.Context(), role, cookie.Value)
		if err != nil {
			h.metrics.RecordRefresh(string(role), false)
			h.logger.InfoContext(r.Context(), "refresh rejected", "role", role)
			http.Error(w, "invalid refresh token", http.StatusUnauthorized)
			return
		}

		h.metrics.RecordRefresh(string(role), true)
		setSessionCookies(w, passport, h.secure)
		writeText(w, http.StatusOK, "Login successfully")
	}
}

// Register creates an account for one role. Duplicate usernames are a
// 409, invalid input a 400.
func (h *AuthHandler) Register(role auth.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req credentialsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		id, err := h.registration.Register(r.Context(), role, req.Username, req.Password)
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			http.Error(w, "username is already taken", http.StatusConflict)
			return
		case err != nil:
			status := http.StatusBadRequest
			if !isValidationError(err) {
				status = http.StatusInternalServerError
				errutil.LogError(h.logger, "registration failed", err)
			}
			http.Error(w, "registration failed", status)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{"id": id})
	}
}

// isValidationError reports whether the registration failure came from
// the caller's input rather than the server.
func isValidationError(err error) bool {
	if errors.Is(err, auth.ErrEmptyPassword) {
		return true
	}
	if oopsErr, ok := oops.AsOops(err); ok {
		return oopsErr.Code() == "AUTH_INVALID_USERNAME"
	}
	return false
}
