// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/questboard/questboard/internal/auth"
)

const (
	// accessCookie carries the access token.
	accessCookie = "act"
	// refreshCookie carries the refresh token.
	refreshCookie = "rft"

	// cookieMaxAge outlives the refresh token itself so the browser still
	// sends an expired token and the server can answer with a proper 401
	// instead of a silent missing-cookie 400.
	cookieMaxAge = 14 * 24 * time.Hour
)

// setSessionCookies writes the act and rft cookies for a freshly issued
// passport. The Secure attribute is only set for production deployments.
func setSessionCookies(w http.ResponseWriter, passport *auth.Passport, secure bool) {
	http.SetCookie(w, sessionCookie(accessCookie, passport.AccessToken, secure))
	http.SetCookie(w, sessionCookie(refreshCookie, passport.RefreshToken, secure))
}

func sessionCookie(name, value string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(cookieMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
