// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

// Package auth provides the credential and session core for QuestBoard.
//
// # Roles
//
// Every credential belongs to exactly one Role (adventurer or guild
// commander). Roles partition both the account tables and the signing
// secrets: a token minted for one role can never verify against the
// other role's secrets.
//
// # Tokens
//
// Sessions are stateless. A login produces a Passport holding two signed
// tokens: a short-lived access token and a longer-lived refresh token,
// each signed with an independent per-role secret. Validity is determined
// entirely by signature and embedded expiry; nothing is persisted
// server-side between requests.
//
// # Services
//
//   - Service - login, token refresh
//   - RegistrationService - account creation (hash before insert)
//
// Account persistence is reached only through the AccountLookup and
// AccountRegistrar capability interfaces; any implementation satisfying
// them is substitutable.
package auth
