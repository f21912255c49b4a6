// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package config

import (
	"strings"

	"github.com/samber/oops"
)

// Stage identifies the deployment environment. It controls behaviour that
// must differ between a developer laptop and a public deployment, such as
// the Secure attribute on session cookies.
type Stage string

const (
	StageLocal       Stage = "Local"
	StageDevelopment Stage = "Development"
	StageProduction  Stage = "Production"
)

// ParseStage converts a case-insensitive stage name into a Stage.
func ParseStage(s string) (Stage, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "local":
		return StageLocal, nil
	case "development", "dev":
		return StageDevelopment, nil
	case "production", "prod":
		return StageProduction, nil
	}
	return "", oops.Code("CONFIG_INVALID_STAGE").
		With("stage", s).
		Errorf("unknown stage %q", s)
}

// Secure reports whether session cookies must carry the Secure attribute.
func (s Stage) Secure() bool {
	return s == StageProduction
}
