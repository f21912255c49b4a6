// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

// Package config loads the service configuration from defaults, an
// optional YAML file, QUESTBOARD_ environment variables, and command
// line flags, in that order of increasing precedence.
package config

import (
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/questboard/questboard/internal/auth"
)

// envPrefix namespaces the environment variables the loader reads.
const envPrefix = "QUESTBOARD_"

// Server holds the HTTP listener settings.
type Server struct {
	Port           int `koanf:"port"`
	BodyLimitMB    int `koanf:"body_limit_mb"`
	TimeoutSeconds int `koanf:"timeout_seconds"`
}

// Database holds the PostgreSQL connection settings.
type Database struct {
	URL string `koanf:"url"`
}

// Secrets holds the four token signing secrets, one pair per role.
type Secrets struct {
	AdventurerSecret            string `koanf:"adventurer_secret"`
	AdventurerRefreshSecret     string `koanf:"adventurer_refresh_secret"`
	GuildCommanderSecret        string `koanf:"guild_commander_secret"`
	GuildCommanderRefreshSecret string `koanf:"guild_commander_refresh_secret"`
}

// Auth converts the flat secret settings into the shape the auth
// services consume.
func (s Secrets) Auth() auth.Secrets {
	return auth.Secrets{
		Adventurer: auth.SecretPair{
			Secret:        s.AdventurerSecret,
			RefreshSecret: s.AdventurerRefreshSecret,
		},
		GuildCommander: auth.SecretPair{
			Secret:        s.GuildCommanderSecret,
			RefreshSecret: s.GuildCommanderRefreshSecret,
		},
	}
}

// Config is the full service configuration.
type Config struct {
	Stage    Stage    `koanf:"stage"`
	Server   Server   `koanf:"server"`
	Database Database `koanf:"database"`
	Secrets  Secrets  `koanf:"secrets"`
}

// Default returns the configuration baseline applied before any file,
// environment, or flag overrides.
func Default() Config {
	return Config{
		Stage: StageLocal,
		Server: Server{
			Port:           8080,
			BodyLimitMB:    10,
			TimeoutSeconds: 90,
		},
	}
}

// Load assembles the configuration. path may be empty to skip the file
// layer, and flags may be nil to skip the flag layer.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envToKey), nil); err != nil {
		return Config{}, oops.Code("CONFIG_ENV_FAILED").Wrap(err)
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	stage, err := ParseStage(string(cfg.Stage))
	if err != nil {
		return Config{}, err
	}
	cfg.Stage = stage

	return cfg, nil
}

// envToKey maps QUESTBOARD_SERVER_BODY_LIMIT_MB to server.body_limit_mb.
// Only the first underscore separates the section from the key, so keys
// themselves may contain underscores.
func envToKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	section, rest, found := strings.Cut(s, "_")
	if !found {
		return s
	}
	return section + "." + rest
}

// Validate checks that the configuration is complete enough to start
// the service.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return oops.Code("CONFIG_INVALID_PORT").
			With("port", c.Server.Port).
			Errorf("server port out of range")
	}
	if c.Database.URL == "" {
		return oops.Code("CONFIG_MISSING_DATABASE_URL").
			Errorf("database url is required")
	}
	if err := c.Secrets.Auth().Validate(); err != nil {
		return err
	}
	return nil
}
