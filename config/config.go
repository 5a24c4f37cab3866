// Copyright (C) 2026 megolm-export contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package config loads the CLI's YAML configuration file, with
// environment-variable substitution and overrides layered the way the
// rest of the ambient stack expects.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level CLI configuration.
type Config struct {
	Store   *StoreConfig   `yaml:"store" json:"store"`
	KDF     *KDFConfig     `yaml:"kdf" json:"kdf"`
	Logging *LoggingConfig `yaml:"logging" json:"logging"`
}

// StoreConfig locates the default session store directory.
type StoreConfig struct {
	Directory string `yaml:"directory" json:"directory"`
}

// KDFConfig controls the PBKDF2 iteration count Export writes into new
// envelopes. It never affects Import, which always honors the rounds
// value recorded in the envelope being read.
type KDFConfig struct {
	Rounds int `yaml:"rounds" json:"rounds"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Pretty bool   `yaml:"pretty" json:"pretty"`
}

// defaultConfig mirrors the constants keyexport falls back to when no
// config file is present.
func defaultConfig() *Config {
	return &Config{
		Store:   &StoreConfig{Directory: "./sessions"},
		KDF:     &KDFConfig{Rounds: 500_000},
		Logging: &LoggingConfig{Level: "info", Pretty: false},
	}
}

// Load reads path as YAML, falling back to defaultConfig if path does not
// exist. Environment variable references of the form ${VAR} or
// ${VAR:default} are substituted in string fields, and a handful of
// MEGOLM_* environment variables take precedence over both.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("config: read %s: %w", path, err)
			}
		} else {
			loaded := &Config{}
			if err := yaml.Unmarshal(data, loaded); err != nil {
				return nil, fmt.Errorf("config: parse %s: %w", path, err)
			}
			mergeConfig(cfg, loaded)
		}
	}

	substituteEnvVars(cfg)
	applyEnvironmentOverrides(cfg)

	if cfg.KDF.Rounds < 1 {
		return nil, fmt.Errorf("config: kdf.rounds must be >= 1, got %d", cfg.KDF.Rounds)
	}

	return cfg, nil
}

// mergeConfig overlays fields from loaded onto base. Non-empty strings
// replace the defaults; kdf.rounds and logging.pretty are taken whenever
// their section is present, so an explicit rounds of 0 reaches Load's
// validation instead of silently keeping the default.
func mergeConfig(base, loaded *Config) {
	if loaded.Store != nil {
		if loaded.Store.Directory != "" {
			base.Store.Directory = loaded.Store.Directory
		}
	}
	if loaded.KDF != nil {
		base.KDF.Rounds = loaded.KDF.Rounds
	}
	if loaded.Logging != nil {
		if loaded.Logging.Level != "" {
			base.Logging.Level = loaded.Logging.Level
		}
		base.Logging.Pretty = loaded.Logging.Pretty
	}
}
