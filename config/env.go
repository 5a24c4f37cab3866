package config

import (
	"os"
	"regexp"
)

// envVarPattern matches ${VAR} or ${VAR:default}.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// SubstituteEnvVars replaces ${VAR} or ${VAR:default} with environment
// variable values. If VAR is unset and no default was given, the reference
// is replaced with the empty string.
func SubstituteEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		parts := envVarPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultValue := ""
		if len(parts) > 2 {
			defaultValue = parts[2]
		}

		if value, ok := os.LookupEnv(varName); ok {
			return value
		}
		return defaultValue
	})
}

// substituteEnvVars applies SubstituteEnvVars to every string field in cfg.
func substituteEnvVars(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.Store != nil {
		cfg.Store.Directory = SubstituteEnvVars(cfg.Store.Directory)
	}
	if cfg.Logging != nil {
		cfg.Logging.Level = SubstituteEnvVars(cfg.Logging.Level)
	}
}

// applyEnvironmentOverrides lets a handful of MEGOLM_* variables override
// the loaded config outright, highest priority, the way a CLI flag would.
func applyEnvironmentOverrides(cfg *Config) {
	if dir := os.Getenv("MEGOLM_STORE_DIR"); dir != "" && cfg.Store != nil {
		cfg.Store.Directory = dir
	}
	if level := os.Getenv("MEGOLM_LOG_LEVEL"); level != "" && cfg.Logging != nil {
		cfg.Logging.Level = level
	}
}
