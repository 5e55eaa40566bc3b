package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()

	// Only config.yaml is loaded; json/toml variants are ignored.
	v.SetConfigType("yaml")

	// Explicitly locate config.yaml and use SetConfigFile so viper does
	// not pick up unrelated files.
	// Precedence: project .todoit/config.yaml > user config dir.
	configFileSet := false

	// 1. Walk up from CWD to find a project .todoit/config.yaml.
	//    This allows commands to work from subdirectories.
	cwd, err := os.Getwd()
	if err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".todoit", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}

	// 2. User config directory (~/.config/todoit/config.yaml on Linux).
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "todoit", "config.yaml")
			if _, err := os.Stat(configPath); err == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file.
	// E.g. TODOIT_DB_PATH, TODOIT_OUTPUT_FORMAT, TODOIT_FORCE_TAGS.
	v.SetEnvPrefix("TODOIT")

	// Replace hyphens and dots with underscores for env var mapping, so
	// TODOIT_OUTPUT_FORMAT maps to the "output.format" key.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db.path", "")
	v.SetDefault("output.format", "table")
	v.SetDefault("actor", "")
	v.SetDefault("force-tags", []string{})
	v.SetDefault("filter-tags", []string{})
	v.SetDefault("serve.addr", "127.0.0.1:8080")
	v.SetDefault("serve.log-file", "")

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetStringSlice retrieves a string slice configuration value.
// Comma-separated single values (the env var form) are split.
func GetStringSlice(key string) []string {
	if v == nil {
		return nil
	}
	values := v.GetStringSlice(key)
	if len(values) == 1 && strings.Contains(values[0], ",") {
		values = strings.Split(values[0], ",")
	}
	var out []string
	for _, val := range values {
		if val = strings.TrimSpace(val); val != "" {
			out = append(out, val)
		}
	}
	return out
}

// Set sets a configuration value, overriding file and env sources.
// Used to push explicitly-set cobra flags into the config layer.
func Set(key string, value any) {
	if v != nil {
		v.Set(key, value)
	}
}

// AllSettings returns all configuration settings as a map
func AllSettings() map[string]any {
	if v == nil {
		return map[string]any{}
	}
	return v.AllSettings()
}

// ConfigFileUsed reports which config file was loaded, if any
func ConfigFileUsed() string {
	if v == nil {
		return ""
	}
	return v.ConfigFileUsed()
}

// DefaultDBPath resolves the database path when --db and db.path are
// unset. It walks up from CWD looking for an existing .todoit/todoit.db
// so commands work from subdirectories, and falls back to
// .todoit/todoit.db under the current directory.
func DefaultDBPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".todoit", "todoit.db")
	}
	for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		dbPath := filepath.Join(dir, ".todoit", "todoit.db")
		if _, err := os.Stat(dbPath); err == nil {
			return dbPath
		}
	}
	return filepath.Join(cwd, ".todoit", "todoit.db")
}

// ResolveDBPath applies the lookup chain for the database location:
// explicit flag, then db.path (config or TODOIT_DB_PATH), then the
// upward .todoit/todoit.db search.
func ResolveDBPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if path := GetString("db.path"); path != "" {
		return path
	}
	return DefaultDBPath()
}

// ResolveActor resolves who mutations are attributed to in history.
// Priority chain:
//  1. flagValue (from --actor)
//  2. TODOIT_ACTOR env var / config.yaml actor field (via viper)
//  3. $USER
//  4. hostname
func ResolveActor(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if actor := GetString("actor"); actor != "" {
		return actor
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		return hostname
	}
	return "unknown"
}
