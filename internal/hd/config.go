// ABOUTME: Configuration loading for the hd CLI via viper.
// ABOUTME: Resolves the data directory and acting user from flags, env (HD_*), config file, and git identity.

package hd

import (
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the resolved CLI settings.
type Config struct {
	Dir   string
	Actor string
}

// loadConfig merges, in precedence order: command flags, HD_* environment
// variables, .hd/config.yaml, then fallbacks (git identity for the actor).
func loadConfig(flagDir string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("hd")
	v.AutomaticEnv()

	dir := flagDir
	if dir == "" {
		dir = v.GetString("dir")
	}
	resolved, err := dataDir(GlobalOptions{Dir: dir})
	if err != nil {
		return nil, err
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(resolved)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	actor := v.GetString("actor")
	if actor == "" {
		actor = gitUserName()
	}
	if actor == "" {
		actor = "unknown"
	}

	return &Config{Dir: resolved, Actor: actor}, nil
}

// gitUserName reads git config user.name, returning "" when unavailable.
func gitUserName() string {
	out, err := exec.Command("git", "config", "user.name").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// DBPath returns the database file location inside a data directory.
func DBPath(dir string) string {
	return filepath.Join(dir, dbFileName)
}
