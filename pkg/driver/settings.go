package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment setting, e.g. IPDL_CACHE_DIR.
const EnvPrefix = "ipdl"

// Settings are the environment overrides.
type Settings struct {
	// IncludePath is a comma-separated list of extra search directories.
	IncludePath []string `envconfig:"include_path"`
	CacheDir    string   `envconfig:"cache_dir"`
	LogLevel    string   `envconfig:"log_level" default:"info"`
	NoColor     bool     `envconfig:"no_color"`
}

// LoadSettings reads IPDL_* variables from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return Settings{}, fmt.Errorf("settings: %w", err)
	}
	return s, nil
}

// ResolveCacheDir picks the cache directory: the environment wins over the
// manifest, and both fall back to ~/.ipdl.
func ResolveCacheDir(s Settings, m *Manifest) (string, error) {
	if s.CacheDir != "" {
		abs, err := filepath.Abs(s.CacheDir)
		if err != nil {
			return "", fmt.Errorf("resolve IPDL_CACHE_DIR %q: %w", s.CacheDir, err)
		}
		return abs, nil
	}
	if dir := m.ResolvedCacheDir(); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(home, ".ipdl"), nil
}
