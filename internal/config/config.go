// Package config loads the daemon configuration from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds every setting the daemon reads at startup.
type Config struct {
	HTTPAddr  string `env:"CELERIX_HTTP_ADDR"  envDefault:":7002"`
	DBPath    string `env:"CELERIX_DB_PATH"    envDefault:"./data/celerix-attach.db"`
	StaticDir string `env:"CELERIX_STATIC_DIR" envDefault:"static"`

	MaxFileSizeMB int      `env:"CELERIX_MAX_FILE_SIZE_MB" envDefault:"10"`
	PhotoFormats  []string `env:"CELERIX_PHOTO_FORMATS"    envDefault:"image/jpeg,image/png,image/webp,image/gif" envSeparator:","`
	FileFormats   []string `env:"CELERIX_FILE_FORMATS"     envDefault:"application/pdf,text/plain,text/csv,application/zip" envSeparator:","`

	AdminUsername string `env:"CELERIX_ADMIN_USERNAME"`
	AdminPassword string `env:"CELERIX_ADMIN_PASSWORD"`

	DisableTLS bool `env:"CELERIX_DISABLE_TLS" envDefault:"false"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.PhotoFormats = normalizeFormats(cfg.PhotoFormats)
	cfg.FileFormats = normalizeFormats(cfg.FileFormats)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("CELERIX_DB_PATH is required")
	}
	if strings.TrimSpace(c.StaticDir) == "" {
		return fmt.Errorf("CELERIX_STATIC_DIR is required")
	}
	if c.MaxFileSizeMB <= 0 {
		return fmt.Errorf("CELERIX_MAX_FILE_SIZE_MB must be positive, got %d", c.MaxFileSizeMB)
	}
	if len(c.PhotoFormats) == 0 {
		return fmt.Errorf("CELERIX_PHOTO_FORMATS must list at least one content type")
	}
	if len(c.FileFormats) == 0 {
		return fmt.Errorf("CELERIX_FILE_FORMATS must list at least one content type")
	}
	return nil
}

// MaxFileSize returns the upload limit in bytes.
func (c Config) MaxFileSize() int64 {
	return int64(c.MaxFileSizeMB) << 20
}

func normalizeFormats(in []string) []string {
	out := make([]string, 0, len(in))
	for _, f := range in {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
