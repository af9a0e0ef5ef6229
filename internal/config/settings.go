package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

var (
	// ErrNotFound indicates an explicitly requested file does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidManifest indicates a manifest or named-set document failed validation.
	ErrInvalidManifest = errors.New("invalid manifest")
)

const (
	// EnvPrefix prefixes environment overrides, e.g. MODCLASH_WORKERS.
	EnvPrefix = "MODCLASH"

	// DefaultGroupLabel names groups in reports when nothing else is configured.
	DefaultGroupLabel = "Directories"

	// DefaultMemberLabel names members in reports when nothing else is configured.
	DefaultMemberLabel = "Files"
)

// Settings holds user-level defaults for conflict checks.
type Settings struct {
	// Workers bounds concurrent directory scans. Zero means one per CPU.
	Workers int `mapstructure:"workers" json:"workers"`

	// IgnoreExtensions lists extensions skipped by every scan.
	IgnoreExtensions []string `mapstructure:"ignore_extensions" json:"ignore_extensions"`

	// IgnorePatterns lists glob patterns skipped by every scan.
	IgnorePatterns []string `mapstructure:"ignore_patterns" json:"ignore_patterns"`

	// GroupLabel names groups in reports.
	GroupLabel string `mapstructure:"group_label" json:"group_label"`

	// MemberLabel names members in reports.
	MemberLabel string `mapstructure:"member_label" json:"member_label"`
}

// DefaultSettings returns the settings used when no file or override exists.
func DefaultSettings() Settings {
	return Settings{
		Workers:          0,
		IgnoreExtensions: []string{},
		IgnorePatterns:   []string{},
		GroupLabel:       DefaultGroupLabel,
		MemberLabel:      DefaultMemberLabel,
	}
}

// Load reads settings from configFile, or from paths.Config when configFile
// is empty. A missing default file is not an error; a missing explicit file
// is. Environment variables override file values.
// Returns the settings and the path of the file that was read, if any.
func Load(paths *Paths, configFile string) (*Settings, string, error) {
	v := viper.New()

	defaults := DefaultSettings()
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("ignore_extensions", defaults.IgnoreExtensions)
	v.SetDefault("ignore_patterns", defaults.IgnorePatterns)
	v.SetDefault("group_label", defaults.GroupLabel)
	v.SetDefault("member_label", defaults.MemberLabel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	resolvedPath := ""
	path := configFile
	if path == "" && paths != nil {
		path = paths.Config
	}

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			v.SetConfigFile(path)
			v.SetConfigType("toml")
			if err := v.ReadInConfig(); err != nil {
				return nil, "", fmt.Errorf("failed to read config %s: %w", path, err)
			}
			resolvedPath = path
		case os.IsNotExist(err) && configFile != "":
			return nil, "", fmt.Errorf("%w: config file %s", ErrNotFound, configFile)
		case !os.IsNotExist(err):
			return nil, "", fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if s.Workers < 0 {
		return nil, "", fmt.Errorf("invalid config: workers must be >= 0, got %d", s.Workers)
	}

	return &s, resolvedPath, nil
}
