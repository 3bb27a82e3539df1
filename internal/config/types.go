// SPDX-License-Identifier: MPL-2.0

package config

import (
	"os"
	"path/filepath"
)

type (
	// Config is the resolved varup configuration.
	Config struct {
		// DefaultVariant is used when no variant argument is given.
		DefaultVariant string `mapstructure:"default_variant"`
		// Port overrides the ASGI entrypoint port when non-zero.
		Port int `mapstructure:"port"`
		// Reload enables live-reload on ASGI entrypoints.
		Reload bool `mapstructure:"reload"`
		// RequirementsFile overrides the variant's requirements file path.
		RequirementsFile string `mapstructure:"requirements_file"`
		// CacheDir holds the provision state file.
		CacheDir string `mapstructure:"cache_dir"`
		// Apt configures the OS package manager client.
		Apt AptConfig `mapstructure:"apt"`
		// Pip configures the Python package installer client.
		Pip PipConfig `mapstructure:"pip"`
	}

	// AptConfig configures the apt client.
	AptConfig struct {
		// Bin is the apt-get binary, default "apt-get".
		Bin string `mapstructure:"bin"`
	}

	// PipConfig configures the pip client.
	PipConfig struct {
		// Bin is the pip binary, default "pip3".
		Bin string `mapstructure:"bin"`
	}
)

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	cacheDir := ""
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".cache", AppName)
	}

	return &Config{
		DefaultVariant: "",
		Port:           0,
		Reload:         false,
		CacheDir:       cacheDir,
		Apt:            AptConfig{Bin: "apt-get"},
		Pip:            PipConfig{Bin: "pip3"},
	}
}

// StateFilePath returns the provision state file location under CacheDir.
func (c *Config) StateFilePath() string {
	return filepath.Join(c.CacheDir, "provision-state.toml")
}
