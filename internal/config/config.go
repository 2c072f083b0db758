package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"bsp-map-loader/internal/asset"
)

// GameDirEnv names the environment variable consulted when no game
// directory is configured.
const GameDirEnv = "TF_DIR"

// Config holds the asset locations and run settings.
type Config struct {
	// Paths
	GameDir     string   `json:"game_dir" yaml:"game_dir"`
	SearchDirs  []string `json:"search_dirs" yaml:"search_dirs"`
	DownloadDir string   `json:"download_dir" yaml:"download_dir"`
	OutputDir   string   `json:"output_dir" yaml:"output_dir"`

	// Run settings
	Workers  int    `json:"workers" yaml:"workers"`
	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Load reads a config file. Files ending in .yaml or .yml are YAML, anything
// else is JSON. Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}
	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	GameDir   string
	OutputDir string
	Workers   int
	LogLevel  string
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	if flags.GameDir != "" {
		c.GameDir = flags.GameDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.GameDir == "" {
		c.GameDir = os.Getenv(GameDirEnv)
	}

	if len(c.SearchDirs) == 0 {
		c.SearchDirs = []string{"tf", "hl2"}
	}
	if c.DownloadDir == "" {
		c.DownloadDir = filepath.Join("tf", "download")
	}
	if c.GameDir != "" {
		for i, dir := range c.SearchDirs {
			if !filepath.IsAbs(dir) {
				c.SearchDirs[i] = filepath.Join(c.GameDir, dir)
			}
		}
		if !filepath.IsAbs(c.DownloadDir) {
			c.DownloadDir = filepath.Join(c.GameDir, c.DownloadDir)
		}
	}

	if c.OutputDir == "" {
		c.OutputDir = "out"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Level parses LogLevel, falling back to info.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Providers indexes the search directories in order, followed by the
// download directory. Directories that do not exist are skipped.
func (c *Config) Providers() (asset.Chain, error) {
	var chain asset.Chain
	for _, dir := range append(append([]string{}, c.SearchDirs...), c.DownloadDir) {
		if _, err := os.Stat(dir); err != nil {
			continue
		}
		d, err := asset.OpenDir(dir)
		if err != nil {
			return nil, err
		}
		chain = append(chain, d)
	}
	if len(chain) == 0 {
		return nil, errors.Errorf("config: no asset directory found under %q (set -game or %s)", c.GameDir, GameDirEnv)
	}
	return chain, nil
}
