package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONAndYAML(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "config.json")
	yamlPath := filepath.Join(dir, "config.yml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"game_dir": "/games/tf2", "workers": 3, "search_dirs": ["tf"]}`), 0644))
	require.NoError(t, os.WriteFile(yamlPath, []byte("game_dir: /games/tf2\nworkers: 3\nsearch_dirs:\n  - tf\n"), 0644))

	for _, path := range []string{jsonPath, yamlPath} {
		cfg, err := Load(path)
		require.NoError(t, err, path)
		assert.Equal(t, Config{GameDir: "/games/tf2", Workers: 3, SearchDirs: []string{"tf"}}, cfg, path)
	}

	_, err := Load(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "config: parse")
}

func TestResolveDefaults(t *testing.T) {
	t.Setenv(GameDirEnv, "/env/tf2")

	var cfg Config
	cfg.Resolve(Flags{})
	assert.Equal(t, "/env/tf2", cfg.GameDir)
	assert.Equal(t, []string{filepath.Join("/env/tf2", "tf"), filepath.Join("/env/tf2", "hl2")}, cfg.SearchDirs)
	assert.Equal(t, filepath.Join("/env/tf2", "tf", "download"), cfg.DownloadDir)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Positive(t, cfg.Workers)
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestResolveFlagsOverride(t *testing.T) {
	t.Setenv(GameDirEnv, "/env/tf2")

	cfg := Config{GameDir: "/file/tf2", Workers: 2, LogLevel: "warn"}
	cfg.Resolve(Flags{GameDir: "/flag/tf2", Workers: 8, LogLevel: "debug"})
	assert.Equal(t, "/flag/tf2", cfg.GameDir)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, slog.LevelDebug, cfg.Level())

	cfg.LogLevel = "loud"
	assert.Equal(t, slog.LevelInfo, cfg.Level())
}

func TestProviders(t *testing.T) {
	game := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(game, "tf", "materials"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(game, "tf", "download", "maps"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(game, "tf", "materials", "a.vmt"), []byte("tf"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(game, "tf", "download", "maps", "b.bsp"), []byte("dl"), 0644))

	cfg := Config{GameDir: game}
	cfg.Resolve(Flags{})
	chain, err := cfg.Providers()
	require.NoError(t, err)
	assert.Len(t, chain, 2, "missing hl2 is skipped")

	data, err := chain.Fetch("MATERIALS/A.VMT")
	require.NoError(t, err)
	assert.Equal(t, "tf", string(data))
	data, err = chain.Fetch("maps/b.bsp")
	require.NoError(t, err)
	assert.Equal(t, "dl", string(data))

	empty := Config{GameDir: filepath.Join(game, "nothing")}
	empty.Resolve(Flags{})
	_, err = empty.Providers()
	assert.Error(t, err)
}
