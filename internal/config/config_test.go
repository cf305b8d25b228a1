package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverlaysFile(t *testing.T) {
	dir := t.TempDir()
	yamlData := `
session:
  instanceAddress: https://school.instructure.com
  timeout: 5s
generator:
  specDir: specs
  package: lms
  blacklist: [search.json]
refresh:
  converterURL: https://converter.example/api/convert
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yamlData), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://school.instructure.com", cfg.Session.InstanceAddress)
	assert.Equal(t, 5*time.Second, cfg.Session.Timeout)
	assert.Equal(t, 100, cfg.Session.MaxPerPage)
	assert.Equal(t, "specs", cfg.Generator.SpecDir)
	assert.Equal(t, "lms", cfg.Generator.Package)
	assert.Equal(t, "canvasapi", cfg.Generator.OutputDir)
	assert.Equal(t, []string{"search.json"}, cfg.Generator.Blacklist)
	assert.Equal(t, "https://converter.example/api/convert", cfg.Refresh.ConverterURL)
	assert.Equal(t, "api-docs.json", cfg.Refresh.DocsIndex)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("session: [1, 2"), 0o644))
	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvInstanceAddress, "https://env.instructure.com")
	t.Setenv(EnvMaxPerPage, "50")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CANOPY_TEST_DOTENV_TOKEN=unused\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "https://env.instructure.com", cfg.Session.InstanceAddress)
	assert.Equal(t, 50, cfg.Session.MaxPerPage)
	assert.Equal(t, "unused", os.Getenv("CANOPY_TEST_DOTENV_TOKEN"))
	_ = os.Unsetenv("CANOPY_TEST_DOTENV_TOKEN")

	t.Setenv(EnvMaxPerPage, "lots")
	_, err = Load(dir)
	assert.Error(t, err)
}
