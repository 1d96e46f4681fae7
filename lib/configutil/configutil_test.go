package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	PortalUrl string `json:"portal_url"`
	ApiUrl    string `json:"api_url"`
	OutputDir string `json:"output_dir"`
}

func TestReadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json5")
	require.NoError(t, os.WriteFile(path, []byte(`{
		// json5 comments are allowed
		portal_url: "https://portal.example",
		api_url: "https://api.example",
	}`), 0600))

	cfg, err := ReadConfig[testConfig](path)
	require.NoError(t, err)
	require.Equal(t, "https://portal.example", cfg.PortalUrl)
	require.Equal(t, "https://api.example", cfg.ApiUrl)
	require.Empty(t, cfg.OutputDir)
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		portal_url: "https://portal.example",
		output_dir: "out",
	}`), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{
		portal_url: "http://localhost:8080",
	}`), 0600))

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	// the local layer wins where it sets a value, the base fills the rest
	require.Equal(t, "http://localhost:8080", cfg.PortalUrl)
	require.Equal(t, "out", cfg.OutputDir)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestSplitExt(t *testing.T) {
	base, ext := splitExt("config.json5")
	require.Equal(t, "config", base)
	require.Equal(t, "json5", ext)

	base, ext = splitExt("noext")
	require.Equal(t, "noext", base)
	require.Empty(t, ext)
}
