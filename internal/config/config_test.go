package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// Ambient credentials in the test environment must not leak into the
	// defaults under test.
	for _, name := range []string{"MS_TENANT", "MS_SCOPE", "TRIP_SHARE_URLS_JSON"} {
		t.Setenv(name, "")
	}

	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, "wander-to-wonder", cfg.FolderPrefix)
	require.Equal(t, 50, cfg.MaxItems)
	require.Equal(t, 5, cfg.MaxDepth)
	require.Equal(t, "data", cfg.DataDir)
	require.Equal(t, DefaultTenant, cfg.Graph.Tenant)
	require.Equal(t, DefaultScope, cfg.Graph.Scope)
}

func TestLoadFileAndEnvOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gallerysync.yml")
	content := `
folder_prefix: galleries
max_items: 10
max_depth: 2
data_dir: out
log_level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("MS_CLIENT_ID", "client")
	t.Setenv("MS_REFRESH_TOKEN", "refresh")
	t.Setenv("MS_TENANT", "common")
	t.Setenv("CLOUDINARY_CLOUD_NAME", "cloud")
	t.Setenv("CLOUDINARY_API_KEY", "key")
	t.Setenv("CLOUDINARY_API_SECRET", "secret")
	t.Setenv("TRIP_SHARE_URLS_JSON", `{"iceland":"https://1drv.ms/f/abc"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "galleries", cfg.FolderPrefix)
	require.Equal(t, 10, cfg.MaxItems)
	require.Equal(t, 2, cfg.MaxDepth)
	require.Equal(t, "out", cfg.DataDir)
	require.Equal(t, "debug", cfg.LogLevel)

	require.Equal(t, "client", cfg.Graph.ClientID)
	require.Equal(t, "refresh", cfg.Graph.RefreshToken)
	require.Equal(t, "common", cfg.Graph.Tenant)
	require.Equal(t, "cloud", cfg.Cloudinary.CloudName)
	require.Equal(t, `{"iceland":"https://1drv.ms/f/abc"}`, cfg.TripMap)

	require.NoError(t, cfg.Validate())
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	require.Equal(t, 50, cfg.MaxItems)
}

func TestValidateReportsMissingSettings(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	err := cfg.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "MS_CLIENT_ID")
	require.Contains(t, err.Error(), "CLOUDINARY_API_SECRET")
}
