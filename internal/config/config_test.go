package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "playdeck", "settings.json")

	conf, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "dark", conf.Theme)
	assert.Empty(t, conf.SubtitleService)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadFromReadsExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	data := `{"theme":"light","subtitle_service":"https://subs.example.com","cast_device":"10.0.0.5:8009"}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	conf, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "light", conf.Theme)
	assert.Equal(t, "https://subs.example.com", conf.SubtitleService)
	assert.Equal(t, "10.0.0.5:8009", conf.CastDevice)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("PLAYDECK_THEME", "light")
	t.Setenv("PLAYDECK_SUBTITLE_SERVICE", "https://env.example.com")

	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"theme":"dark"}`), 0644))

	conf, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "light", conf.Theme)
	assert.Equal(t, "https://env.example.com", conf.SubtitleService)
}

func TestLoadFromBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{nope"), 0644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")

	conf := &Config{Theme: "light", CastDevice: "tv.local"}
	require.NoError(t, conf.SaveTo(path))

	got, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, conf, got)
}
