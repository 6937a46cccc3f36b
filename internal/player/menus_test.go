package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playdeck.app/playdeck/internal/discovery"
)

func TestSettingsMenuNavigation(t *testing.T) {
	ts := newFakeTrackSource()
	p := newTestPlayer(t, "https://example.com/a.mp4", ts)
	m := p.SettingsMenu()

	assert.False(t, m.Open())

	m.Toggle()
	assert.True(t, m.Open())
	assert.Equal(t, MenuRoot, m.Page())

	m.Enter(MenuSpeed)
	assert.Equal(t, MenuSpeed, m.Page())

	m.Back()
	assert.Equal(t, MenuRoot, m.Page())

	m.Enter(MenuSubtitleStyle)
	m.Toggle()
	assert.False(t, m.Open())

	// Reopening lands back on the root pane.
	m.Toggle()
	assert.Equal(t, MenuRoot, m.Page())
}

func TestSpeedOptionsCheckmark(t *testing.T) {
	ts := newFakeTrackSource()
	p := newTestPlayer(t, "https://example.com/a.mp4", ts)
	m := p.SettingsMenu()

	options := m.SpeedOptions()
	require.Len(t, options, len(PlaybackSpeeds))

	var selected []float64
	for _, o := range options {
		if o.Selected {
			selected = append(selected, o.Speed)
		}
	}
	assert.Equal(t, []float64{1}, selected)

	m.SelectSpeed(1.5)
	assert.Equal(t, 1.5, p.Settings().PlaybackSpeed)

	selected = nil
	for _, o := range m.SpeedOptions() {
		if o.Selected {
			selected = append(selected, o.Speed)
		}
	}
	assert.Equal(t, []float64{1.5}, selected)
}

func TestSubtitleStyleUpdates(t *testing.T) {
	ts := newFakeTrackSource()
	p := newTestPlayer(t, "https://example.com/a.mp4", ts)
	m := p.SettingsMenu()

	m.SetFontSize(24)
	m.SetColor("#00ff00")
	m.SetDelay(-1.5)
	m.SetBackground("#101010", 1.7)

	st := p.Settings().Subtitle
	assert.Equal(t, 24, st.FontSize)
	assert.Equal(t, "#00ff00", st.Color)
	assert.Equal(t, -1.5, st.Delay)
	assert.Equal(t, "#101010", st.BackgroundColor)
	assert.Equal(t, 1.0, st.BackgroundOpacity)
}

func TestSubtitleMenuEntries(t *testing.T) {
	ts := newFakeTrackSource()
	src := "https://example.com/a.mp4"
	ts.tracks[discovery.ContentID(src)] = []discovery.Track{
		{ID: "1", Language: "English", Country: "US"},
		{ID: "3", Language: "French", Country: "FR"},
	}

	p := newTestPlayer(t, src, ts)
	waitFor(t, func() bool { return len(p.Tracks()) == 2 })
	m := p.SubtitleMenu()

	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "Off", entries[0].Label)
	assert.True(t, entries[0].Selected)
	assert.Equal(t, "US", entries[1].Country)

	m.Toggle()
	assert.True(t, m.Open())

	m.Select("3")
	assert.False(t, m.Open())
	assert.Equal(t, "3", p.SelectedTrack())

	entries = m.Entries()
	assert.False(t, entries[0].Selected)
	assert.True(t, entries[2].Selected)
}
