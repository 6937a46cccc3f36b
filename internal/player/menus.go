package player

import "sync"

// MenuPage identifies the pane of the nested settings menu.
type MenuPage int

const (
	MenuRoot MenuPage = iota
	MenuSpeed
	MenuSubtitleStyle
)

// SettingsMenu models the nested settings popup: root pane with
// entries for the speed list and the subtitle style panel.
type SettingsMenu struct {
	player *Player

	mu   sync.Mutex
	open bool
	page MenuPage
}

func newSettingsMenu(p *Player) *SettingsMenu {
	return &SettingsMenu{player: p}
}

// Toggle opens or closes the menu, always landing back on the root
// pane.
func (m *SettingsMenu) Toggle() {
	m.mu.Lock()
	m.open = !m.open
	m.page = MenuRoot
	m.mu.Unlock()
}

// Open reports whether the menu renders.
func (m *SettingsMenu) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Page returns the active pane.
func (m *SettingsMenu) Page() MenuPage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page
}

// Enter navigates from the root into a sub pane.
func (m *SettingsMenu) Enter(page MenuPage) {
	m.mu.Lock()
	if m.open {
		m.page = page
	}
	m.mu.Unlock()
}

// Back returns to the root pane.
func (m *SettingsMenu) Back() {
	m.mu.Lock()
	m.page = MenuRoot
	m.mu.Unlock()
}

// SpeedOption is one row of the playback speed list.
type SpeedOption struct {
	Speed    float64
	Selected bool
}

// SpeedOptions returns the speed list with the checkmark on the
// current selection.
func (m *SettingsMenu) SpeedOptions() []SpeedOption {
	current := m.player.Settings().PlaybackSpeed

	options := make([]SpeedOption, len(PlaybackSpeeds))
	for i, speed := range PlaybackSpeeds {
		options[i] = SpeedOption{Speed: speed, Selected: speed == current}
	}

	return options
}

// SelectSpeed applies a speed choice from the menu.
func (m *SettingsMenu) SelectSpeed(speed float64) {
	m.player.UpdateSettings(func(s *Settings) {
		s.PlaybackSpeed = speed
	})
}

// SetFontSize applies a font-size chip choice.
func (m *SettingsMenu) SetFontSize(size int) {
	m.player.UpdateSettings(func(s *Settings) {
		s.Subtitle.FontSize = size
	})
}

// SetColor applies a color swatch choice.
func (m *SettingsMenu) SetColor(color string) {
	m.player.UpdateSettings(func(s *Settings) {
		s.Subtitle.Color = color
	})
}

// SetDelay applies the signed subtitle delay slider, in seconds.
func (m *SettingsMenu) SetDelay(delay float64) {
	m.player.UpdateSettings(func(s *Settings) {
		s.Subtitle.Delay = delay
	})
}

// SetBackground applies the background color and opacity pair.
func (m *SettingsMenu) SetBackground(color string, opacity float64) {
	m.player.UpdateSettings(func(s *Settings) {
		s.Subtitle.BackgroundColor = color
		s.Subtitle.BackgroundOpacity = clampFraction(opacity)
	})
}

// SubtitleMenuEntry is one row of the subtitle track list. The first
// entry is always "Off".
type SubtitleMenuEntry struct {
	ID       string
	Label    string
	Country  string
	Selected bool
}

// SubtitleMenu models the subtitle track popup.
type SubtitleMenu struct {
	player *Player

	mu   sync.Mutex
	open bool
}

func newSubtitleMenu(p *Player) *SubtitleMenu {
	return &SubtitleMenu{player: p}
}

// Toggle opens or closes the menu.
func (m *SubtitleMenu) Toggle() {
	m.mu.Lock()
	m.open = !m.open
	m.mu.Unlock()
}

// Open reports whether the menu renders.
func (m *SubtitleMenu) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// Entries returns the "Off" row followed by the discovered tracks,
// checkmark on the active selection.
func (m *SubtitleMenu) Entries() []SubtitleMenuEntry {
	selected := m.player.SelectedTrack()
	tracks := m.player.Tracks()

	entries := make([]SubtitleMenuEntry, 0, len(tracks)+1)
	entries = append(entries, SubtitleMenuEntry{
		Label:    "Off",
		Selected: selected == "",
	})

	for _, track := range tracks {
		entries = append(entries, SubtitleMenuEntry{
			ID:       track.ID,
			Label:    track.Language,
			Country:  track.Country,
			Selected: track.ID == selected,
		})
	}

	return entries
}

// Select activates a track (or "Off" with an empty id) and closes
// the menu.
func (m *SubtitleMenu) Select(id string) {
	m.player.SelectTrack(id)
	m.mu.Lock()
	m.open = false
	m.mu.Unlock()
}
