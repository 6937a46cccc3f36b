package player

import (
	"fmt"
	"strings"

	"playdeck.app/playdeck/internal/subtitles"
)

// Overlay is the render model for the subtitle overlay: the active
// cue's lines plus the style derived from the subtitle settings.
type Overlay struct {
	Visible    bool
	Lines      []string
	FontSize   int
	Color      string
	Background string
}

// Overlay computes the overlay for the current playback position.
// With no active selection or no matching cue the overlay is hidden.
func (p *Player) Overlay() Overlay {
	p.mu.Lock()
	cues := p.cues
	selected := p.selectedTrack
	st := p.settings.Subtitle
	p.mu.Unlock()

	if selected == "" || len(cues) == 0 {
		return Overlay{}
	}

	cue, ok := subtitles.ActiveCue(cues, p.Controller.State().CurrentTime, st.Delay)
	if !ok {
		return Overlay{}
	}

	return Overlay{
		Visible:    true,
		Lines:      strings.Split(cue.Text, "\n"),
		FontSize:   st.FontSize,
		Color:      st.Color,
		Background: blendBackground(st.BackgroundColor, st.BackgroundOpacity),
	}
}

// blendBackground appends the opacity as an alpha byte to the hex
// background color, producing a #RRGGBBAA value.
func blendBackground(hexColor string, opacity float64) string {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}

	alpha := int(opacity*255 + 0.5)

	return fmt.Sprintf("%s%02x", hexColor, alpha)
}
