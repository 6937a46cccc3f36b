package player

import (
	"sync"

	"playdeck.app/playdeck/internal/playback"
	"playdeck.app/playdeck/internal/subtitles"
)

// ProgressBar models the scrubbable progress bar: played/buffered
// fractions, a hover time preview, and drag-to-seek where dragging
// previews the target and release commits it.
type ProgressBar struct {
	ctrl *playback.Controller

	mu           sync.Mutex
	dragging     bool
	dragFraction float64
	hovering     bool
	hoverFrac    float64
}

func newProgressBar(ctrl *playback.Controller) *ProgressBar {
	return &ProgressBar{ctrl: ctrl}
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Fractions returns the played and buffered shares of the timeline,
// both in [0,1]. While a drag is active the played share previews
// the drag target instead of the live position.
func (b *ProgressBar) Fractions() (played, buffered float64) {
	st := b.ctrl.State()
	if st.Duration <= 0 {
		return 0, 0
	}

	b.mu.Lock()
	dragging, frac := b.dragging, b.dragFraction
	b.mu.Unlock()

	played = clampFraction(st.CurrentTime / st.Duration)
	if dragging {
		played = frac
	}

	return played, clampFraction(st.Buffered / st.Duration)
}

// Hover records the pointer's proportional offset over the bar.
func (b *ProgressBar) Hover(fraction float64) {
	b.mu.Lock()
	b.hovering = true
	b.hoverFrac = clampFraction(fraction)
	b.mu.Unlock()
}

// ClearHover removes the hover preview when the pointer leaves.
func (b *ProgressBar) ClearHover() {
	b.mu.Lock()
	b.hovering = false
	b.mu.Unlock()
}

// HoverLabel returns the floating time label for the hovered
// position, and whether it should render at all.
func (b *ProgressBar) HoverLabel() (string, bool) {
	b.mu.Lock()
	hovering, frac := b.hovering, b.hoverFrac
	b.mu.Unlock()

	st := b.ctrl.State()
	if !hovering || st.Duration <= 0 {
		return "", false
	}

	return subtitles.FormatTime(frac * st.Duration), true
}

// BeginScrub starts a drag at the given proportional offset.
func (b *ProgressBar) BeginScrub(fraction float64) {
	b.mu.Lock()
	b.dragging = true
	b.dragFraction = clampFraction(fraction)
	b.mu.Unlock()
}

// MoveScrub updates the drag target. Playback is untouched until
// release.
func (b *ProgressBar) MoveScrub(fraction float64) {
	b.mu.Lock()
	if b.dragging {
		b.dragFraction = clampFraction(fraction)
	}
	b.mu.Unlock()
}

// EndScrub commits the drag target as a seek.
func (b *ProgressBar) EndScrub() {
	b.mu.Lock()
	if !b.dragging {
		b.mu.Unlock()
		return
	}
	b.dragging = false
	frac := b.dragFraction
	b.mu.Unlock()

	st := b.ctrl.State()
	if st.Duration > 0 {
		b.ctrl.Seek(frac * st.Duration)
	}
}

// VolumeSlider models the hover-revealed volume control.
type VolumeSlider struct {
	ctrl *playback.Controller

	mu      sync.Mutex
	hovered bool
}

func newVolumeSlider(ctrl *playback.Controller) *VolumeSlider {
	return &VolumeSlider{ctrl: ctrl}
}

// SetHovered reveals or hides the slider.
func (v *VolumeSlider) SetHovered(hovered bool) {
	v.mu.Lock()
	v.hovered = hovered
	v.mu.Unlock()
}

// Revealed reports whether the slider should render.
func (v *VolumeSlider) Revealed() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hovered
}

// Fraction returns the slider position; a muted player reads as
// zero regardless of the stored volume level.
func (v *VolumeSlider) Fraction() float64 {
	st := v.ctrl.State()
	if st.IsMuted {
		return 0
	}
	return st.Volume
}

// SetFraction commits a drag position as the new volume.
func (v *VolumeSlider) SetFraction(fraction float64) {
	v.ctrl.SetVolume(clampFraction(fraction))
}
