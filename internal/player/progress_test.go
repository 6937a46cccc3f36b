package player

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"playdeck.app/playdeck/internal/playback"
)

func newProgressFixture() (*ProgressBar, *playback.Controller) {
	ctrl := playback.NewController(nullElement{})
	ctrl.HandleLoadedMetadata(200)
	return newProgressBar(ctrl), ctrl
}

func TestFractions(t *testing.T) {
	bar, ctrl := newProgressFixture()

	ctrl.HandleTimeUpdate(50)
	ctrl.HandleProgress(100)

	played, buffered := bar.Fractions()
	assert.Equal(t, 0.25, played)
	assert.Equal(t, 0.5, buffered)
}

func TestFractionsZeroDuration(t *testing.T) {
	ctrl := playback.NewController(nullElement{})
	bar := newProgressBar(ctrl)

	played, buffered := bar.Fractions()
	assert.Zero(t, played)
	assert.Zero(t, buffered)
}

func TestHoverLabel(t *testing.T) {
	bar, _ := newProgressFixture()

	_, ok := bar.HoverLabel()
	assert.False(t, ok)

	bar.Hover(0.5)
	label, ok := bar.HoverLabel()
	assert.True(t, ok)
	assert.Equal(t, "1:40", label)

	bar.ClearHover()
	_, ok = bar.HoverLabel()
	assert.False(t, ok)
}

func TestScrubPreviewsThenCommits(t *testing.T) {
	bar, ctrl := newProgressFixture()
	ctrl.HandleTimeUpdate(20)

	bar.BeginScrub(0.5)
	bar.MoveScrub(0.75)

	// Dragging previews the target without seeking.
	played, _ := bar.Fractions()
	assert.Equal(t, 0.75, played)
	assert.Equal(t, 20.0, ctrl.State().CurrentTime)

	bar.EndScrub()
	assert.Equal(t, 150.0, ctrl.State().CurrentTime)
}

func TestScrubClampsFraction(t *testing.T) {
	bar, ctrl := newProgressFixture()

	bar.BeginScrub(1.8)
	bar.EndScrub()
	assert.Equal(t, 200.0, ctrl.State().CurrentTime)

	bar.BeginScrub(-0.3)
	bar.EndScrub()
	assert.Equal(t, 0.0, ctrl.State().CurrentTime)
}

func TestEndScrubWithoutBeginIsNoOp(t *testing.T) {
	bar, ctrl := newProgressFixture()
	ctrl.HandleTimeUpdate(20)

	bar.EndScrub()
	assert.Equal(t, 20.0, ctrl.State().CurrentTime)
}

func TestVolumeSlider(t *testing.T) {
	ctrl := playback.NewController(nullElement{})
	slider := newVolumeSlider(ctrl)

	assert.False(t, slider.Revealed())
	slider.SetHovered(true)
	assert.True(t, slider.Revealed())

	slider.SetFraction(0.6)
	assert.Equal(t, 0.6, slider.Fraction())

	ctrl.ToggleMute()
	assert.Zero(t, slider.Fraction())

	ctrl.ToggleMute()
	assert.Equal(t, 0.6, slider.Fraction())
}
