package playback

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeElement struct {
	playCalls  int
	pauseCalls int
	seeks      []float64
	volumes    []float64
	muted      []bool
	rates      []float64
}

func (f *fakeElement) Play() error                    { f.playCalls++; return nil }
func (f *fakeElement) Pause() error                   { f.pauseCalls++; return nil }
func (f *fakeElement) SetCurrentTime(seconds float64) { f.seeks = append(f.seeks, seconds) }
func (f *fakeElement) SetVolume(level float64)        { f.volumes = append(f.volumes, level) }
func (f *fakeElement) SetMuted(muted bool)            { f.muted = append(f.muted, muted) }
func (f *fakeElement) SetRate(rate float64)           { f.rates = append(f.rates, rate) }

type fakeFullscreen struct {
	enterErr error
	exitErr  error
	enters   int
	exits    int
}

func (f *fakeFullscreen) Enter() error { f.enters++; return f.enterErr }
func (f *fakeFullscreen) Exit() error  { f.exits++; return f.exitErr }

type fakePiP struct {
	active   bool
	enterErr error
	enters   int
	exits    int
}

func (f *fakePiP) Enter() error { f.enters++; return f.enterErr }
func (f *fakePiP) Exit() error  { f.exits++; return nil }
func (f *fakePiP) Active() bool { return f.active }

type fakeInput struct {
	focused bool
}

func (f *fakeInput) TextInputFocused() bool { return f.focused }

func newTestController() (*Controller, *fakeElement) {
	el := &fakeElement{}
	c := NewController(el)
	c.HandleLoadedMetadata(100)
	return c, el
}

func TestSeekClamps(t *testing.T) {
	tt := []struct {
		name string
		seek float64
		want float64
	}{
		{"negative clamps to zero", -5, 0},
		{"past duration clamps to duration", 200, 100},
		{"in range passes through", 42, 42},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			c, el := newTestController()
			c.Seek(tc.seek)

			assert.Equal(t, tc.want, c.State().CurrentTime)
			require.Len(t, el.seeks, 1)
			assert.Equal(t, tc.want, el.seeks[0])
		})
	}
}

func TestSkipForwardClampsToDuration(t *testing.T) {
	c, _ := newTestController()
	c.HandleTimeUpdate(95)
	c.SkipForward()
	assert.Equal(t, 100.0, c.State().CurrentTime)
}

func TestSkipBackwardClampsToZero(t *testing.T) {
	c, _ := newTestController()
	c.HandleTimeUpdate(4)
	c.SkipBackward()
	assert.Equal(t, 0.0, c.State().CurrentTime)
}

func TestSetVolumeMuteCoupling(t *testing.T) {
	c, el := newTestController()

	c.SetVolume(0)
	assert.True(t, c.State().IsMuted)

	c.SetVolume(0.5)
	st := c.State()
	assert.False(t, st.IsMuted)
	assert.Equal(t, 0.5, st.Volume)

	assert.Equal(t, []bool{true, false}, el.muted)
}

func TestSetVolumeClampsRange(t *testing.T) {
	c, _ := newTestController()

	c.SetVolume(1.5)
	assert.Equal(t, 1.0, c.State().Volume)

	c.SetVolume(-0.1)
	st := c.State()
	assert.Equal(t, 0.0, st.Volume)
	assert.True(t, st.IsMuted)
}

func TestToggleMuteKeepsVolume(t *testing.T) {
	c, _ := newTestController()
	c.SetVolume(0.7)

	c.ToggleMute()
	st := c.State()
	assert.True(t, st.IsMuted)
	assert.Equal(t, 0.7, st.Volume)

	c.ToggleMute()
	assert.False(t, c.State().IsMuted)
}

func TestTogglePlayRequestsElement(t *testing.T) {
	c, el := newTestController()

	c.TogglePlay()
	assert.Equal(t, 1, el.playCalls)
	// The flag only flips on the element's own event.
	assert.False(t, c.State().IsPlaying)

	c.HandlePlay()
	assert.True(t, c.State().IsPlaying)

	c.TogglePlay()
	assert.Equal(t, 1, el.pauseCalls)

	c.HandlePause()
	assert.False(t, c.State().IsPlaying)
}

func TestSetPlaybackSpeedAppliedImmediately(t *testing.T) {
	c, el := newTestController()

	c.SetPlaybackSpeed(1.5)
	assert.Equal(t, 1.5, c.State().PlaybackSpeed)
	assert.Equal(t, []float64{1.5}, el.rates)

	c.SetPlaybackSpeed(0)
	assert.Equal(t, 1.5, c.State().PlaybackSpeed)
}

func TestToggleFullscreen(t *testing.T) {
	c, _ := newTestController()
	fs := &fakeFullscreen{}
	c.Fullscreen = fs

	c.ToggleFullscreen()
	assert.True(t, c.State().IsFullscreen)
	assert.Equal(t, 1, fs.enters)

	c.ToggleFullscreen()
	assert.False(t, c.State().IsFullscreen)
	assert.Equal(t, 1, fs.exits)
}

func TestToggleFullscreenFailureKeepsState(t *testing.T) {
	c, _ := newTestController()
	c.Fullscreen = &fakeFullscreen{enterErr: errors.New("denied")}

	c.ToggleFullscreen()
	assert.False(t, c.State().IsFullscreen)
}

func TestTogglePictureInPictureFailureIsSwallowed(t *testing.T) {
	c, _ := newTestController()
	pip := &fakePiP{enterErr: errors.New("denied")}
	c.PiP = pip

	c.TogglePictureInPicture()
	assert.Equal(t, 1, pip.enters)

	pip.active = true
	c.TogglePictureInPicture()
	assert.Equal(t, 1, pip.exits)
}

func TestHandleKeyRouting(t *testing.T) {
	c, el := newTestController()
	c.HandleTimeUpdate(50)

	c.HandleKey(KeySpace)
	assert.Equal(t, 1, el.playCalls)

	c.HandleKey(KeyLeft)
	assert.Equal(t, 40.0, c.State().CurrentTime)

	c.HandleKey(KeyRight)
	assert.Equal(t, 50.0, c.State().CurrentTime)

	c.HandleKey(KeyMute)
	assert.True(t, c.State().IsMuted)
}

func TestHandleKeyIgnoredWhileTextInputFocused(t *testing.T) {
	c, el := newTestController()
	c.Input = &fakeInput{focused: true}

	c.HandleKey(KeySpace)
	c.HandleKey(KeyMute)

	assert.Zero(t, el.playCalls)
	assert.False(t, c.State().IsMuted)
}

func TestSetElementResetsDerivedState(t *testing.T) {
	c, _ := newTestController()
	c.HandlePlay()
	c.HandleTimeUpdate(42)
	c.HandleProgress(60)
	c.SetVolume(0.3)
	c.SetPlaybackSpeed(2)

	next := &fakeElement{}
	c.SetElement(next)

	st := c.State()
	assert.False(t, st.IsPlaying)
	assert.Zero(t, st.CurrentTime)
	assert.Zero(t, st.Duration)
	assert.Zero(t, st.Buffered)
	// User preferences survive the source change.
	assert.Equal(t, 0.3, st.Volume)
	assert.Equal(t, 2.0, st.PlaybackSpeed)
}

func TestHandleTimeUpdateClampsToDuration(t *testing.T) {
	c, _ := newTestController()
	c.HandleTimeUpdate(500)
	assert.Equal(t, 100.0, c.State().CurrentTime)
}

func TestOnChangeNotifies(t *testing.T) {
	c, _ := newTestController()

	var got []State
	c.OnChange(func(s State) { got = append(got, s) })

	c.Seek(10)
	c.HandlePlay()

	require.Len(t, got, 2)
	assert.Equal(t, 10.0, got[0].CurrentTime)
	assert.True(t, got[1].IsPlaying)
}
