package playback

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// SkipStep is how far SkipBackward and SkipForward jump, in seconds.
const SkipStep = 10.0

// Element is the native media surface the controller drives. It only
// accepts commands; playback progress comes back through the
// controller's Handle* event methods, mirroring how a media element
// reports its own state.
type Element interface {
	Play() error
	Pause() error
	SetCurrentTime(seconds float64)
	SetVolume(level float64)
	SetMuted(muted bool)
	SetRate(rate float64)
}

// FullscreenController is the host capability for fullscreen toggling
// on the player's container.
type FullscreenController interface {
	Enter() error
	Exit() error
}

// PictureInPictureController is the host capability for
// picture-in-picture on the media element.
type PictureInPictureController interface {
	Enter() error
	Exit() error
	Active() bool
}

// KeyInputSource reports keyboard focus context. Shortcuts are
// suppressed while a text input owns focus.
type KeyInputSource interface {
	TextInputFocused() bool
}

// Key identifies one of the player shortcuts.
type Key int

const (
	KeySpace Key = iota
	KeyLeft
	KeyRight
	KeyFullscreen
	KeyMute
)

// State is the derived playback state. CurrentTime, Duration and
// Buffered are written only by element events and Seek.
type State struct {
	IsPlaying     bool
	CurrentTime   float64
	Duration      float64
	Buffered      float64
	Volume        float64
	IsMuted       bool
	PlaybackSpeed float64
	IsFullscreen  bool
}

// Controller owns one media element and its derived playback state.
type Controller struct {
	Fullscreen FullscreenController
	PiP        PictureInPictureController
	Input      KeyInputSource
	LogOutput  io.Writer

	logger      zerolog.Logger
	initLogOnce sync.Once

	mu       sync.Mutex
	el       Element
	state    State
	onChange func(State)
}

// NewController returns a Controller around the given element. The
// element may be swapped later with SetElement on source changes.
func NewController(el Element) *Controller {
	return &Controller{
		el: el,
		state: State{
			Volume:        1,
			PlaybackSpeed: 1,
		},
	}
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (c *Controller) Log() *zerolog.Logger {
	if c.LogOutput != nil {
		c.initLogOnce.Do(func() {
			c.logger = zerolog.New(c.LogOutput).With().Timestamp().Logger()
		})
	}
	return &c.logger
}

// OnChange registers a callback invoked after every state mutation.
// The callback runs outside the controller lock.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// State returns a copy of the current playback state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// SetElement swaps the media element on a source change and resets
// all derived state back to zero/paused. Volume, mute, speed and
// fullscreen are user preferences and survive the swap.
func (c *Controller) SetElement(el Element) {
	c.mu.Lock()
	c.el = el
	c.state.IsPlaying = false
	c.state.CurrentTime = 0
	c.state.Duration = 0
	c.state.Buffered = 0
	s := c.state
	c.mu.Unlock()

	c.notify(s)
}

func (c *Controller) notify(s State) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// TogglePlay requests play or pause depending on the current state.
// The IsPlaying flag itself only flips when the element reports the
// matching event back.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	el := c.el
	playing := c.state.IsPlaying
	c.mu.Unlock()

	if el == nil {
		return
	}

	var err error
	if playing {
		err = el.Pause()
	} else {
		err = el.Play()
	}

	if err != nil {
		c.Log().Error().Str("Method", "TogglePlay").Err(err).Msg("element command failed")
	}
}

// Seek moves playback to the given time, clamped to [0, duration].
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	if seconds < 0 {
		seconds = 0
	}
	if c.state.Duration > 0 && seconds > c.state.Duration {
		seconds = c.state.Duration
	}
	c.state.CurrentTime = seconds
	el := c.el
	s := c.state
	c.mu.Unlock()

	if el != nil {
		el.SetCurrentTime(seconds)
	}

	c.notify(s)
}

// SkipBackward jumps back ten seconds, clamped at zero.
func (c *Controller) SkipBackward() {
	c.Seek(c.State().CurrentTime - SkipStep)
}

// SkipForward jumps ahead ten seconds, clamped at the duration.
func (c *Controller) SkipForward() {
	c.Seek(c.State().CurrentTime + SkipStep)
}

// SetVolume sets the volume level in [0,1]. Zero mutes, anything
// above zero unmutes.
func (c *Controller) SetVolume(level float64) {
	if level < 0 {
		level = 0
	}
	if level > 1 {
		level = 1
	}

	c.mu.Lock()
	c.state.Volume = level
	c.state.IsMuted = level == 0
	el := c.el
	s := c.state
	c.mu.Unlock()

	if el != nil {
		el.SetVolume(level)
		el.SetMuted(s.IsMuted)
	}

	c.notify(s)
}

// ToggleMute flips the mute flag without touching the volume level.
func (c *Controller) ToggleMute() {
	c.mu.Lock()
	c.state.IsMuted = !c.state.IsMuted
	el := c.el
	s := c.state
	c.mu.Unlock()

	if el != nil {
		el.SetMuted(s.IsMuted)
	}

	c.notify(s)
}

// SetPlaybackSpeed applies the speed multiplier to the element
// immediately.
func (c *Controller) SetPlaybackSpeed(speed float64) {
	if speed <= 0 {
		return
	}

	c.mu.Lock()
	c.state.PlaybackSpeed = speed
	el := c.el
	s := c.state
	c.mu.Unlock()

	if el != nil {
		el.SetRate(speed)
	}

	c.notify(s)
}

// ToggleFullscreen enters or exits fullscreen on the player
// container. Host rejections are logged, never returned, and the
// flag keeps its prior value on failure.
func (c *Controller) ToggleFullscreen() {
	c.mu.Lock()
	fs := c.Fullscreen
	active := c.state.IsFullscreen
	c.mu.Unlock()

	if fs == nil {
		return
	}

	var err error
	if active {
		err = fs.Exit()
	} else {
		err = fs.Enter()
	}

	if err != nil {
		c.Log().Error().Str("Method", "ToggleFullscreen").Err(err).Msg("host rejected request")
		return
	}

	c.mu.Lock()
	c.state.IsFullscreen = !active
	s := c.state
	c.mu.Unlock()

	c.notify(s)
}

// TogglePictureInPicture enters or exits picture-in-picture, with the
// same swallow-and-log failure policy as fullscreen.
func (c *Controller) TogglePictureInPicture() {
	c.mu.Lock()
	pip := c.PiP
	c.mu.Unlock()

	if pip == nil {
		return
	}

	var err error
	if pip.Active() {
		err = pip.Exit()
	} else {
		err = pip.Enter()
	}

	if err != nil {
		c.Log().Error().Str("Method", "TogglePictureInPicture").Err(err).Msg("host rejected request")
	}
}

// HandleKey routes a keyboard shortcut. Shortcuts are ignored while a
// text input has focus.
func (c *Controller) HandleKey(key Key) {
	if c.Input != nil && c.Input.TextInputFocused() {
		return
	}

	switch key {
	case KeySpace:
		c.TogglePlay()
	case KeyLeft:
		c.SkipBackward()
	case KeyRight:
		c.SkipForward()
	case KeyFullscreen:
		c.ToggleFullscreen()
	case KeyMute:
		c.ToggleMute()
	}
}

// HandlePlay records that the element started playing.
func (c *Controller) HandlePlay() {
	c.mu.Lock()
	c.state.IsPlaying = true
	s := c.state
	c.mu.Unlock()

	c.notify(s)
}

// HandlePause records that the element paused.
func (c *Controller) HandlePause() {
	c.mu.Lock()
	c.state.IsPlaying = false
	s := c.state
	c.mu.Unlock()

	c.notify(s)
}

// HandleTimeUpdate records element playback progress. Values are
// clamped to the known duration.
func (c *Controller) HandleTimeUpdate(seconds float64) {
	c.mu.Lock()
	if seconds < 0 {
		seconds = 0
	}
	if c.state.Duration > 0 && seconds > c.state.Duration {
		seconds = c.state.Duration
	}
	c.state.CurrentTime = seconds
	s := c.state
	c.mu.Unlock()

	c.notify(s)
}

// HandleLoadedMetadata records the media duration once known.
func (c *Controller) HandleLoadedMetadata(duration float64) {
	c.mu.Lock()
	if duration < 0 {
		duration = 0
	}
	c.state.Duration = duration
	s := c.state
	c.mu.Unlock()

	c.notify(s)
}

// HandleProgress records how far ahead the element has buffered.
func (c *Controller) HandleProgress(buffered float64) {
	c.mu.Lock()
	if buffered < 0 {
		buffered = 0
	}
	c.state.Buffered = buffered
	s := c.state
	c.mu.Unlock()

	c.notify(s)
}

// HandleFullscreenChange records host-driven fullscreen transitions,
// e.g. the user pressing escape.
func (c *Controller) HandleFullscreenChange(active bool) {
	c.mu.Lock()
	c.state.IsFullscreen = active
	s := c.state
	c.mu.Unlock()

	c.notify(s)
}
