package controls

import (
	"sync"
	"time"
)

// DefaultHideDelay is the inactivity window before the control
// overlay hides during playback.
const DefaultHideDelay = 3 * time.Second

// VisibilityModel drives the show/hide state of the on-screen control
// overlay. Controls stay visible while paused; while playing they
// hide after HideDelay of pointer inactivity.
type VisibilityModel struct {
	// HideDelay overrides DefaultHideDelay when set. Tests shrink it.
	HideDelay time.Duration

	mu         sync.Mutex
	visible    bool
	playing    bool
	timer      *time.Timer
	onChange   func(bool)
	togglePlay func()
}

// NewVisibilityModel returns a model with controls initially visible.
// togglePlay is invoked by Click when the controls are already shown.
func NewVisibilityModel(togglePlay func()) *VisibilityModel {
	return &VisibilityModel{
		visible:    true,
		togglePlay: togglePlay,
	}
}

// OnChange registers a callback invoked on every visibility flip,
// outside the model lock.
func (v *VisibilityModel) OnChange(fn func(visible bool)) {
	v.mu.Lock()
	v.onChange = fn
	v.mu.Unlock()
}

// Visible reports whether the overlay is currently shown.
func (v *VisibilityModel) Visible() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visible
}

func (v *VisibilityModel) hideDelay() time.Duration {
	if v.HideDelay > 0 {
		return v.HideDelay
	}
	return DefaultHideDelay
}

// showTemporarily must be called with the lock held. It reveals the
// overlay and restarts the inactivity timer. The timer only hides
// when playback is still running at expiry.
func (v *VisibilityModel) showTemporarily() (changed bool) {
	changed = !v.visible
	v.visible = true

	if v.timer != nil {
		v.timer.Stop()
	}
	v.timer = time.AfterFunc(v.hideDelay(), v.hideIfPlaying)

	return changed
}

func (v *VisibilityModel) hideIfPlaying() {
	v.mu.Lock()
	if !v.playing || !v.visible {
		v.mu.Unlock()
		return
	}
	v.visible = false
	fn := v.onChange
	v.mu.Unlock()

	if fn != nil {
		fn(false)
	}
}

// SetPlaying tracks playback state. Starting playback arms the
// inactivity timer; pausing pins the overlay visible and suspends it.
func (v *VisibilityModel) SetPlaying(playing bool) {
	v.mu.Lock()
	v.playing = playing

	var changed bool
	if playing {
		changed = v.showTemporarily()
	} else {
		changed = !v.visible
		v.visible = true
		if v.timer != nil {
			v.timer.Stop()
			v.timer = nil
		}
	}
	fn := v.onChange
	v.mu.Unlock()

	if changed && fn != nil {
		fn(true)
	}
}

// PointerActivity reveals the overlay and restarts the inactivity
// timer. Called on any pointer movement over the player surface.
func (v *VisibilityModel) PointerActivity() {
	v.mu.Lock()
	changed := v.showTemporarily()
	fn := v.onChange
	v.mu.Unlock()

	if changed && fn != nil {
		fn(true)
	}
}

// Click applies the dual-purpose click policy: a click while the
// overlay is hidden only reveals it, a click while it is visible
// toggles playback.
func (v *VisibilityModel) Click() {
	v.mu.Lock()
	if !v.visible {
		changed := v.showTemporarily()
		fn := v.onChange
		v.mu.Unlock()

		if changed && fn != nil {
			fn(true)
		}
		return
	}
	toggle := v.togglePlay
	v.mu.Unlock()

	if toggle != nil {
		toggle()
	}
}

// Close stops the inactivity timer. The model must not be reused
// afterwards.
func (v *VisibilityModel) Close() {
	v.mu.Lock()
	if v.timer != nil {
		v.timer.Stop()
		v.timer = nil
	}
	v.mu.Unlock()
}
