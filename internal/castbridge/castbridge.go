package castbridge

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Sender is the capability surface of an external casting backend.
// The production implementation wraps go-chromecast; tests substitute
// a fake.
type Sender interface {
	// Available reports whether a casting target can be reached at
	// all, e.g. a device was found on the local network.
	Available() bool
	// Initialize prepares the backend and registers the session
	// state listener. Called at most once per Sender.
	Initialize(onSessionState func(connected bool)) error
	// HasSession reports whether a cast session is currently live.
	HasSession() bool
	// LoadMedia dispatches a media load request to the live session.
	LoadMedia(mediaURL, title string) error
	// EndSession tears down the live session.
	EndSession() error
}

// Bridge wraps a Sender with the availability/session state the
// player surface binds to. State only flips through sender callbacks.
type Bridge struct {
	LogOutput io.Writer

	sender      Sender
	logger      zerolog.Logger
	initLogOnce sync.Once
	initOnce    sync.Once

	mu          sync.Mutex
	isAvailable bool
	isConnected bool
}

// NewBridge returns an uninitialized bridge around the given sender.
func NewBridge(sender Sender) *Bridge {
	return &Bridge{sender: sender}
}

var (
	defaultBridge     *Bridge
	defaultBridgeOnce sync.Once
)

// Default returns the process-wide bridge backed by the Chromecast
// sender, created lazily on first use. Players receive the bridge by
// injection, so tests never need to touch this.
func Default() *Bridge {
	defaultBridgeOnce.Do(func() {
		defaultBridge = NewBridge(NewChromecastSender(""))
	})
	return defaultBridge
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (b *Bridge) Log() *zerolog.Logger {
	if b.LogOutput != nil {
		b.initLogOnce.Do(func() {
			b.logger = zerolog.New(b.LogOutput).With().Timestamp().Logger()
		})
	}
	return &b.logger
}

// Initialize detects availability and registers the session listener.
// Safe to call repeatedly; only the first call does work. Failures
// leave the bridge unavailable and are not propagated: casting
// degrades to a missing button, never a broken player.
func (b *Bridge) Initialize() {
	b.initOnce.Do(func() {
		if b.sender == nil || !b.sender.Available() {
			b.Log().Debug().Str("Method", "Initialize").Msg("no casting backend available")
			return
		}

		err := b.sender.Initialize(func(connected bool) {
			b.mu.Lock()
			b.isConnected = connected
			b.mu.Unlock()
		})
		if err != nil {
			b.Log().Error().Str("Method", "Initialize").Err(err).Msg("sender init failed")
			return
		}

		b.mu.Lock()
		b.isAvailable = true
		b.mu.Unlock()
	})
}

// IsAvailable reports whether the cast affordance should be shown.
func (b *Bridge) IsAvailable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isAvailable
}

// IsConnected reports whether a cast session is live.
func (b *Bridge) IsConnected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.isConnected
}

// StartCasting sends the current source to the cast session. No-op
// when unavailable, and silently does nothing when no session exists.
func (b *Bridge) StartCasting(mediaURL, title string) {
	if !b.IsAvailable() {
		return
	}

	if !b.sender.HasSession() {
		b.Log().Debug().Str("Method", "StartCasting").Msg("no active session, nothing to do")
		return
	}

	if err := b.sender.LoadMedia(mediaURL, title); err != nil {
		b.Log().Error().Str("Method", "StartCasting").Str("URL", mediaURL).Err(err).Msg("load failed")
	}
}

// StopCasting ends the current session if one exists.
func (b *Bridge) StopCasting() {
	if !b.IsAvailable() || !b.sender.HasSession() {
		return
	}

	if err := b.sender.EndSession(); err != nil {
		b.Log().Error().Str("Method", "StopCasting").Err(err).Msg("end session failed")
	}
}
