package player

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"playdeck.app/playdeck/internal/castbridge"
	"playdeck.app/playdeck/internal/controls"
	"playdeck.app/playdeck/internal/discovery"
	"playdeck.app/playdeck/internal/playback"
	"playdeck.app/playdeck/internal/subtitles"
)

// MediaSource describes one playback session. Changing the source
// resets all derived playback state and re-runs track discovery.
type MediaSource struct {
	URL      string
	Poster   string
	AutoPlay bool
}

// Options is the public construction surface, mirroring the
// component props of the embedding layer.
type Options struct {
	Src string
	// SubtitleTracks preloads the subtitle menu and skips discovery
	// when non-empty.
	SubtitleTracks []discovery.Track
	Poster         string
	AutoPlay       bool
}

// TrackSource is the subtitle-service capability the player needs:
// discovering tracks for a source and fetching one track's cues.
// *discovery.Discoverer is the production implementation.
type TrackSource interface {
	Discover(ctx context.Context, contentID string) []discovery.Track
	LoadTrack(ctx context.Context, track discovery.Track) ([]subtitles.Cue, error)
}

// Deps are the injected collaborators. Nil fields disable the
// matching affordance instead of failing.
type Deps struct {
	Element    playback.Element
	Discoverer TrackSource
	Cast       *castbridge.Bridge
	Fullscreen playback.FullscreenController
	PiP        playback.PictureInPictureController
	Input      playback.KeyInputSource
	LogOutput  io.Writer
}

// Player is the composition root tying playback, controls
// visibility, subtitle discovery/selection and casting into one
// renderable surface.
type Player struct {
	Controller *playback.Controller
	Visibility *controls.VisibilityModel

	progress     *ProgressBar
	volume       *VolumeSlider
	settingsMenu *SettingsMenu
	subtitleMenu *SubtitleMenu

	logOutput   io.Writer
	logger      zerolog.Logger
	initLogOnce sync.Once

	discoverer TrackSource
	cast       *castbridge.Bridge

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	// generation numbers key async results against the state that
	// triggered them; stale responses are discarded, never merged.
	sourceGen    uint64
	selectionGen uint64

	source        MediaSource
	settings      Settings
	tracks        []discovery.Track
	tracksPinned  bool
	selectedTrack string
	cues          []subtitles.Cue
	loadingTracks bool
}

// New builds a player for the given options and collaborators.
func New(opts Options, deps Deps) *Player {
	ctx, cancel := context.WithCancel(context.Background())

	p := &Player{
		logOutput:  deps.LogOutput,
		discoverer: deps.Discoverer,
		cast:       deps.Cast,
		ctx:        ctx,
		cancel:     cancel,
		settings:   DefaultSettings(),
	}

	p.Controller = playback.NewController(deps.Element)
	p.Controller.Fullscreen = deps.Fullscreen
	p.Controller.PiP = deps.PiP
	p.Controller.Input = deps.Input
	p.Controller.LogOutput = deps.LogOutput

	p.progress = newProgressBar(p.Controller)
	p.volume = newVolumeSlider(p.Controller)
	p.settingsMenu = newSettingsMenu(p)
	p.subtitleMenu = newSubtitleMenu(p)

	p.Visibility = controls.NewVisibilityModel(p.Controller.TogglePlay)
	p.Controller.OnChange(func(s playback.State) {
		p.Visibility.SetPlaying(s.IsPlaying)
	})

	if p.cast != nil {
		p.cast.Initialize()
	}

	if len(opts.SubtitleTracks) > 0 {
		p.tracks = opts.SubtitleTracks
		p.tracksPinned = true
	}

	p.SetSource(MediaSource{URL: opts.Src, Poster: opts.Poster, AutoPlay: opts.AutoPlay}, deps.Element)

	return p
}

// Log returns the zerolog logger, initializing it lazily if a log output is set.
func (p *Player) Log() *zerolog.Logger {
	if p.logOutput != nil {
		p.initLogOnce.Do(func() {
			p.logger = zerolog.New(p.logOutput).With().Timestamp().Logger()
		})
	}
	return &p.logger
}

// SetSource switches to a new media source. Derived playback state
// resets, the active subtitle selection is dropped and discovery
// re-runs. Results from in-flight work for the previous source are
// discarded when they eventually land.
func (p *Player) SetSource(src MediaSource, el playback.Element) {
	p.mu.Lock()
	p.sourceGen++
	p.selectionGen++
	gen := p.sourceGen
	p.source = src
	p.selectedTrack = ""
	p.cues = nil
	if !p.tracksPinned {
		p.tracks = nil
	}
	pinned := p.tracksPinned
	p.mu.Unlock()

	p.Controller.SetElement(el)

	if pinned || p.discoverer == nil || src.URL == "" {
		return
	}

	p.mu.Lock()
	p.loadingTracks = true
	p.mu.Unlock()

	go p.runDiscovery(gen, src.URL)
}

func (p *Player) runDiscovery(gen uint64, mediaURL string) {
	contentID := discovery.ContentID(mediaURL)
	tracks := p.discoverer.Discover(p.ctx, contentID)

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.sourceGen {
		p.Log().Debug().Str("Method", "runDiscovery").Str("ContentID", contentID).Msg("stale discovery pass discarded")
		return
	}

	p.tracks = tracks
	p.loadingTracks = false
}

// Source returns the current media source.
func (p *Player) Source() MediaSource {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.source
}

// Tracks returns the subtitle tracks known for the current source.
func (p *Player) Tracks() []discovery.Track {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracks
}

// LoadingTracks reports whether a discovery pass is still running.
func (p *Player) LoadingTracks() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loadingTracks
}

// SelectedTrack returns the id of the active subtitle track, empty
// when subtitles are off.
func (p *Player) SelectedTrack() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selectedTrack
}

// SelectTrack activates a subtitle track by id and fetches its cues
// asynchronously. An empty id turns subtitles off. A fetch that
// resolves after the selection (or source) has moved on is discarded.
func (p *Player) SelectTrack(id string) {
	p.mu.Lock()
	p.selectionGen++
	gen := p.selectionGen
	p.selectedTrack = id
	p.cues = nil

	var track *discovery.Track
	for i := range p.tracks {
		if p.tracks[i].ID == id {
			track = &p.tracks[i]
			break
		}
	}
	p.mu.Unlock()

	if id == "" || track == nil || p.discoverer == nil {
		return
	}

	go p.runTrackLoad(gen, *track)
}

func (p *Player) runTrackLoad(gen uint64, track discovery.Track) {
	cues, err := p.discoverer.LoadTrack(p.ctx, track)
	if err != nil {
		p.Log().Error().Str("Method", "runTrackLoad").Str("Track", track.ID).Err(err).Msg("subtitle fetch failed")
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.selectionGen {
		p.Log().Debug().Str("Method", "runTrackLoad").Str("Track", track.ID).Msg("stale subtitle fetch discarded")
		return
	}

	p.cues = cues
}

// Cues returns the cue sequence of the active track.
func (p *Player) Cues() []subtitles.Cue {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cues
}

// Settings returns a copy of the current player settings.
func (p *Player) Settings() Settings {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

// UpdateSettings applies fn to the settings under the player lock.
// Playback speed changes propagate to the element immediately.
func (p *Player) UpdateSettings(fn func(*Settings)) {
	p.mu.Lock()
	prevSpeed := p.settings.PlaybackSpeed
	fn(&p.settings)
	newSpeed := p.settings.PlaybackSpeed
	p.mu.Unlock()

	if newSpeed != prevSpeed {
		p.Controller.SetPlaybackSpeed(newSpeed)
	}
}

// Progress returns the scrubbable progress bar model.
func (p *Player) Progress() *ProgressBar {
	return p.progress
}

// Volume returns the hover-revealed volume slider model.
func (p *Player) Volume() *VolumeSlider {
	return p.volume
}

// SettingsMenu returns the nested settings menu model.
func (p *Player) SettingsMenu() *SettingsMenu {
	return p.settingsMenu
}

// SubtitleMenu returns the subtitle track menu model.
func (p *Player) SubtitleMenu() *SubtitleMenu {
	return p.subtitleMenu
}

// CastAvailable reports whether the cast affordance should render.
func (p *Player) CastAvailable() bool {
	return p.cast != nil && p.cast.IsAvailable()
}

// Casting reports whether a cast session is live.
func (p *Player) Casting() bool {
	return p.cast != nil && p.cast.IsConnected()
}

// ToggleCast starts or stops casting the current source.
func (p *Player) ToggleCast() {
	if p.cast == nil {
		return
	}

	if p.cast.IsConnected() {
		p.cast.StopCasting()
		return
	}

	src := p.Source()
	p.cast.StartCasting(src.URL, "Video Player")
}

// Close releases timers and cancels in-flight work. The player must
// not be reused afterwards.
func (p *Player) Close() {
	p.cancel()
	p.Visibility.Close()
}
