package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"playdeck.app/playdeck/internal/discovery"
	"playdeck.app/playdeck/internal/playback"
	"playdeck.app/playdeck/internal/subtitles"
)

type nullElement struct{}

func (nullElement) Play() error             { return nil }
func (nullElement) Pause() error            { return nil }
func (nullElement) SetCurrentTime(float64)  {}
func (nullElement) SetVolume(float64)       {}
func (nullElement) SetMuted(bool)           {}
func (nullElement) SetRate(float64)         {}

// fakeTrackSource lets tests control when each discovery pass and
// track fetch resolves, to exercise the stale-response policy.
type fakeTrackSource struct {
	mu      sync.Mutex
	tracks  map[string][]discovery.Track
	cues    map[string][]subtitles.Cue
	release map[string]chan struct{}
}

func newFakeTrackSource() *fakeTrackSource {
	return &fakeTrackSource{
		tracks:  make(map[string][]discovery.Track),
		cues:    make(map[string][]subtitles.Cue),
		release: make(map[string]chan struct{}),
	}
}

func (f *fakeTrackSource) hold(key string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.release[key] = ch
	return ch
}

func (f *fakeTrackSource) gate(key string) {
	f.mu.Lock()
	ch := f.release[key]
	f.mu.Unlock()
	if ch != nil {
		<-ch
	}
}

func (f *fakeTrackSource) Discover(ctx context.Context, contentID string) []discovery.Track {
	f.gate(contentID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tracks[contentID]
}

func (f *fakeTrackSource) LoadTrack(ctx context.Context, track discovery.Track) ([]subtitles.Cue, error) {
	f.gate("load:" + track.ID)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cues[track.ID], nil
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func newTestPlayer(t *testing.T, src string, ts TrackSource) *Player {
	t.Helper()
	p := New(Options{Src: src}, Deps{Element: nullElement{}, Discoverer: ts})
	t.Cleanup(p.Close)
	return p
}

func TestDiscoveryPopulatesTracks(t *testing.T) {
	ts := newFakeTrackSource()
	srcA := "https://example.com/a.mp4"
	ts.tracks[discovery.ContentID(srcA)] = []discovery.Track{
		{ID: "1", Language: "English", Country: "US"},
	}

	p := newTestPlayer(t, srcA, ts)

	waitFor(t, func() bool { return len(p.Tracks()) == 1 })
	assert.False(t, p.LoadingTracks())
	assert.Equal(t, "English", p.Tracks()[0].Language)
}

func TestStaleDiscoveryPassIsDiscarded(t *testing.T) {
	ts := newFakeTrackSource()
	srcA := "https://example.com/a.mp4"
	srcB := "https://example.com/b.mp4"
	idA := discovery.ContentID(srcA)
	idB := discovery.ContentID(srcB)

	ts.tracks[idA] = []discovery.Track{{ID: "9", Language: "A-only", Country: "XX"}}
	ts.tracks[idB] = []discovery.Track{{ID: "1", Language: "English", Country: "US"}}

	holdA := ts.hold(idA)

	p := newTestPlayer(t, srcA, ts)

	// Switch to B while A's probes are still in flight.
	p.SetSource(MediaSource{URL: srcB}, nullElement{})
	waitFor(t, func() bool { return len(p.Tracks()) == 1 })

	// Now let A resolve late. Its tracks must not leak into B's list.
	close(holdA)
	time.Sleep(20 * time.Millisecond)

	tracks := p.Tracks()
	require.Len(t, tracks, 1)
	assert.Equal(t, "English", tracks[0].Language)
}

func TestSetSourceResetsPlaybackState(t *testing.T) {
	ts := newFakeTrackSource()
	p := newTestPlayer(t, "https://example.com/a.mp4", ts)

	p.Controller.HandleLoadedMetadata(100)
	p.Controller.HandleTimeUpdate(42)
	p.Controller.HandleProgress(60)
	p.Controller.HandlePlay()

	p.SetSource(MediaSource{URL: "https://example.com/b.mp4"}, nullElement{})

	st := p.Controller.State()
	assert.Zero(t, st.CurrentTime)
	assert.Zero(t, st.Duration)
	assert.Zero(t, st.Buffered)
	assert.False(t, st.IsPlaying)
}

func TestSelectTrackLoadsCues(t *testing.T) {
	ts := newFakeTrackSource()
	src := "https://example.com/a.mp4"
	ts.tracks[discovery.ContentID(src)] = []discovery.Track{{ID: "1", Language: "English"}}
	ts.cues["1"] = []subtitles.Cue{{Start: 0, End: 2, Text: "Hi"}}

	p := newTestPlayer(t, src, ts)
	waitFor(t, func() bool { return len(p.Tracks()) == 1 })

	p.SelectTrack("1")
	waitFor(t, func() bool { return len(p.Cues()) == 1 })
	assert.Equal(t, "1", p.SelectedTrack())
}

func TestStaleTrackFetchIsDiscarded(t *testing.T) {
	ts := newFakeTrackSource()
	src := "https://example.com/a.mp4"
	ts.tracks[discovery.ContentID(src)] = []discovery.Track{
		{ID: "1", Language: "English"},
		{ID: "2", Language: "French"},
	}
	ts.cues["1"] = []subtitles.Cue{{Start: 0, End: 2, Text: "english"}}
	ts.cues["2"] = []subtitles.Cue{{Start: 0, End: 2, Text: "french"}}

	hold1 := ts.hold("load:1")

	p := newTestPlayer(t, src, ts)
	waitFor(t, func() bool { return len(p.Tracks()) == 2 })

	p.SelectTrack("1")
	p.SelectTrack("2")
	waitFor(t, func() bool { return len(p.Cues()) == 1 })

	close(hold1)
	time.Sleep(20 * time.Millisecond)

	cues := p.Cues()
	require.Len(t, cues, 1)
	assert.Equal(t, "french", cues[0].Text)
}

func TestSelectTrackOffClearsCues(t *testing.T) {
	ts := newFakeTrackSource()
	src := "https://example.com/a.mp4"
	ts.tracks[discovery.ContentID(src)] = []discovery.Track{{ID: "1", Language: "English"}}
	ts.cues["1"] = []subtitles.Cue{{Start: 0, End: 2, Text: "Hi"}}

	p := newTestPlayer(t, src, ts)
	waitFor(t, func() bool { return len(p.Tracks()) == 1 })

	p.SelectTrack("1")
	waitFor(t, func() bool { return len(p.Cues()) == 1 })

	p.SelectTrack("")
	assert.Empty(t, p.Cues())
	assert.Empty(t, p.SelectedTrack())
}

func TestPredefinedTracksSkipDiscovery(t *testing.T) {
	ts := newFakeTrackSource()
	preset := []discovery.Track{{ID: "7", Language: "Dutch", Country: "NL"}}

	p := New(Options{Src: "https://example.com/a.mp4", SubtitleTracks: preset}, Deps{
		Element:    nullElement{},
		Discoverer: ts,
	})
	defer p.Close()

	assert.Equal(t, preset, p.Tracks())
	assert.False(t, p.LoadingTracks())
}

func TestUpdateSettingsPropagatesSpeed(t *testing.T) {
	ts := newFakeTrackSource()
	p := newTestPlayer(t, "https://example.com/a.mp4", ts)

	p.UpdateSettings(func(s *Settings) { s.PlaybackSpeed = 1.5 })

	assert.Equal(t, 1.5, p.Settings().PlaybackSpeed)
	assert.Equal(t, 1.5, p.Controller.State().PlaybackSpeed)
}

func TestPlaybackEventsDriveVisibility(t *testing.T) {
	ts := newFakeTrackSource()
	p := newTestPlayer(t, "https://example.com/a.mp4", ts)
	p.Visibility.HideDelay = 20 * time.Millisecond

	p.Controller.HandlePlay()
	waitFor(t, func() bool { return !p.Visibility.Visible() })

	p.Controller.HandlePause()
	assert.True(t, p.Visibility.Visible())
}

var _ playback.Element = nullElement{}
