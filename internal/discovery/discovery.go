package discovery

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sync"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"playdeck.app/playdeck/internal/subtitles"
)

// DefaultServiceURL is the public subtitle service endpoint.
const DefaultServiceURL = "https://sub.wyzie.ru"

// Track is one discovered subtitle track. Tracks are immutable once
// returned and uniquely identified by ID within a discovery pass.
type Track struct {
	ID       string
	Language string
	Country  string
	URL      string
}

type language struct {
	id      string
	name    string
	country string
}

// The fixed probe set. The service indexes subtitles by numeric
// language id, so discovery walks this table and keeps whatever
// answers.
var supportedLanguages = []language{
	{"1", "English", "US"},
	{"2", "Spanish", "ES"},
	{"3", "French", "FR"},
	{"4", "German", "DE"},
	{"5", "Italian", "IT"},
	{"6", "Portuguese", "PT"},
	{"7", "Russian", "RU"},
	{"8", "Japanese", "JP"},
	{"9", "Korean", "KR"},
	{"10", "Chinese", "CN"},
}

var nonAlphanumRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ContentID derives the subtitle-service lookup key from a media URL.
// It is a stable hash substitute, not a canonical id: equivalent URLs
// with different text produce different keys.
func ContentID(mediaURL string) string {
	id := base64.StdEncoding.EncodeToString([]byte(mediaURL))
	id = nonAlphanumRegex.ReplaceAllString(id, "")

	if len(id) > 16 {
		id = id[:16]
	}

	return id
}

// Discoverer probes the subtitle service for available tracks and
// caches results for the lifetime of the session.
type Discoverer struct {
	ServiceURL string
	LogOutput  io.Writer

	client      *http.Client
	limiter     *rate.Limiter
	logger      zerolog.Logger
	initLogOnce sync.Once

	mu    sync.Mutex
	cache map[string][]Track
}

// NewDiscoverer returns a Discoverer against the given service URL.
// An empty serviceURL selects the public endpoint.
func NewDiscoverer(serviceURL string) *Discoverer {
	if serviceURL == "" {
		serviceURL = DefaultServiceURL
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.Logger = nil

	return &Discoverer{
		ServiceURL: serviceURL,
		client:     retryClient.StandardClient(),
		limiter:    rate.NewLimiter(rate.Limit(20), 5),
		cache:      make(map[string][]Track),
	}
}

// Log returns the zerolog logger, initializing it lazily if LogOutput is set.
func (d *Discoverer) Log() *zerolog.Logger {
	if d.LogOutput != nil {
		d.initLogOnce.Do(func() {
			d.logger = zerolog.New(d.LogOutput).With().Timestamp().Logger()
		})
	}
	return &d.logger
}

// TrackURL builds the per-track subtitle file URL.
func (d *Discoverer) TrackURL(contentID, languageID string) string {
	return fmt.Sprintf("%s/c/%s/id/%s?format=srt&encoding=UTF-8", d.ServiceURL, contentID, languageID)
}

// Discover probes every supported language for the given content id
// and returns the tracks that answered. Individual probe failures are
// logged and swallowed so one missing language never fails the pass.
// Completion order of the probes carries no meaning; the returned
// slice follows the language table order.
func (d *Discoverer) Discover(ctx context.Context, contentID string) []Track {
	d.mu.Lock()
	if cached, ok := d.cache[contentID]; ok {
		d.mu.Unlock()
		return cached
	}
	d.mu.Unlock()

	results := make([]*Track, len(supportedLanguages))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for i, lang := range supportedLanguages {
		g.Go(func() error {
			if err := d.limiter.Wait(gctx); err != nil {
				return nil
			}

			url := d.TrackURL(contentID, lang.id)
			ok, err := d.probe(gctx, url)
			if err != nil {
				d.Log().Debug().Str("Method", "Discover").Str("Language", lang.name).Err(err).Msg("probe failed")
				return nil
			}

			if ok {
				results[i] = &Track{
					ID:       lang.id,
					Language: lang.name,
					Country:  lang.country,
					URL:      url,
				}
			}

			return nil
		})
	}

	// Probe errors are swallowed above, the group only propagates
	// context cancellation.
	_ = g.Wait()

	tracks := make([]Track, 0, len(supportedLanguages))
	for _, t := range results {
		if t != nil {
			tracks = append(tracks, *t)
		}
	}

	if ctx.Err() == nil {
		d.mu.Lock()
		d.cache[contentID] = tracks
		d.mu.Unlock()
	}

	return tracks
}

func (d *Discoverer) probe(ctx context.Context, url string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("probe request error: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("probe error: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300, nil
}

// LoadTrack fetches a track's SRT payload and parses it into cues.
// Payloads in legacy charsets are transcoded to UTF-8 first.
func (d *Discoverer) LoadTrack(ctx context.Context, track Track) ([]subtitles.Cue, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, track.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("LoadTrack request error: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("LoadTrack fetch error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LoadTrack unexpected status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("LoadTrack read error: %w", err)
	}

	text, err := subtitles.DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("LoadTrack decode error: %w", err)
	}

	return subtitles.ParseSRT(text), nil
}
