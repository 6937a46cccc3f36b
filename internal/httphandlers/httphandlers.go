// Package httphandlers exposes a small HTTP remote-control surface
// for a running player: a JSON status endpoint, a command endpoint
// and a passthrough serving the active subtitle track as SRT.
package httphandlers

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/h2non/filetype"

	"playdeck.app/playdeck/internal/discovery"
	"playdeck.app/playdeck/internal/player"
)

// HTTPserver - new http.Server instance.
type HTTPserver struct {
	http *http.Server
	mux  *http.ServeMux
}

// Command is the decoded body of a control request. Value and Track
// are only meaningful for the actions that use them.
type Command struct {
	Action string  `mapstructure:"action"`
	Value  float64 `mapstructure:"value"`
	Track  string  `mapstructure:"track"`
}

type statusResponse struct {
	Source        string            `json:"source"`
	IsPlaying     bool              `json:"is_playing"`
	CurrentTime   float64           `json:"current_time"`
	Duration      float64           `json:"duration"`
	Buffered      float64           `json:"buffered"`
	Volume        float64           `json:"volume"`
	IsMuted       bool              `json:"is_muted"`
	PlaybackSpeed float64           `json:"playback_speed"`
	IsFullscreen  bool              `json:"is_fullscreen"`
	Tracks        []discovery.Track `json:"tracks"`
	SelectedTrack string            `json:"selected_track"`
	LoadingTracks bool              `json:"loading_tracks"`
	CastAvailable bool              `json:"cast_available"`
	Casting       bool              `json:"casting"`
}

// Start binds the listener and serves the control API until Stop is
// called. serverStarted is signalled once the listener is up. A
// non-empty mediaPath is additionally served under /media/ so cast
// devices can fetch local files from us.
func (s *HTTPserver) Start(serverStarted chan<- struct{}, p *player.Player, mediaPath string) error {
	s.mux.HandleFunc("/api/status", s.statusHandler(p))
	s.mux.HandleFunc("/api/command", s.commandHandler(p))
	s.mux.HandleFunc("/subtitles.srt", s.serveSubtitlesHandler(p))

	if mediaPath != "" {
		s.mux.HandleFunc("/media/"+filepath.Base(mediaPath), s.serveMediaHandler(mediaPath))
	}

	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server listen error: %w", err)
	}

	serverStarted <- struct{}{}
	s.http.Serve(ln)
	return nil
}

func (s *HTTPserver) statusHandler(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		st := p.Controller.State()
		resp := statusResponse{
			Source:        p.Source().URL,
			IsPlaying:     st.IsPlaying,
			CurrentTime:   st.CurrentTime,
			Duration:      st.Duration,
			Buffered:      st.Buffered,
			Volume:        st.Volume,
			IsMuted:       st.IsMuted,
			PlaybackSpeed: st.PlaybackSpeed,
			IsFullscreen:  st.IsFullscreen,
			Tracks:        p.Tracks(),
			SelectedTrack: p.SelectedTrack(),
			LoadingTracks: p.LoadingTracks(),
			CastAvailable: p.CastAvailable(),
			Casting:       p.Casting(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}
}

func (s *HTTPserver) commandHandler(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var raw map[string]interface{}
		if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		var cmd Command
		if err := mapstructure.WeakDecode(raw, &cmd); err != nil {
			http.Error(w, "invalid command", http.StatusBadRequest)
			return
		}

		if err := apply(p, cmd); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		fmt.Fprintf(w, "OK\n")
	}
}

func apply(p *player.Player, cmd Command) error {
	switch cmd.Action {
	case "toggle":
		p.Controller.TogglePlay()
	case "seek":
		p.Controller.Seek(cmd.Value)
	case "skipback":
		p.Controller.SkipBackward()
	case "skipforward":
		p.Controller.SkipForward()
	case "volume":
		p.Controller.SetVolume(cmd.Value)
	case "mute":
		p.Controller.ToggleMute()
	case "speed":
		p.UpdateSettings(func(s *player.Settings) {
			s.PlaybackSpeed = cmd.Value
		})
	case "fullscreen":
		p.Controller.ToggleFullscreen()
	case "track":
		p.SelectTrack(cmd.Track)
	case "cast":
		p.ToggleCast()
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}

	return nil
}

func (s *HTTPserver) serveMediaHandler(media string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		filePath, err := os.Open(media)
		if err != nil {
			http.NotFound(w, req)
			return
		}
		defer filePath.Close()

		fileStat, err := filePath.Stat()
		if err != nil {
			http.NotFound(w, req)
			return
		}

		head := make([]byte, 261)
		n, _ := filePath.Read(head)
		if kind, err := filetype.Match(head[:n]); err == nil && kind != filetype.Unknown {
			w.Header().Set("Content-Type", kind.MIME.Value)
		}
		if _, err := filePath.Seek(0, 0); err != nil {
			http.NotFound(w, req)
			return
		}

		http.ServeContent(w, req, filepath.Base(media), fileStat.ModTime(), filePath)
	}
}

func (s *HTTPserver) serveSubtitlesHandler(p *player.Player) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		cues := p.Cues()
		if len(cues) == 0 {
			http.NotFound(w, req)
			return
		}

		w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
		for i, c := range cues {
			fmt.Fprintf(w, "%d\n%s --> %s\n%s\n\n",
				i+1, srtTimestamp(c.Start), srtTimestamp(c.End), c.Text)
		}
	}
}

func srtTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	millis := int(seconds*1000 + 0.5)
	h := millis / 3600000
	m := millis % 3600000 / 60000
	s := millis % 60000 / 1000
	ms := millis % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// Stop closes the server and its listener.
func (s *HTTPserver) Stop() {
	s.http.Close()
}

// NewServer - create a new HTTP server.
func NewServer(a string) *HTTPserver {
	mux := http.NewServeMux()
	srv := HTTPserver{
		http: &http.Server{Addr: a, Handler: mux},
		mux:  mux,
	}

	return &srv
}
