package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/h2non/filetype"
	"github.com/pkg/errors"

	"playdeck.app/playdeck/internal/castbridge"
	"playdeck.app/playdeck/internal/config"
	"playdeck.app/playdeck/internal/discovery"
	"playdeck.app/playdeck/internal/httphandlers"
	"playdeck.app/playdeck/internal/interactive"
	"playdeck.app/playdeck/internal/iptools"
	"playdeck.app/playdeck/internal/playback"
	"playdeck.app/playdeck/internal/player"
	"playdeck.app/playdeck/internal/subtitles"
)

var (
	version    string
	build      string
	mediaArg   = flag.String("v", "", "Media URL or path to a local video file.")
	subsArg    = flag.String("s", "", "Path to a local SRT subtitles file.")
	listPtr    = flag.Bool("l", false, "List all available Chromecast devices.")
	targetPtr  = flag.String("t", "", "Cast to a specific device address (host or host:port).")
	apiArg     = flag.String("api", "127.0.0.1:1337", "Listen address for the HTTP control API.")
	castPtr    = flag.Bool("cast", false, "Start casting as soon as the player is up.")
	versionPtr = flag.Bool("version", false, "Print version.")
)

func main() {
	flag.Parse()

	exit, err := checkflags()
	check(err)
	if exit {
		os.Exit(0)
	}

	cfg, err := config.Load()
	check(err)

	target := *targetPtr
	if target == "" {
		target = cfg.CastDevice
	}
	bridge := castbridge.NewBridge(castbridge.NewChromecastSender(target))

	apiAddr := *apiArg
	mediaURL := *mediaArg
	mediaPath := ""
	if isLocalPath(mediaURL) {
		absMediaFile, err := filepath.Abs(mediaURL)
		check(err)
		mediaPath = absMediaFile

		// Cast devices fetch local files from us, so the server has
		// to listen on the interface routing to the device.
		if target != "" {
			apiAddr, err = iptools.DeviceListenAddr(target)
			check(err)
		}

		// The String() method of the net/url package will properly
		// escape the path segment.
		mediaFileURLencoded := &url.URL{Path: filepath.Base(absMediaFile)}
		mediaURL = "http://" + apiAddr + "/media/" + mediaFileURLencoded.String()
	}

	var source player.TrackSource
	if *subsArg != "" {
		absSubtitlesFile, err := filepath.Abs(*subsArg)
		check(err)
		source = &fileTrackSource{path: absSubtitlesFile}
	} else {
		source = discovery.NewDiscoverer(cfg.SubtitleService)
	}

	el := newClockElement()
	p := player.New(player.Options{Src: mediaURL, AutoPlay: true}, player.Deps{
		Element:    el,
		Discoverer: source,
		Cast:       bridge,
	})
	el.attach(p.Controller)

	s := httphandlers.NewServer(apiAddr)
	serverStarted := make(chan struct{})

	go func() {
		err := s.Start(serverStarted, p, mediaPath)
		check(err)
	}()
	// Wait for the HTTP server to properly initialize.
	<-serverStarted

	if *castPtr {
		p.ToggleCast()
	}

	p.Controller.TogglePlay()

	scr, err := interactive.InitTcellNewScreen()
	check(err)

	scr.InterInit(p)
}

func check(err error) {
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Encountered error(s): %s\n", err)
		os.Exit(1)
	}
}

// isLocalPath reports whether the -v argument looks like a filesystem
// path rather than a URL.
func isLocalPath(arg string) bool {
	return !strings.Contains(arg, "://")
}

func listFlagFunction() error {
	found, err := castbridge.ListDevices()
	if err != nil {
		return errors.Wrap(err, "listFlagFunction error")
	}
	fmt.Println()

	for i, dev := range found {
		boldStart := ""
		boldEnd := ""

		if runtime.GOOS == "linux" {
			boldStart = "\033[1m"
			boldEnd = "\033[0m"
		}
		fmt.Printf("%sDevice %v%s\n", boldStart, i+1, boldEnd)
		fmt.Printf("%s--------%s\n", boldStart, boldEnd)
		fmt.Printf("%sName:%s %s\n", boldStart, boldEnd, dev.Name)
		fmt.Printf("%sAddr:%s %s:%d\n", boldStart, boldEnd, dev.Host, dev.Port)
		fmt.Println()
	}

	return nil
}

func checkflags() (exit bool, err error) {
	checkVerflag()

	list, err := checkLflag()
	if err != nil {
		return false, errors.Wrap(err, "checkflags error")
	}

	if list {
		return true, nil
	}

	if err := checkVflag(); err != nil {
		return false, errors.Wrap(err, "checkflags error")
	}

	if err := checkSflag(); err != nil {
		return false, errors.Wrap(err, "checkflags error")
	}

	return false, nil
}

func checkVflag() error {
	if *mediaArg == "" {
		return errors.New("checkVflag error: no media URL or file specified")
	}

	if !isLocalPath(*mediaArg) {
		return nil
	}

	if _, err := os.Stat(*mediaArg); os.IsNotExist(err) {
		return errors.Wrap(err, "checkVflag error")
	}

	f, err := os.Open(*mediaArg)
	if err != nil {
		return errors.Wrap(err, "checkVflag error")
	}
	defer f.Close()

	head := make([]byte, 261)
	n, _ := f.Read(head)

	if !filetype.IsVideo(head[:n]) {
		return errors.New("checkVflag error: file is not a video")
	}

	return nil
}

func checkSflag() error {
	if *subsArg == "" {
		return nil
	}

	if _, err := os.Stat(*subsArg); os.IsNotExist(err) {
		return errors.Wrap(err, "checkSflag error")
	}

	return nil
}

func checkLflag() (bool, error) {
	if *listPtr {
		if err := listFlagFunction(); err != nil {
			return false, errors.Wrap(err, "checkLflag error")
		}

		return true, nil
	}

	return false, nil
}

func checkVerflag() {
	if *versionPtr && os.Args[1] == "-version" {
		fmt.Printf("Playdeck Version: %s, ", version)
		fmt.Printf("Build: %s\n", build)
		os.Exit(0)
	}
}

// fileTrackSource serves a single local SRT file through the track
// source interface, skipping the subtitle service entirely.
type fileTrackSource struct {
	path string
}

func (f *fileTrackSource) Discover(_ context.Context, _ string) []discovery.Track {
	return []discovery.Track{{
		ID:       "local",
		Language: filepath.Base(f.path),
	}}
}

func (f *fileTrackSource) LoadTrack(_ context.Context, _ discovery.Track) ([]subtitles.Cue, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("LoadTrack local file error: %w", err)
	}

	text, err := subtitles.DecodeText(raw)
	if err != nil {
		return nil, fmt.Errorf("LoadTrack local file error: %w", err)
	}

	return subtitles.ParseSRT(text), nil
}

// clockElement stands in for a real media element in the terminal:
// it advances the playback clock while "playing" and reports the
// usual element events back to the controller.
type clockElement struct {
	mu      sync.Mutex
	ctrl    *playback.Controller
	current float64
	rate    float64
	stop    chan struct{}
}

func newClockElement() *clockElement {
	return &clockElement{rate: 1}
}

func (e *clockElement) attach(ctrl *playback.Controller) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ctrl = ctrl
}

func (e *clockElement) Play() error {
	e.mu.Lock()
	if e.stop != nil {
		e.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	e.stop = stop
	ctrl := e.ctrl
	e.mu.Unlock()

	if ctrl != nil {
		ctrl.HandlePlay()
	}

	go e.run(stop)
	return nil
}

func (e *clockElement) run(stop chan struct{}) {
	t := time.NewTicker(250 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			e.mu.Lock()
			e.current += 0.25 * e.rate
			current := e.current
			ctrl := e.ctrl
			e.mu.Unlock()

			if ctrl != nil {
				ctrl.HandleTimeUpdate(current)
			}
		case <-stop:
			return
		}
	}
}

func (e *clockElement) Pause() error {
	e.mu.Lock()
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
	ctrl := e.ctrl
	e.mu.Unlock()

	if ctrl != nil {
		ctrl.HandlePause()
	}
	return nil
}

func (e *clockElement) SetCurrentTime(seconds float64) {
	e.mu.Lock()
	e.current = seconds
	e.mu.Unlock()
}

func (e *clockElement) SetVolume(level float64) {}

func (e *clockElement) SetMuted(muted bool) {}

func (e *clockElement) SetRate(rate float64) {
	e.mu.Lock()
	e.rate = rate
	e.mu.Unlock()
}
