// Package interactive renders a player surface in the terminal:
// title, progress bar, clock, subtitle line and keyboard shortcuts.
package interactive

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gdamore/tcell/v2/encoding"
	"github.com/mattn/go-runewidth"

	"playdeck.app/playdeck/internal/playback"
	"playdeck.app/playdeck/internal/player"
	"playdeck.app/playdeck/internal/subtitles"
)

// NewScreen .
type NewScreen struct {
	Current tcell.Screen
	player  *player.Player
	title   string
}

func (p *NewScreen) emitStr(x, y int, style tcell.Style, str string) {
	s := p.Current
	for _, c := range str {
		var comb []rune
		w := runewidth.RuneWidth(c)
		if w == 0 {
			comb = []rune{c}
			c = ' '
			w = 1
		}
		s.SetContent(x, y, c, comb, style)
		x += w
	}
}

// progressLine renders a fixed-width bar with the played fraction
// filled in.
func progressLine(width int, played float64) string {
	if width < 2 {
		return ""
	}

	inner := width - 2
	filled := int(played*float64(inner) + 0.5)
	if filled < 0 {
		filled = 0
	}
	if filled > inner {
		filled = inner
	}

	return "[" + strings.Repeat("=", filled) + strings.Repeat("-", inner-filled) + "]"
}

func clockLine(current, duration float64) string {
	return subtitles.FormatTime(current) + " / " + subtitles.FormatTime(duration)
}

func (p *NewScreen) draw() {
	s := p.Current
	w, h := s.Size()

	boldStyle := tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite).Bold(true)

	s.Clear()

	p.emitStr(1, 1, tcell.StyleDefault, "Press ESC to stop and exit.")

	titleLine := "Title: " + p.title
	p.emitStr(w/2-len(titleLine)/2, h/2-4, tcell.StyleDefault, titleLine)

	st := p.player.Controller.State()
	status := "Paused"
	if st.IsPlaying {
		status = "Playing"
	}
	if p.player.Casting() {
		status += " (casting)"
	}
	p.emitStr(w/2-len(status)/2, h/2-2, boldStyle, status)

	barWidth := w * 3 / 4
	played, _ := p.player.Progress().Fractions()
	bar := progressLine(barWidth, played)
	p.emitStr(w/2-len(bar)/2, h/2, tcell.StyleDefault, bar)

	clock := clockLine(st.CurrentTime, st.Duration)
	p.emitStr(w/2-len(clock)/2, h/2+1, tcell.StyleDefault, clock)

	if ov := p.player.Overlay(); ov.Visible {
		line := strings.Join(ov.Lines, " ")
		p.emitStr(w/2-runewidth.StringWidth(line)/2, h/2+3, boldStyle, line)
	}

	help := "space Play/Pause | ←/→ Skip | m Mute | f Fullscreen | s Subtitles | c Cast"
	p.emitStr(w/2-len(help)/2, h-2, tcell.StyleDefault, help)

	s.Show()
}

// cycleSubtitles advances the subtitle selection through the known
// tracks, wrapping back to off after the last one.
func (p *NewScreen) cycleSubtitles() {
	tracks := p.player.Tracks()
	if len(tracks) == 0 {
		return
	}

	current := p.player.SelectedTrack()
	if current == "" {
		p.player.SelectTrack(tracks[0].ID)
		return
	}

	for i, tr := range tracks {
		if tr.ID == current {
			if i+1 < len(tracks) {
				p.player.SelectTrack(tracks[i+1].ID)
			} else {
				p.player.SelectTrack("")
			}
			return
		}
	}

	p.player.SelectTrack("")
}

// InterInit - Start the interactive terminal
func (p *NewScreen) InterInit(pl *player.Player) {
	p.player = pl

	src := pl.Source()
	title := src.URL
	if parsed, err := url.Parse(src.URL); err == nil {
		title = strings.TrimLeft(parsed.Path, "/")
	}
	p.title = title

	encoding.Register()
	s := p.Current
	if e := s.Init(); e != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", e)
		os.Exit(1)
	}

	defStyle := tcell.StyleDefault.
		Background(tcell.ColorBlack).
		Foreground(tcell.ColorWhite)
	s.SetStyle(defStyle)

	// Keep the clock and subtitle line moving between key presses.
	stopTick := make(chan struct{})
	go func() {
		t := time.NewTicker(500 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				s.PostEvent(tcell.NewEventInterrupt(nil))
			case <-stopTick:
				return
			}
		}
	}()

	p.draw()

	for {
		switch ev := s.PollEvent().(type) {
		case *tcell.EventInterrupt:
			p.draw()
		case *tcell.EventResize:
			s.Sync()
			p.draw()
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape:
				close(stopTick)
				pl.Close()
				s.Fini()
				os.Exit(0)
			case ev.Key() == tcell.KeyLeft:
				pl.Controller.HandleKey(playback.KeyLeft)
			case ev.Key() == tcell.KeyRight:
				pl.Controller.HandleKey(playback.KeyRight)
			case ev.Rune() == ' ':
				pl.Controller.HandleKey(playback.KeySpace)
			case ev.Rune() == 'm':
				pl.Controller.HandleKey(playback.KeyMute)
			case ev.Rune() == 'f':
				pl.Controller.HandleKey(playback.KeyFullscreen)
			case ev.Rune() == 's':
				p.cycleSubtitles()
			case ev.Rune() == 'c':
				pl.ToggleCast()
			}
			p.draw()
		}
	}
}

// Fini Method to implement the screen interface
func (p *NewScreen) Fini() {
	p.Current.Fini()
	os.Exit(0)
}

// InitTcellNewScreen .
func InitTcellNewScreen() (*NewScreen, error) {
	s, e := tcell.NewScreen()
	if e != nil {
		return nil, errors.New("can't start new interactive screen")
	}
	return &NewScreen{
		Current: s,
	}, nil
}
