package subtitles

import (
	"regexp"
	"strconv"
	"strings"
)

// Cue is a single timed subtitle line. Start and End are
// seconds from the beginning of the media.
type Cue struct {
	Start float64
	End   float64
	Text  string
}

var (
	blockSplitRegex = regexp.MustCompile(`\n\s*\n`)
	timestampRegex  = regexp.MustCompile(`(\d{2}):(\d{2}):(\d{2}),(\d{3}) --> (\d{2}):(\d{2}):(\d{2}),(\d{3})`)
	markupRegex     = regexp.MustCompile(`<[^>]*>`)
)

// ParseSRT converts raw SubRip text to an ordered list of cues.
// Blocks that are too short or fail the timestamp pattern are
// skipped. Input order is preserved as-is. SRT files with cues
// out of start-time order keep that order.
func ParseSRT(input string) []Cue {
	blocks := blockSplitRegex.Split(strings.TrimSpace(input), -1)
	cues := make([]Cue, 0, len(blocks))

	for _, block := range blocks {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 3 {
			continue
		}

		match := timestampRegex.FindStringSubmatch(lines[1])
		if match == nil {
			continue
		}

		text := strings.Join(lines[2:], "\n")
		text = markupRegex.ReplaceAllString(text, "")

		cues = append(cues, Cue{
			Start: timestampToSeconds(match[1], match[2], match[3], match[4]),
			End:   timestampToSeconds(match[5], match[6], match[7], match[8]),
			Text:  strings.TrimSpace(text),
		})
	}

	return cues
}

func timestampToSeconds(hours, minutes, seconds, millis string) float64 {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	ms, _ := strconv.Atoi(millis)

	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(ms)/1000
}

// ActiveCue returns the cue covering currentTime+delay, inclusive on
// both ends. With overlapping cues the first match in sequence order
// wins. The second return value is false when no cue matches.
func ActiveCue(cues []Cue, currentTime, delay float64) (Cue, bool) {
	adjusted := currentTime + delay
	for _, cue := range cues {
		if adjusted >= cue.Start && adjusted <= cue.End {
			return cue, true
		}
	}

	return Cue{}, false
}

// FormatTime renders seconds as a playback clock, H:MM:SS past the
// hour mark and M:SS below it.
func FormatTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}

	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	if h > 0 {
		return strconv.Itoa(h) + ":" + pad2(m) + ":" + pad2(s)
	}

	return strconv.Itoa(m) + ":" + pad2(s)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}

	return strconv.Itoa(n)
}
