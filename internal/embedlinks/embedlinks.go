// Package embedlinks builds third-party embed player URLs. Builders
// are keyed by media type as an explicit, exhaustively matched
// strategy map instead of a string-id config lookup.
package embedlinks

import (
	"fmt"
	"net/url"
	"strconv"
)

// MediaType tags the kind of content an embed URL points at.
type MediaType int

const (
	Movie MediaType = iota
	TV
	Anime
)

func (m MediaType) String() string {
	switch m {
	case Movie:
		return "movie"
	case TV:
		return "tv"
	case Anime:
		return "anime"
	}
	return "unknown"
}

const embedBaseURL = "https://player.vidplus.to/embed"

// Request carries the identifiers a builder needs. Which fields are
// required depends on the media type.
type Request struct {
	TMDBID    string
	AniListID string
	Season    int
	Episode   int
	Dub       bool
}

type builder func(Request) (string, error)

var builders = map[MediaType]builder{
	Movie: buildMovieURL,
	TV:    buildTVURL,
	Anime: buildAnimeURL,
}

// BuildURL returns the embed player URL for the given media type.
// Unknown media types and missing identifiers are errors, not silent
// fallbacks.
func BuildURL(mediaType MediaType, req Request) (string, error) {
	build, ok := builders[mediaType]
	if !ok {
		return "", fmt.Errorf("BuildURL: unsupported media type %d", mediaType)
	}

	return build(req)
}

func playerParams() url.Values {
	return url.Values{
		"primarycolor":   []string{"fbc9ff"},
		"secondarycolor": []string{"f8b4ff"},
		"iconcolor":      []string{"fbc9ff"},
		"autoplay":       []string{"true"},
		"poster":         []string{"true"},
		"title":          []string{"true"},
		"watchparty":     []string{"false"},
	}
}

func buildMovieURL(req Request) (string, error) {
	if req.TMDBID == "" {
		return "", fmt.Errorf("buildMovieURL: missing TMDB id")
	}

	return fmt.Sprintf("%s/movie/%s?%s", embedBaseURL, req.TMDBID, playerParams().Encode()), nil
}

func buildTVURL(req Request) (string, error) {
	if req.TMDBID == "" || req.Season <= 0 || req.Episode <= 0 {
		return "", fmt.Errorf("buildTVURL: missing TMDB id or season/episode")
	}

	return fmt.Sprintf("%s/tv/%s/%d/%d?%s",
		embedBaseURL, req.TMDBID, req.Season, req.Episode, playerParams().Encode()), nil
}

func buildAnimeURL(req Request) (string, error) {
	if req.AniListID == "" || req.Episode <= 0 {
		return "", fmt.Errorf("buildAnimeURL: missing AniList id or episode")
	}

	params := playerParams()
	params.Set("dub", strconv.FormatBool(req.Dub))

	return fmt.Sprintf("%s/anime/%s/%d?%s",
		embedBaseURL, req.AniListID, req.Episode, params.Encode()), nil
}
