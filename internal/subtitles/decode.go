package subtitles

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DecodeText converts a raw subtitle payload to UTF-8. Subtitle
// services serve plenty of legacy single-byte encodings, so we guess
// the charset from the first bytes and transcode when the guess is
// not already valid UTF-8.
func DecodeText(raw []byte) (string, error) {
	if utf8.Valid(raw) {
		return string(bytes.TrimPrefix(raw, []byte{0xEF, 0xBB, 0xBF})), nil
	}

	sample := raw
	if len(sample) > 512 {
		sample = sample[:512]
	}

	det := chardet.NewTextDetector()
	charGuess, err := det.DetectBest(sample)
	if err != nil {
		return "", fmt.Errorf("DecodeText detect error: %w", err)
	}

	enc, err := htmlindex.Get(charGuess.Charset)
	if err != nil {
		return "", fmt.Errorf("DecodeText charset %q error: %w", charGuess.Charset, err)
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), enc.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("DecodeText transform error: %w", err)
	}

	return string(decoded), nil
}
