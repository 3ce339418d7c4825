// Package input cleans transcribed utterances before they reach extractors or logs.
package input

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxUtteranceSize is 2KB, far above any spoken sentence.
	DefaultMaxUtteranceSize = 2048
	// EnvMaxUtteranceSize is the environment variable to override the default
	EnvMaxUtteranceSize = "HIYADRIVE_MAX_UTTERANCE_SIZE"
)

var (
	ErrUtteranceTooLarge = errors.New("utterance exceeds maximum allowed size")
	ErrInvalidUTF8       = errors.New("utterance contains invalid UTF-8 sequences")
)

// Sanitize enforces the size limit, validates UTF-8, strips control
// characters and collapses whitespace to single spaces.
func Sanitize(text string) (string, error) {
	limit := maxUtteranceSize()
	if len(text) > limit {
		// Rejected, not truncated.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrUtteranceTooLarge, len(text), limit)
	}

	if !utf8.ValidString(text) {
		return "", ErrInvalidUTF8
	}

	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r):
			// ESC, NULL, BEL and friends are dropped.
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func maxUtteranceSize() int {
	if val := os.Getenv(EnvMaxUtteranceSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxUtteranceSize
}
