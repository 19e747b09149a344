// Package encode writes rendered frames to animation files.
package encode

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"
	"time"
)

// ErrUnknownFormat is returned by Open for formats it cannot write.
var ErrUnknownFormat = errors.New("unknown output format")

const (
	FormatGIF   = "gif"
	FormatMJPEG = "mjpeg"
)

// DefaultDelay is the per-frame delay used when none is given.
const DefaultDelay = 20 * time.Millisecond

// Sink accepts frames of a fixed size and finalises the file on Close.
type Sink interface {
	Add(frame image.Image) error
	Close() error
}

type opener func(path string, w, h int, delay time.Duration) (Sink, error)

var openers = map[string]opener{
	FormatGIF: func(path string, w, h int, delay time.Duration) (Sink, error) {
		return NewGIF(path, w, h, delay)
	},
	FormatMJPEG: func(path string, w, h int, delay time.Duration) (Sink, error) {
		return NewMJPEG(path, w, h, delay)
	},
}

// Formats lists the names Open accepts.
func Formats() []string {
	names := make([]string, 0, len(openers))
	for name := range openers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Supported reports whether Open knows format.
func Supported(format string) bool {
	_, ok := openers[strings.ToLower(format)]
	return ok
}

// Open creates a sink for format at path. Frames must be w x h pixels.
// A non-positive delay falls back to DefaultDelay.
func Open(format, path string, w, h int, delay time.Duration) (Sink, error) {
	open, ok := openers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownFormat, format, Formats())
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("open %s: invalid frame size %dx%d", path, w, h)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return open(path, w, h, delay)
}

func checkBounds(frame image.Image, w, h int) error {
	b := frame.Bounds()
	if b.Dx() != w || b.Dy() != h {
		return fmt.Errorf("frame is %dx%d, sink expects %dx%d", b.Dx(), b.Dy(), w, h)
	}
	return nil
}
