package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"time"

	"github.com/icza/mjpeg"
)

// MJPEG writes frames as a Motion-JPEG AVI file.
type MJPEG struct {
	path   string
	width  int
	height int
	aw     mjpeg.AviWriter
	buf    bytes.Buffer
	opts   jpeg.Options
}

// NewMJPEG creates path for w x h frames played back one per delay.
func NewMJPEG(path string, w, h int, delay time.Duration) (*MJPEG, error) {
	fps := int32(time.Second / delay)
	if fps < 1 {
		fps = 1
	}
	aw, err := mjpeg.New(path, int32(w), int32(h), fps)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &MJPEG{path: path, width: w, height: h, aw: aw, opts: jpeg.Options{Quality: 90}}, nil
}

// Add encodes frame as JPEG and appends it to the stream.
func (m *MJPEG) Add(frame image.Image) error {
	if err := checkBounds(frame, m.width, m.height); err != nil {
		return fmt.Errorf("write %s: %w", m.path, err)
	}
	m.buf.Reset()
	if err := jpeg.Encode(&m.buf, frame, &m.opts); err != nil {
		return fmt.Errorf("write %s: %w", m.path, err)
	}
	if err := m.aw.AddFrame(m.buf.Bytes()); err != nil {
		return fmt.Errorf("write %s: %w", m.path, err)
	}
	return nil
}

// Close finalises the AVI index.
func (m *MJPEG) Close() error {
	if m.aw == nil {
		return nil
	}
	err := m.aw.Close()
	m.aw = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", m.path, err)
	}
	return nil
}
