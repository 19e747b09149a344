package encode

import (
	"bufio"
	"compress/lzw"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/color/palette"
	"os"
	"time"

	"golang.org/x/image/draw"
)

// GIF streams an infinitely looping animated GIF to disk, one frame at a
// time. The first frame fixes the global colour table.
type GIF struct {
	path   string
	f      *os.File
	w      *bufio.Writer
	width  int
	height int
	delay  uint16

	palette   color.Palette
	litWidth  int
	scratch   *image.Paletted
	headerOut bool
	frames    int
}

// NewGIF creates path and prepares it for w x h frames.
func NewGIF(path string, w, h int, delay time.Duration) (*GIF, error) {
	if w > 0xffff || h > 0xffff {
		return nil, fmt.Errorf("open %s: gif frames are limited to 65535px, got %dx%d", path, w, h)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	cs := delay.Milliseconds() / 10
	if cs < 1 {
		cs = 1
	}
	if cs > 0xffff {
		cs = 0xffff
	}
	return &GIF{
		path:   path,
		f:      f,
		w:      bufio.NewWriterSize(f, 64<<10),
		width:  w,
		height: h,
		delay:  uint16(cs),
	}, nil
}

// Frames returns how many frames were written.
func (g *GIF) Frames() int { return g.frames }

// Add appends frame. Paletted frames sharing the first frame's palette are
// written as is; anything else is mapped onto that palette.
func (g *GIF) Add(frame image.Image) error {
	if err := checkBounds(frame, g.width, g.height); err != nil {
		return fmt.Errorf("write %s: %w", g.path, err)
	}
	if !g.headerOut {
		g.palette = palette.Plan9
		if p, ok := frame.(*image.Paletted); ok && len(p.Palette) > 0 && len(p.Palette) <= 256 {
			g.palette = p.Palette
		}
		if err := g.writeHeader(); err != nil {
			return fmt.Errorf("write %s: %w", g.path, err)
		}
	}
	if err := g.writeFrame(g.indexed(frame)); err != nil {
		return fmt.Errorf("write %s: %w", g.path, err)
	}
	g.frames++
	return nil
}

// Close writes the trailer and closes the file.
func (g *GIF) Close() error {
	if g.f == nil {
		return nil
	}
	var err error
	if g.headerOut {
		err = g.w.WriteByte(0x3b)
	}
	if ferr := g.w.Flush(); err == nil {
		err = ferr
	}
	if cerr := g.f.Close(); err == nil {
		err = cerr
	}
	g.f = nil
	if err != nil {
		return fmt.Errorf("close %s: %w", g.path, err)
	}
	return nil
}

func (g *GIF) indexed(frame image.Image) *image.Paletted {
	if p, ok := frame.(*image.Paletted); ok && samePalette(p.Palette, g.palette) {
		return p
	}
	if g.scratch == nil {
		g.scratch = image.NewPaletted(image.Rect(0, 0, g.width, g.height), g.palette)
	}
	draw.Draw(g.scratch, g.scratch.Bounds(), frame, frame.Bounds().Min, draw.Src)
	return g.scratch
}

func (g *GIF) writeHeader() error {
	bits := 1
	for 1<<bits < len(g.palette) {
		bits++
	}
	g.litWidth = bits
	if g.litWidth < 2 {
		g.litWidth = 2
	}

	g.w.WriteString("GIF89a")
	g.writeUint16(uint16(g.width))
	g.writeUint16(uint16(g.height))
	// Global colour table present, colour resolution and table size.
	g.w.WriteByte(0x80 | byte(bits-1)<<4 | byte(bits-1))
	g.w.WriteByte(0) // background index
	g.w.WriteByte(0) // aspect ratio

	table := make([]byte, 3<<bits)
	for i, c := range g.palette {
		r, gg, b, _ := c.RGBA()
		table[3*i], table[3*i+1], table[3*i+2] = byte(r>>8), byte(gg>>8), byte(b>>8)
	}
	g.w.Write(table)

	// NETSCAPE2.0 application extension: loop forever.
	g.w.Write([]byte{0x21, 0xff, 0x0b})
	g.w.WriteString("NETSCAPE2.0")
	g.w.Write([]byte{0x03, 0x01, 0x00, 0x00, 0x00})

	g.headerOut = true
	// bufio errors are sticky; an empty write surfaces any of them.
	_, err := g.w.Write(nil)
	return err
}

func (g *GIF) writeFrame(p *image.Paletted) error {
	// Graphic control extension carrying the delay.
	g.w.Write([]byte{0x21, 0xf9, 0x04, 0x00})
	g.writeUint16(g.delay)
	g.w.Write([]byte{0x00, 0x00})

	// Image descriptor covering the whole canvas, no local table.
	g.w.WriteByte(0x2c)
	g.writeUint16(0)
	g.writeUint16(0)
	g.writeUint16(uint16(g.width))
	g.writeUint16(uint16(g.height))
	g.w.WriteByte(0x00)

	g.w.WriteByte(byte(g.litWidth))
	bw := &blockWriter{w: g.w}
	lw := lzw.NewWriter(bw, lzw.LSB, g.litWidth)
	b := p.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		start := p.PixOffset(b.Min.X, y)
		if _, err := lw.Write(p.Pix[start : start+g.width]); err != nil {
			return err
		}
	}
	if err := lw.Close(); err != nil {
		return err
	}
	if err := bw.flush(); err != nil {
		return err
	}
	return g.w.WriteByte(0x00)
}

func (g *GIF) writeUint16(v uint16) {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	g.w.Write(buf[:])
}

// blockWriter splits LZW output into the length-prefixed sub-blocks of at
// most 255 bytes the GIF format requires.
type blockWriter struct {
	w   *bufio.Writer
	buf [255]byte
	n   int
}

func (b *blockWriter) Write(p []byte) (int, error) {
	total := len(p)
	for len(p) > 0 {
		k := copy(b.buf[b.n:], p)
		b.n += k
		p = p[k:]
		if b.n == len(b.buf) {
			if err := b.flush(); err != nil {
				return total - len(p), err
			}
		}
	}
	return total, nil
}

func (b *blockWriter) flush() error {
	if b.n == 0 {
		return nil
	}
	if err := b.w.WriteByte(byte(b.n)); err != nil {
		return err
	}
	_, err := b.w.Write(b.buf[:b.n])
	b.n = 0
	return err
}

func samePalette(a, b color.Palette) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			ar, ag, ab, aa := a[i].RGBA()
			br, bg, bb, ba := b[i].RGBA()
			if ar != br || ag != bg || ab != bb || aa != ba {
				return false
			}
		}
	}
	return true
}
