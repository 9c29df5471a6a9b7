// Package lcd renders short status text to a small display.
//
// TextDisplay is variant-agnostic: callers draw text at character
// coordinates and Flush() pushes the frame to the underlying Devicer.
// The simulation devicer keeps an in-memory character grid, the
// hardware devicer (build tag pimon_hardware) drives an ST7789 panel
// over SPI.
package lcd

import (
	"bytes"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/juju/errors"
	"github.com/paulrosania/go-charset/charset"
	_ "github.com/paulrosania/go-charset/data"
	"github.com/temoto/pimon/helpers"
)

const (
	MaxWidth  = 64
	MaxHeight = 32
)

const (
	ModeSimulation = "simulation"
	ModeHardware   = "hardware"
)

// Color is RGB565 as the panel wants it. The simulation devicer ignores
// it but accepts the same call signature.
type Color uint16

const (
	ColorBlack Color = 0x0000
	ColorWhite Color = 0xffff
	ColorRed   Color = 0xf800
	ColorGreen Color = 0x07e0
)

var spaceBytes = bytes.Repeat([]byte{' '}, MaxWidth)

// Devicer is the minimal surface both display variants implement.
// CursorYX positions at character cell (row y, column x), 1-based.
type Devicer interface {
	Mode() string
	Clear() error
	CursorYX(y, x uint8) bool
	Write(b []byte, c Color) error
	Present() error
}

type Config struct {
	Width    int
	Height   int
	Codepage string
}

type segment struct {
	x, y  int
	b     []byte
	color Color
}

type TextDisplay struct { //nolint:maligned
	mu     sync.Mutex
	dev    Devicer
	tr     atomic.Value
	width  int
	height int
	grid   [][]byte
	segs   []segment
}

func NewTextDisplay(dev Devicer, opt Config) (*TextDisplay, error) {
	if dev == nil {
		panic("code error NewTextDisplay() dev=nil")
	}
	if opt.Width <= 0 || opt.Width > MaxWidth || opt.Height <= 0 || opt.Height > MaxHeight {
		return nil, errors.NotValidf("lcd size %dx%d", opt.Width, opt.Height)
	}
	self := &TextDisplay{
		dev:    dev,
		width:  opt.Width,
		height: opt.Height,
	}
	self.grid = make([][]byte, opt.Height)
	for y := range self.grid {
		self.grid[y] = bytes.Repeat([]byte{' '}, opt.Width)
	}

	if opt.Codepage != "" {
		if err := self.SetCodepage(opt.Codepage); err != nil {
			return nil, errors.Trace(err)
		}
	}
	return self, nil
}

func (self *TextDisplay) SetCodepage(cp string) error {
	tr, err := charset.TranslatorTo(cp)
	if err != nil {
		return errors.Annotatef(err, "lcd codepage=%s", cp)
	}
	self.tr.Store(tr)
	return nil
}

func (self *TextDisplay) Mode() string { return self.dev.Mode() }
func (self *TextDisplay) Width() int   { return self.width }
func (self *TextDisplay) Height() int  { return self.height }

// Clear resets the pending frame. Takes effect on device at next Flush.
func (self *TextDisplay) Clear() {
	self.mu.Lock()
	defer self.mu.Unlock()
	for y := range self.grid {
		copy(self.grid[y], spaceBytes[:self.width])
	}
	self.segs = self.segs[:0]
}

// DrawText places text at character cell (x, y). Out-of-bounds rows are
// ignored, overlong text is clipped at the right edge, never an error.
func (self *TextDisplay) DrawText(text string, x, y int, c Color) {
	if text == "" || y < 0 || y >= self.height || x >= self.width {
		return
	}
	b := []byte(text)
	if x < 0 {
		if -x >= len(b) {
			return
		}
		b = b[-x:]
		x = 0
	}
	if x+len(b) > self.width {
		b = b[:self.width-x]
	}

	self.mu.Lock()
	defer self.mu.Unlock()
	copy(self.grid[y][x:], b)
	self.segs = append(self.segs, segment{x: x, y: y, b: self.translate(b), color: c})
}

// Flush replays the pending frame onto the device.
func (self *TextDisplay) Flush() error {
	self.mu.Lock()
	defer self.mu.Unlock()

	errs := make([]error, 0, len(self.segs)+2)
	if err := self.dev.Clear(); err != nil {
		errs = append(errs, errors.Annotate(err, "lcd clear"))
	}
	for _, seg := range self.segs {
		self.dev.CursorYX(uint8(seg.y+1), uint8(seg.x+1))
		if err := self.dev.Write(seg.b, seg.color); err != nil {
			errs = append(errs, errors.Annotatef(err, "lcd write y=%d x=%d", seg.y, seg.x))
		}
	}
	if err := self.dev.Present(); err != nil {
		errs = append(errs, errors.Annotate(err, "lcd present"))
	}
	return helpers.FoldErrors(errs)
}

// Content renders the current frame as a bordered text block.
func (self *TextDisplay) Content() string {
	self.mu.Lock()
	defer self.mu.Unlock()

	buf := bytes.Buffer{}
	buf.Grow((self.width + 8) * (self.height + 2))
	fmt.Fprintf(&buf, "╔%s╗\n", repeatRune('═', self.width))
	for y := 0; y < self.height; y++ {
		fmt.Fprintf(&buf, "║%s║\n", string(self.grid[y]))
	}
	fmt.Fprintf(&buf, "╚%s╝\n", repeatRune('═', self.width))
	return buf.String()
}

func (self *TextDisplay) translate(b []byte) []byte {
	tr, ok := self.tr.Load().(charset.Translator)
	if !ok || tr == nil {
		return append([]byte(nil), b...)
	}
	_, tb, err := tr.Translate(b, true)
	if err != nil {
		// untranslatable text is a draw-time bug, not a device failure
		return append([]byte(nil), b...)
	}
	// translator reuses single internal buffer, make a copy
	return append([]byte(nil), tb...)
}

func repeatRune(r rune, n int) string {
	rs := make([]rune, n)
	for i := range rs {
		rs[i] = r
	}
	return string(rs)
}
