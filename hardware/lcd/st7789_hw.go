//go:build pimon_hardware

package lcd

import (
	"image"
	"image/color"
	"image/draw"
	"time"

	"github.com/juju/errors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// ST7789 controller commands, only the ones used here.
const (
	cmdSWRESET = 0x01
	cmdSLPOUT  = 0x11
	cmdNORON   = 0x13
	cmdINVON   = 0x21
	cmdDISPON  = 0x29
	cmdCASET   = 0x2a
	cmdRASET   = 0x2b
	cmdRAMWR   = 0x2c
	cmdMADCTL  = 0x36
	cmdCOLMOD  = 0x3a
)

// SPI transfers are chunked to stay under the spidev bufsiz default.
const spiChunk = 4096

const (
	cellW = 8 // basicfont.Face7x13 advance + 1px gap
	cellH = 16
)

type ST7789Config struct {
	Spi      string // e.g. "SPI0.0"
	DcPin    string // data/command, e.g. "GPIO24"
	ResetPin string // e.g. "GPIO25"
	WidthPx  int
	HeightPx int
}

// ST7789 drives the panel over SPI. Text lands in an in-memory RGBA
// frame, Present() streams the whole frame as RGB565.
type ST7789 struct {
	port spi.PortCloser
	conn spi.Conn
	dc   gpio.PinOut
	rst  gpio.PinOut
	img  *image.RGBA
	w, h int
	y, x uint8
}

func NewST7789(opt ST7789Config) (*ST7789, error) {
	if _, err := host.Init(); err != nil {
		return nil, errors.Annotate(err, "periph host init")
	}
	port, err := spireg.Open(opt.Spi)
	if err != nil {
		return nil, errors.Annotatef(err, "spi open %s", opt.Spi)
	}
	conn, err := port.Connect(8*physic.MegaHertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, errors.Annotatef(err, "spi connect %s", opt.Spi)
	}
	dc := gpioreg.ByName(opt.DcPin)
	if dc == nil {
		port.Close()
		return nil, errors.NotFoundf("gpio dc pin %s", opt.DcPin)
	}
	rst := gpioreg.ByName(opt.ResetPin)
	if rst == nil {
		port.Close()
		return nil, errors.NotFoundf("gpio reset pin %s", opt.ResetPin)
	}
	if opt.WidthPx == 0 {
		opt.WidthPx = 240
	}
	if opt.HeightPx == 0 {
		opt.HeightPx = 240
	}

	self := &ST7789{
		port: port,
		conn: conn,
		dc:   dc,
		rst:  rst,
		img:  image.NewRGBA(image.Rect(0, 0, opt.WidthPx, opt.HeightPx)),
		w:    opt.WidthPx,
		h:    opt.HeightPx,
	}
	if err = self.init(); err != nil {
		port.Close()
		return nil, errors.Annotate(err, "st7789 init")
	}
	return self, nil
}

func (self *ST7789) Mode() string { return ModeHardware }

func (self *ST7789) Clear() error {
	draw.Draw(self.img, self.img.Bounds(), image.Black, image.Point{}, draw.Src)
	return nil
}

func (self *ST7789) CursorYX(y, x uint8) bool {
	if int(y) > self.h/cellH || int(x) > self.w/cellW {
		return false
	}
	self.y, self.x = y, x
	return true
}

func (self *ST7789) Write(b []byte, c Color) error {
	d := font.Drawer{
		Dst:  self.img,
		Src:  image.NewUniform(rgb565to888(c)),
		Face: basicfont.Face7x13,
		Dot: fixed.P(
			int(self.x-1)*cellW,
			int(self.y-1)*cellH+basicfont.Face7x13.Ascent,
		),
	}
	d.DrawString(string(b))
	return nil
}

func (self *ST7789) Present() error {
	if err := self.window(0, 0, self.w-1, self.h-1); err != nil {
		return errors.Trace(err)
	}
	buf := make([]byte, self.w*self.h*2)
	i := 0
	for y := 0; y < self.h; y++ {
		for x := 0; x < self.w; x++ {
			r, g, b, _ := self.img.At(x, y).RGBA()
			v := uint16(r>>11)<<11 | uint16(g>>10)<<5 | uint16(b>>11)
			buf[i] = byte(v >> 8)
			buf[i+1] = byte(v)
			i += 2
		}
	}
	return self.data(buf)
}

func (self *ST7789) Close() error {
	return self.port.Close()
}

func (self *ST7789) init() error {
	if err := self.rst.Out(gpio.Low); err != nil {
		return errors.Trace(err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := self.rst.Out(gpio.High); err != nil {
		return errors.Trace(err)
	}
	time.Sleep(150 * time.Millisecond)

	steps := []struct {
		cmd   byte
		args  []byte
		delay time.Duration
	}{
		{cmdSWRESET, nil, 150 * time.Millisecond},
		{cmdSLPOUT, nil, 120 * time.Millisecond},
		{cmdCOLMOD, []byte{0x55}, 0}, // 16bpp
		{cmdMADCTL, []byte{0x00}, 0},
		{cmdINVON, nil, 0},
		{cmdNORON, nil, 0},
		{cmdDISPON, nil, 100 * time.Millisecond},
	}
	for _, s := range steps {
		if err := self.command(s.cmd, s.args...); err != nil {
			return errors.Trace(err)
		}
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
	}
	return self.Present()
}

func (self *ST7789) window(x0, y0, x1, y1 int) error {
	if err := self.command(cmdCASET,
		byte(x0>>8), byte(x0), byte(x1>>8), byte(x1)); err != nil {
		return err
	}
	if err := self.command(cmdRASET,
		byte(y0>>8), byte(y0), byte(y1>>8), byte(y1)); err != nil {
		return err
	}
	return self.command(cmdRAMWR)
}

func (self *ST7789) command(cmd byte, args ...byte) error {
	if err := self.dc.Out(gpio.Low); err != nil {
		return errors.Trace(err)
	}
	if err := self.conn.Tx([]byte{cmd}, nil); err != nil {
		return errors.Annotatef(err, "st7789 cmd=%02x", cmd)
	}
	if len(args) > 0 {
		return self.data(args)
	}
	return nil
}

func (self *ST7789) data(b []byte) error {
	if err := self.dc.Out(gpio.High); err != nil {
		return errors.Trace(err)
	}
	for len(b) > 0 {
		n := len(b)
		if n > spiChunk {
			n = spiChunk
		}
		if err := self.conn.Tx(b[:n], nil); err != nil {
			return errors.Annotate(err, "st7789 data")
		}
		b = b[n:]
	}
	return nil
}

func rgb565to888(c Color) color.RGBA {
	return color.RGBA{
		R: uint8((uint16(c) >> 11) << 3),
		G: uint8((uint16(c) >> 5 & 0x3f) << 2),
		B: uint8((uint16(c) & 0x1f) << 3),
		A: 0xff,
	}
}
