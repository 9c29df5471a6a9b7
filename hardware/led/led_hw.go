//go:build pimon_hardware

package led

import (
	"sync"

	"github.com/juju/errors"
	"github.com/temoto/gpio-cdev-go"
)

// Gpio drives one output line via the kernel gpiochip character device.
type Gpio struct {
	mu    sync.Mutex
	chip  *gpio.Chip
	lines *gpio.LinesHandle
	set   gpio.LineSetFunc
	state bool
}

func NewGpio(opt Config) (*Gpio, error) {
	chip, err := gpio.Open(opt.PinChip, "pimon")
	if err != nil {
		return nil, errors.Annotatef(err, "led gpio open chip=%s", opt.PinChip)
	}
	lines, err := chip.OpenLines(gpio.GPIOHANDLE_REQUEST_OUTPUT, "pimon-led", uint32(opt.Pin))
	if err != nil {
		chip.Close()
		return nil, errors.Annotatef(err, "led gpio line=%d", opt.Pin)
	}
	self := &Gpio{
		chip:  chip,
		lines: lines,
		set:   lines.SetFunc(uint32(opt.Pin)),
	}
	return self, nil
}

func (self *Gpio) Set(on bool) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	var b byte
	if on {
		b = 1
	}
	self.set(b)
	if err := self.lines.Flush(); err != nil {
		return errors.Annotatef(err, "led set=%t", on)
	}
	self.state = on
	return nil
}

func (self *Gpio) Get() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.state
}

func (self *Gpio) Close() error {
	self.chip.Close()
	return nil
}
