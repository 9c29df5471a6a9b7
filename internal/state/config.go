package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/pimon/internal/tele"
	"github.com/temoto/pimon/log2"
)

const (
	DefaultIntervalMs = 2000
	DefaultHighTemp   = 30.0
	DefaultListen     = ":3030"
	DefaultLcdWidth   = 50
	DefaultLcdHeight  = 15
)

type Config struct { //nolint:maligned
	Monitor struct {
		IntervalMs int     `hcl:"interval_ms"`
		HighTemp   float64 `hcl:"high_temp"`
	} `hcl:"monitor"`

	Hardware struct {
		Lcd struct {
			Width    int    `hcl:"width"`
			Height   int    `hcl:"height"`
			Codepage string `hcl:"codepage"`
			Spi      string `hcl:"spi"`
			DcPin    string `hcl:"dc_pin"`
			ResetPin string `hcl:"reset_pin"`
		} `hcl:"lcd"`
		Led struct {
			PinChip string `hcl:"pin_chip"`
			Pin     int    `hcl:"pin"`
			Blink   bool   `hcl:"blink"`
		} `hcl:"led"`
		Sensor struct {
			Pin string `hcl:"pin"`
		} `hcl:"sensor"`
	} `hcl:"hardware"`

	HTTP struct {
		Listen string `hcl:"listen"`
	} `hcl:"http"`

	Tele tele.Config `hcl:"tele"`

	_copy_guard sync.Mutex //nolint:unused
}

// Normalize applies defaults in place. Logs each substitution at debug.
func (c *Config) Normalize(log *log2.Log) {
	def := func(name string) { log.Debugf("config: default %s", name) }

	if c.Monitor.IntervalMs == 0 {
		c.Monitor.IntervalMs = DefaultIntervalMs
		def("monitor.interval_ms")
	}
	if c.Monitor.HighTemp == 0 {
		c.Monitor.HighTemp = DefaultHighTemp
		def("monitor.high_temp")
	}
	if c.Hardware.Lcd.Width == 0 {
		c.Hardware.Lcd.Width = DefaultLcdWidth
		def("hardware.lcd.width")
	}
	if c.Hardware.Lcd.Height == 0 {
		c.Hardware.Lcd.Height = DefaultLcdHeight
		def("hardware.lcd.height")
	}
	if c.Hardware.Lcd.Spi == "" {
		c.Hardware.Lcd.Spi = "SPI0.0"
	}
	if c.Hardware.Lcd.DcPin == "" {
		c.Hardware.Lcd.DcPin = "GPIO24"
	}
	if c.Hardware.Lcd.ResetPin == "" {
		c.Hardware.Lcd.ResetPin = "GPIO25"
	}
	if c.Hardware.Led.PinChip == "" {
		c.Hardware.Led.PinChip = "/dev/gpiochip0"
	}
	if c.Hardware.Led.Pin == 0 {
		c.Hardware.Led.Pin = 18
		def("hardware.led.pin")
	}
	if c.Hardware.Sensor.Pin == "" {
		c.Hardware.Sensor.Pin = "GPIO4"
	}
	if c.HTTP.Listen == "" {
		c.HTTP.Listen = DefaultListen
		def("http.listen")
	}
}

func ReadConfig(log *log2.Log, fs FullReader, name string) (*Config, error) {
	if osfs, ok := fs.(*OsFullReader); ok {
		dir, base := filepath.Split(name)
		osfs.SetBase(dir)
		name = base
	}
	norm := fs.Normalize(name)
	log.Debugf("config reading name='%s' path=%s", name, norm)
	bs, err := fs.ReadAll(norm)
	if err != nil {
		return nil, errors.Annotatef(err, "config source=%s", name)
	}
	if bs == nil {
		return nil, errors.NotFoundf("config required name=%s path=%s", name, norm)
	}

	c := &Config{}
	if err = hcl.Unmarshal(bs, c); err != nil {
		return nil, errors.Annotatef(err, "config unmarshal source=%s content='%s'", name, string(bs))
	}
	c.Normalize(log)
	return c, nil
}

func MustReadConfig(log *log2.Log, fs FullReader, name string) *Config {
	c, err := ReadConfig(log, fs, name)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
