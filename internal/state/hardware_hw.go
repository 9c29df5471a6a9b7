//go:build pimon_hardware

package state

import (
	"github.com/juju/errors"
	"github.com/temoto/pimon/hardware/lcd"
	"github.com/temoto/pimon/hardware/led"
	"github.com/temoto/pimon/internal/sensor"
)

func (g *Global) initDisplay() error {
	dev, err := lcd.NewST7789(lcd.ST7789Config{
		Spi:      g.Config.Hardware.Lcd.Spi,
		DcPin:    g.Config.Hardware.Lcd.DcPin,
		ResetPin: g.Config.Hardware.Lcd.ResetPin,
	})
	if err != nil {
		return errors.Trace(err)
	}
	d, err := lcd.NewTextDisplay(dev, lcd.Config{
		Width:    g.Config.Hardware.Lcd.Width,
		Height:   g.Config.Hardware.Lcd.Height,
		Codepage: g.Config.Hardware.Lcd.Codepage,
	})
	if err != nil {
		return errors.Trace(err)
	}
	g.Display = d
	return nil
}

func (g *Global) initLed() error {
	l, err := led.NewGpio(led.Config{
		PinChip: g.Config.Hardware.Led.PinChip,
		Pin:     g.Config.Hardware.Led.Pin,
	})
	if err != nil {
		return errors.Trace(err)
	}
	g.Led = l
	return nil
}

func (g *Global) initSensor() error {
	s, err := sensor.NewDHT22(g.Config.Hardware.Sensor.Pin)
	if err != nil {
		return errors.Trace(err)
	}
	g.Sensor = s
	return nil
}
