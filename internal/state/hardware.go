//go:build !pimon_hardware

package state

import (
	"github.com/juju/errors"
	"github.com/temoto/pimon/hardware/lcd"
	"github.com/temoto/pimon/hardware/led"
	"github.com/temoto/pimon/internal/sensor"
)

// Simulation variants. The pimon_hardware build tag swaps these for
// real SPI/GPIO drivers, see hardware_hw.go.

func (g *Global) initDisplay() error {
	d, err := lcd.NewTextDisplay(new(lcd.MockDevicer), lcd.Config{
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
	g.Led = led.NewSim()
	return nil
}

func (g *Global) initSensor() error {
	g.Sensor = sensor.NewSim()
	return nil
}
