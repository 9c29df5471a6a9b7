// Package monitor runs the periodic sensor-to-display loop.
package monitor

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/juju/errors"
	"github.com/mattn/go-isatty"
	"github.com/temoto/pimon/hardware/lcd"
	"github.com/temoto/pimon/internal/sensor"
	"github.com/temoto/pimon/internal/state"
)

// TickFunc receives the reading committed by each completed tick.
type TickFunc func(sensor.Reading)

type Monitor struct { //nolint:maligned
	g      *state.Global
	echo   bool
	onTick []TickFunc
}

func New(ctx context.Context) *Monitor {
	g := state.GetGlobal(ctx)
	self := &Monitor{
		g:    g,
		echo: g.Display.Mode() == lcd.ModeSimulation && isatty.IsTerminal(os.Stdout.Fd()),
	}
	return self
}

// OnTick registers a per-tick observer. Not safe to call after Run.
func (self *Monitor) OnTick(f TickFunc) { self.onTick = append(self.onTick, f) }

// Run blocks until alive stop. First tick fires immediately so HTTP
// clients see data right after startup.
func (self *Monitor) Run() {
	g := self.g
	stopch := g.Alive.StopChan()
	interval := g.TickInterval()
	g.Log.Debugf("monitor loop interval=%v", interval)

	tmr := time.NewTicker(interval)
	defer tmr.Stop()
	self.Tick()
	for g.Alive.IsRunning() {
		select {
		case <-tmr.C:
			self.Tick()
		case <-stopch:
			return
		}
	}
}

// Tick performs one read-render-commit cycle. Errors are reported and
// swallowed, a failed tick must not take the loop down.
func (self *Monitor) Tick() {
	g := self.g

	reading, err := g.Sensor.Read()
	if err != nil {
		g.Error(errors.Annotatef(err, "sensor=%s read", g.Sensor.Name()))
		return
	}

	self.render(reading)
	if err := g.Display.Flush(); err != nil {
		g.Error(errors.Annotate(err, "display flush"))
		// keep going, status store and telemetry still get the reading
	}

	content := g.Display.Content()
	g.Store.CommitTick(reading, content)
	g.Tele.Reading(reading)
	for _, f := range self.onTick {
		f(reading)
	}

	if reading.Temperature > g.Config.Monitor.HighTemp {
		g.Log.Infof("high temperature %.1fC threshold=%.1fC", reading.Temperature, g.Config.Monitor.HighTemp)
	}
	if self.echo {
		self.console(reading, content)
	}
}

// Frame layout mirrors the 240x240 panel at 10x20 pixel character
// cells, so the simulation and the hardware variant show the same text.
func (self *Monitor) render(r sensor.Reading) {
	g := self.g
	d := g.Display
	d.Clear()
	d.DrawText("Hello World!", 1, 1, lcd.ColorWhite)
	d.DrawText("Pi Zero Monitor", 1, 3, lcd.ColorWhite)
	d.DrawText(fmt.Sprintf("Temp: %.1fC", r.Temperature), 1, 4, lcd.ColorWhite)
	d.DrawText(fmt.Sprintf("Humidity: %.1f%%", r.Humidity), 1, 6, lcd.ColorWhite)
	if r.Temperature > g.Config.Monitor.HighTemp {
		d.DrawText("HIGH TEMP!", 1, 7, lcd.ColorRed)
	}
	d.DrawText(fmt.Sprintf("Uptime: %ds", g.Store.Uptime()), 1, 9, lcd.ColorWhite)
	ledColor := lcd.ColorRed
	if g.Led.Get() {
		ledColor = lcd.ColorGreen
	}
	d.DrawText("LED", 1, 10, ledColor)
}

func (self *Monitor) console(r sensor.Reading, content string) {
	fmt.Printf("\nLCD Display Content:\n%s", content)
	fmt.Printf("temp=%.1fC humidity=%.1f%% led=%t uptime=%ds\n",
		r.Temperature, r.Humidity, self.g.Led.Get(), self.g.Store.Uptime())
}

// RunBlink toggles the LED at 1Hz until the first explicit LED write or
// alive stop. Off by default, see hardware.led.blink config.
func (self *Monitor) RunBlink() {
	g := self.g
	stopch := g.Alive.StopChan()
	blinkch := g.BlinkStopChan()
	tmr := time.NewTicker(1 * time.Second)
	defer tmr.Stop()

	on := false
	for {
		select {
		case <-tmr.C:
			on = !on
			if err := g.Led.Set(on); err != nil {
				g.Error(errors.Annotate(err, "led blink"))
				return
			}
			g.Store.SetLed(on)
		case <-blinkch:
			return
		case <-stopch:
			return
		}
	}
}
