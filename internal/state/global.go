package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juju/errors"
	"github.com/temoto/alive/v2"
	"github.com/temoto/pimon/hardware/lcd"
	"github.com/temoto/pimon/helpers"
	"github.com/temoto/pimon/hardware/led"
	"github.com/temoto/pimon/internal/sensor"
	"github.com/temoto/pimon/internal/status"
	"github.com/temoto/pimon/internal/tele"
	"github.com/temoto/pimon/log2"
)

const ContextKey = "run/state-global"

// Global is the process-wide record, threaded through context.
type Global struct {
	Alive        *alive.Alive
	BuildVersion string
	Config       *Config
	Log          *log2.Log
	Tele         tele.Teler
	Store        *status.Store
	Display      *lcd.TextDisplay
	Led          led.Led
	Sensor       sensor.Sensorer

	blinkStop chan struct{}
	blinkOnce sync.Once
}

func GetGlobal(ctx context.Context) *Global {
	v := ctx.Value(ContextKey)
	if v == nil {
		panic(fmt.Sprintf("context['%s'] is nil", ContextKey))
	}
	if g, ok := v.(*Global); ok {
		return g
	}
	panic(fmt.Sprintf("context['%s'] expected type *Global actual=%#v", ContextKey, v))
}

// If Init fails, consider Global is in broken state.
func (g *Global) Init(ctx context.Context, cfg *Config) error {
	g.Config = cfg
	g.blinkStop = make(chan struct{})
	g.Log.Infof("build version=%s", g.BuildVersion)

	// Tele is the remote error reporting mechanism, init before anything else.
	// Tele gets a Log clone before SetErrorFunc so its own errors don't recurse.
	if err := g.Tele.Init(ctx, g.Log.Clone(log2.LInfo), g.Config.Tele); err != nil {
		g.Tele = tele.Noop{}
		return errors.Annotate(err, "tele init")
	}
	g.Log.SetErrorFunc(g.Tele.Error)

	g.Store = status.NewStore()

	errch := make(chan error, 3)
	wg := sync.WaitGroup{}
	wg.Add(3)
	go helpers.WrapErrChan(&wg, errch, g.initDisplay)
	go helpers.WrapErrChan(&wg, errch, g.initLed)
	go helpers.WrapErrChan(&wg, errch, g.initSensor)
	wg.Wait()
	close(errch)
	if err := helpers.FoldErrChan(errch); err != nil {
		return errors.Annotate(err, "hardware init")
	}
	g.Log.Infof("hardware init complete mode=%s sensor=%s", g.Display.Mode(), g.Sensor.Name())
	return nil
}

func (g *Global) MustInit(ctx context.Context, cfg *Config) {
	if err := g.Init(ctx, cfg); err != nil {
		g.Fatal(err)
	}
}

func (g *Global) Error(err error, args ...interface{}) {
	if err != nil {
		if len(args) != 0 {
			msg := args[0].(string)
			args = args[1:]
			err = errors.Annotatef(err, msg, args...)
		}
		g.Tele.Error(err)
		g.Log.Error(err)
	}
}

func (g *Global) Fatal(err error, args ...interface{}) {
	if err != nil {
		g.Error(err, args...)
		g.StopWait(5 * time.Second)
		g.Tele.Close()
		g.Log.Fatal(err)
	}
}

func (g *Global) Stop() { g.Alive.Stop() }

func (g *Global) StopWait(timeout time.Duration) bool {
	g.Alive.Stop()
	select {
	case <-g.Alive.WaitChan():
		return true
	case <-time.After(timeout):
		return false
	}
}

// BlinkStopChan is closed after the first explicit LED write.
// The startup blink task watches it to yield control.
func (g *Global) BlinkStopChan() <-chan struct{} { return g.blinkStop }

func (g *Global) StopBlink() {
	g.blinkOnce.Do(func() { close(g.blinkStop) })
}

func (g *Global) TickInterval() time.Duration {
	return helpers.IntMillisecondDefault(g.Config.Monitor.IntervalMs, DefaultIntervalMs*time.Millisecond)
}
