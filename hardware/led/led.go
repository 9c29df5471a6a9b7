// Package led toggles the status LED: an atomic bool in simulation, a
// gpiochip output line on real hardware (build tag pimon_hardware).
package led

import "sync/atomic"

type Config struct {
	PinChip string // e.g. "/dev/gpiochip0"
	Pin     int    // BCM line number
	Blink   bool   // 1Hz blink until first API write
}

type Led interface {
	Set(on bool) error
	Get() bool
}

// Sim satisfies Led without hardware.
type Sim struct{ v uint32 }

func NewSim() *Sim { return &Sim{} }

func (self *Sim) Set(on bool) error {
	var v uint32
	if on {
		v = 1
	}
	atomic.StoreUint32(&self.v, v)
	return nil
}

func (self *Sim) Get() bool { return atomic.LoadUint32(&self.v) != 0 }
