// Package sensor produces one temperature/humidity reading per monitor tick.
package sensor

import (
	"math/rand"
	"sync"
	"time"
)

// Simulated value bounds. Readings outside are a bug.
const (
	TempMin = 18.0
	TempMax = 35.0
	HumMin  = 30.0
	HumMax  = 80.0
)

// Reading is immutable once produced, replaced wholesale on each tick.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Timestamp   int64   `json:"timestamp"`
}

type Sensorer interface {
	Name() string
	Read() (Reading, error)
}

// Sim generates pseudo-random readings within the documented bounds.
// Intentionally a stub: no smoothing, no outlier rejection.
type Sim struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSim() *Sim {
	return &Sim{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (self *Sim) Name() string { return "sim" }

func (self *Sim) Read() (Reading, error) {
	self.mu.Lock()
	t := TempMin + self.rnd.Float64()*(TempMax-TempMin)
	h := HumMin + self.rnd.Float64()*(HumMax-HumMin)
	self.mu.Unlock()
	return Reading{
		Temperature: t,
		Humidity:    h,
		Timestamp:   time.Now().Unix(),
	}, nil
}
