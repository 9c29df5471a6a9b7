// Package status holds the single shared SystemStatus record.
//
// One writer (monitor tick) and many readers (HTTP handlers) take
// exclusive short-lived access to the whole record, so a reader can
// never observe a sensor reading paired with a display frame from a
// different tick.
package status

import (
	"sync"

	"github.com/temoto/atomic_clock"
	"github.com/temoto/pimon/helpers"
	"github.com/temoto/pimon/internal/sensor"
)

// SystemStatus is a point-in-time snapshot, safe to keep after return.
type SystemStatus struct {
	UptimeSeconds  int64           `json:"uptime_seconds"`
	Led            bool            `json:"led_status"`
	LastReading    *sensor.Reading `json:"last_sensor_reading"`
	DisplayContent string          `json:"display_content"`
}

type Store struct {
	mu      sync.Mutex
	start   *atomic_clock.Clock
	led     bool
	reading *sensor.Reading
	content string
}

func NewStore() *Store {
	return &Store{start: atomic_clock.Now()}
}

// CommitTick publishes one tick's reading and rendered display frame in
// a single critical section.
func (self *Store) CommitTick(r sensor.Reading, content string) {
	helpers.WithLock(&self.mu, func() {
		self.reading = &r
		self.content = content
	})
}

func (self *Store) SetLed(on bool) {
	helpers.WithLock(&self.mu, func() { self.led = on })
}

func (self *Store) Led() bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.led
}

// Reading returns the last committed reading, nil before the first tick.
func (self *Store) Reading() *sensor.Reading {
	self.mu.Lock()
	defer self.mu.Unlock()
	if self.reading == nil {
		return nil
	}
	r := *self.reading
	return &r
}

func (self *Store) Content() string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.content
}

func (self *Store) Uptime() int64 {
	return int64(atomic_clock.Since(self.start).Seconds())
}

func (self *Store) Snapshot() SystemStatus {
	self.mu.Lock()
	defer self.mu.Unlock()
	s := SystemStatus{
		UptimeSeconds:  int64(atomic_clock.Since(self.start).Seconds()),
		Led:            self.led,
		DisplayContent: self.content,
	}
	if self.reading != nil {
		r := *self.reading
		s.LastReading = &r
	}
	return s
}
