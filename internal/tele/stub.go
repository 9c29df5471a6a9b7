package tele

import (
	"context"
	"sync"

	"github.com/temoto/pimon/internal/sensor"
	"github.com/temoto/pimon/log2"
)

// Stub records calls for tests.
type Stub struct {
	mu       sync.Mutex
	Readings []sensor.Reading
	States   []string
	Errors   []error
}

func NewStub() *Stub { return &Stub{} }

func (self *Stub) Init(context.Context, *log2.Log, Config) error { return nil }

func (self *Stub) Reading(r sensor.Reading) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.Readings = append(self.Readings, r)
}

func (self *Stub) State(s string) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.States = append(self.States, s)
}

func (self *Stub) Error(e error) {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.Errors = append(self.Errors, e)
}

func (self *Stub) Close() {}

func (self *Stub) ReadingCount() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return len(self.Readings)
}

var _ Teler = &Stub{}
