package lcd

import (
	"fmt"
	"sync"
)

// NewMockTextDisplay is the simulation variant: frame lives in memory,
// Content() is the only observable output.
func NewMockTextDisplay(opt Config) (*TextDisplay, *MockDevicer) {
	dev := new(MockDevicer)
	display, err := NewTextDisplay(dev, opt)
	if err != nil {
		panic(err)
	}
	return display, dev
}

// MockDevicer records writes for tests and costs nothing at runtime.
type MockDevicer struct {
	mu       sync.Mutex
	y, x     uint8
	writes   []string
	presents int
}

func (self *MockDevicer) Mode() string { return ModeSimulation }

func (self *MockDevicer) Clear() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.writes = nil
	return nil
}

func (self *MockDevicer) CursorYX(y, x uint8) bool {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.y, self.x = y, x
	return true
}

func (self *MockDevicer) Write(b []byte, c Color) error {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.writes = append(self.writes, fmt.Sprintf("%d,%d:%s", self.y, self.x, string(b)))
	return nil
}

func (self *MockDevicer) Present() error {
	self.mu.Lock()
	defer self.mu.Unlock()
	self.presents++
	return nil
}

func (self *MockDevicer) Writes() []string {
	self.mu.Lock()
	defer self.mu.Unlock()
	return append([]string(nil), self.writes...)
}

func (self *MockDevicer) Presents() int {
	self.mu.Lock()
	defer self.mu.Unlock()
	return self.presents
}
