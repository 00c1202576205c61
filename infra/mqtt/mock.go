package mqtt

import (
	"fmt"
	"sync"

	"school-transport-service/core/notify"
)

// MockPublisher records published events for tests.
type MockPublisher struct {
	mu     sync.Mutex
	Events []notify.Event
	Fail   bool
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

// Publish records the event or returns an error when configured to fail.
func (m *MockPublisher) Publish(ev notify.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Events = append(m.Events, ev)
	return nil
}

// Published returns a copy of the recorded events.
func (m *MockPublisher) Published() []notify.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]notify.Event(nil), m.Events...)
}
