package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MockEventPublisher records events in memory for tests and local runs.
type MockEventPublisher struct {
	mu     sync.Mutex
	events []Event
	logger *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (p *MockEventPublisher) Publish(_ context.Context, event Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Source == "" {
		event.Source = eventSource
	}
	if event.Version == "" {
		event.Version = eventVersion
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()

	p.logger.Debug("mock publisher recorded event",
		"event_id", event.ID,
		"event_type", event.Type)

	return nil
}

// GetPublishedEvents returns a copy of everything published so far.
func (p *MockEventPublisher) GetPublishedEvents() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}

// ClearEvents empties the recorded event list.
func (p *MockEventPublisher) ClearEvents() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

func (p *MockEventPublisher) Close() error {
	return nil
}
