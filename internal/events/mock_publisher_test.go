package events

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestMockEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	t.Run("fills event defaults", func(t *testing.T) {
		err := publisher.Publish(ctx, Event{
			Type: EventCourseEnrolled,
			Data: map[string]string{"course_id": "c1", "user_id": "u1"},
		})
		if err != nil {
			t.Fatalf("Publish failed: %v", err)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if event.ID == "" {
			t.Error("Event ID should not be empty")
		}
		if event.Source != "platform-service" {
			t.Errorf("Expected source 'platform-service', got %q", event.Source)
		}
		if event.Version != "1.0" {
			t.Errorf("Expected version '1.0', got %q", event.Version)
		}
		if event.Timestamp.IsZero() {
			t.Error("Event timestamp should not be zero")
		}
		if event.Type != "course.enrolled" {
			t.Errorf("Expected type 'course.enrolled', got %q", event.Type)
		}
	})

	t.Run("clear events", func(t *testing.T) {
		publisher.ClearEvents()
		if got := publisher.GetPublishedEvents(); len(got) != 0 {
			t.Errorf("Expected empty event list after clear, got %d", len(got))
		}
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		publisher.ClearEvents()
		if err := publisher.Publish(ctx, Event{Type: EventUserRegistered}); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}

		first := publisher.GetPublishedEvents()
		first[0].Type = "tampered"

		second := publisher.GetPublishedEvents()
		if second[0].Type != EventUserRegistered {
			t.Error("Mutating the returned slice must not affect the publisher")
		}
	})
}
