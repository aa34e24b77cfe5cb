package events

import (
	"context"
	"time"
)

// Event is the envelope for every message published to the activity topic.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Source    string    `json:"source"`
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Event types emitted by the platform.
const (
	EventUserRegistered   = "user.registered"
	EventCourseCreated    = "course.created"
	EventCourseEnrolled   = "course.enrolled"
	EventCourseCompleted  = "course.completed"
	EventCommunityCreated = "community.created"
	EventCommunityJoined  = "community.joined"
)

const (
	eventSource  = "platform-service"
	eventVersion = "1.0"
)

// EventPublisher publishes activity events. Implementations must be safe for
// concurrent use.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}
