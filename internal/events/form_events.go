package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the form lifecycle events published by the service
type EventType string

const (
	// Form events
	EventFormPublished EventType = "form.published"
	EventFormClosed    EventType = "form.closed"
	EventFormArchived  EventType = "form.archived"

	// Response events
	EventResponseSubmitted EventType = "response.submitted"
)

const (
	EventSource  = "form-service"
	EventVersion = "1.0"
)

// FormEvent is the envelope of every event on the form topic
type FormEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Form event payloads

type FormStatusChangedEvent struct {
	FormID         uint   `json:"form_id"`
	FormTitle      string `json:"form_title"`
	PreviousStatus string `json:"previous_status"`
	Status         string `json:"status"`
	QuestionCount  int    `json:"question_count"`
	ChangedBy      string `json:"changed_by"`
}

// Response event payloads

type ResponseSubmittedEvent struct {
	ResponseID   uint      `json:"response_id"`
	FormID       uint      `json:"form_id"`
	FormTitle    string    `json:"form_title"`
	IsAnonymous  bool      `json:"is_anonymous"`
	RespondentID *string   `json:"respondent_id,omitempty"`
	AnswerCount  int       `json:"answer_count"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// NewFormEvent stamps a payload with a fresh id and the service metadata
func NewFormEvent(eventType EventType, data interface{}) *FormEvent {
	return &FormEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Source:    EventSource,
		Version:   EventVersion,
		Data:      data,
	}
}

// StatusEventType maps a target status to the event announcing it. Drafts emit nothing.
func StatusEventType(status string) (EventType, bool) {
	switch status {
	case "published":
		return EventFormPublished, true
	case "closed":
		return EventFormClosed, true
	case "archived":
		return EventFormArchived, true
	}
	return "", false
}
