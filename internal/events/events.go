package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType identifies the published event kinds.
type EventType string

const (
	EventAssessmentPublished EventType = "assessment.published"
	EventSubmissionEvaluated EventType = "submission.evaluated"
)

// Event is the envelope for everything this service publishes.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Data      interface{} `json:"data"`
}

const (
	eventSource  = "evaluation-service"
	eventVersion = "1.0"
)

// NewEvent wraps a payload in the standard envelope.
func NewEvent(eventType EventType, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

// ===== PAYLOADS =====

type AssessmentPublishedEvent struct {
	AssessmentID string `json:"assessment_id"`
	Title        string `json:"title"`
	TeacherID    string `json:"teacher_id"`
	TotalMarks   int    `json:"total_marks"`
}

type SubmissionEvaluatedEvent struct {
	SubmissionID string    `json:"submission_id"`
	AssessmentID string    `json:"assessment_id"`
	StudentID    string    `json:"student_id"`
	Score        int       `json:"score"`
	TotalMarks   int       `json:"total_marks"`
	Handwritten  bool      `json:"handwritten"`
	EvaluatedAt  time.Time `json:"evaluated_at"`
}
