package models

import (
	"time"
)

type AssessmentStatus string

const (
	StatusDraft     AssessmentStatus = "Draft"
	StatusPublished AssessmentStatus = "Published"
	StatusArchived  AssessmentStatus = "Archived"
)

// Assessment is a named set of graded questions authored by a teacher.
// TotalMarks is always derived from the questions; caller-supplied values
// are ignored at creation time.
type Assessment struct {
	ID          string           `json:"id" gorm:"primaryKey;size:64"`
	Title       string           `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Description string           `json:"description" gorm:"type:text" validate:"max=1000"`
	TotalMarks  int              `json:"total_marks" gorm:"not null"`
	Status      AssessmentStatus `json:"status" gorm:"default:Draft;index" validate:"omitempty,oneof=Draft Published Archived"`
	TeacherID   string           `json:"teacher_id" gorm:"not null;size:64;index" validate:"required"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relations
	Questions []Question `json:"questions" gorm:"foreignKey:AssessmentID;constraint:OnDelete:CASCADE" validate:"required,min=1,dive"`
}

// Question is owned by exactly one assessment and is immutable once the
// assessment is published.
type Question struct {
	ID            string `json:"id" gorm:"primaryKey;size:64"`
	AssessmentID  string `json:"assessment_id" gorm:"not null;size:64;index"`
	Text          string `json:"text" gorm:"not null;type:text" validate:"required,min=1"`
	Marks         int    `json:"marks" gorm:"not null" validate:"required,min=1"`
	CorrectAnswer string `json:"correct_answer" gorm:"not null;type:text" validate:"required"`
	Position      int    `json:"position" gorm:"not null"`
}

func (Assessment) TableName() string {
	return "assessments"
}

func (Question) TableName() string {
	return "questions"
}

// ComputeTotalMarks sums the question marks. It is the only source of truth
// for Assessment.TotalMarks.
func (a *Assessment) ComputeTotalMarks() int {
	total := 0
	for _, q := range a.Questions {
		total += q.Marks
	}
	return total
}

// QuestionByID looks a question up within the assessment.
func (a *Assessment) QuestionByID(id string) (*Question, bool) {
	for i := range a.Questions {
		if a.Questions[i].ID == id {
			return &a.Questions[i], true
		}
	}
	return nil, false
}

// AnswerKeyEntry is the per-question slice of the key handed to the semantic
// evaluator.
type AnswerKeyEntry struct {
	QuestionID    string `json:"question_id"`
	CorrectAnswer string `json:"correct_answer"`
}

// AnswerKey returns the question id / correct answer pairs in question order.
func (a *Assessment) AnswerKey() []AnswerKeyEntry {
	key := make([]AnswerKeyEntry, 0, len(a.Questions))
	for _, q := range a.Questions {
		key = append(key, AnswerKeyEntry{QuestionID: q.ID, CorrectAnswer: q.CorrectAnswer})
	}
	return key
}
