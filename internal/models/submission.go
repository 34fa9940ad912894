package models

import (
	"time"
)

// AnswerResult is the scored arm of an answer. A nil Result on Answer means
// the answer has not been evaluated (or its question id matched nothing in
// the assessment and it was passed through unscored).
type AnswerResult struct {
	Correct      bool `json:"correct"`
	MarksAwarded int  `json:"marks_awarded"`
}

// Answer is one student answer to one question. Result is set exactly once
// by an evaluator.
type Answer struct {
	QuestionID string        `json:"question_id" validate:"required"`
	Answer     string        `json:"answer"`
	Result     *AnswerResult `json:"result,omitempty"`
}

// Scored reports whether an evaluator has assigned a result.
func (a *Answer) Scored() bool {
	return a.Result != nil
}

// Submission is one student's attempt at an assessment. Answers keep the
// question order of the assessment. Score is always the sum of awarded marks.
type Submission struct {
	ID           string    `json:"id"`
	AssessmentID string    `json:"assessment_id" validate:"required"`
	StudentID    string    `json:"student_id" validate:"required"`
	SubmittedAt  time.Time `json:"submitted_at"`
	Answers      []Answer  `json:"answers"`
	Score        int       `json:"score"`
	Evaluated    bool      `json:"evaluated"`
}

// Clone returns a deep copy so stored submissions cannot be mutated through
// query results.
func (s *Submission) Clone() *Submission {
	cp := *s
	cp.Answers = make([]Answer, len(s.Answers))
	for i, ans := range s.Answers {
		cp.Answers[i] = ans
		if ans.Result != nil {
			r := *ans.Result
			cp.Answers[i].Result = &r
		}
	}
	return &cp
}
