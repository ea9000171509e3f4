package models

import (
	"fmt"
	"time"
)

// QuizDetails is the snapshot stored with a finished quiz. Questions and
// UserAnswers are nil (not empty) when a legacy record lacks them.
type QuizDetails struct {
	Topic       string     `json:"topic"`
	Questions   []Question `json:"questions,omitempty"`
	UserAnswers []*int     `json:"userAnswers,omitempty"`
}

// NewQuizDetails builds a snapshot, enforcing index alignment between
// questions and answers.
func NewQuizDetails(topic string, questions []Question, answers []*int) (*QuizDetails, error) {
	d := &QuizDetails{Topic: topic, Questions: questions, UserAnswers: answers}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate checks that the snapshot is complete and aligned.
func (d *QuizDetails) Validate() error {
	if d.Questions == nil {
		return fmt.Errorf("details missing questions")
	}
	if d.UserAnswers == nil {
		return fmt.Errorf("details missing userAnswers")
	}
	if len(d.UserAnswers) != len(d.Questions) {
		return fmt.Errorf("userAnswers has %d entries for %d questions", len(d.UserAnswers), len(d.Questions))
	}
	return nil
}

type QuizRecord struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Details        *QuizDetails `json:"details,omitempty"`
	Timestamp      time.Time    `json:"timestamp"`
}

type SaveQuizResultRequest struct {
	UserID         int64        `json:"user_id"`
	Score          int          `json:"score"`
	TotalQuestions int          `json:"total_questions"`
	Details        *QuizDetails `json:"details,omitempty"`
}

// Validate checks score bounds and, when present, the snapshot alignment.
func (r SaveQuizResultRequest) Validate() error {
	if r.UserID <= 0 {
		return fmt.Errorf("user_id is required")
	}
	if r.TotalQuestions < 0 {
		return fmt.Errorf("total_questions must not be negative")
	}
	if r.Score < 0 || r.Score > r.TotalQuestions {
		return fmt.Errorf("score must be between 0 and total_questions")
	}
	if r.Details != nil {
		if err := r.Details.Validate(); err != nil {
			return err
		}
		if len(r.Details.Questions) != r.TotalQuestions {
			return fmt.Errorf("details has %d questions, total_questions is %d", len(r.Details.Questions), r.TotalQuestions)
		}
	}
	return nil
}
