// Package quiz holds the quiz progression state machine. Transitions are
// pure: each one takes a Session value and returns the next one, leaving
// the input untouched.
package quiz

import (
	"errors"
	"fmt"

	"github.com/kruai/backend/internal/models"
)

// MaxAttempts is the retry budget for a single question.
const MaxAttempts = 3

var (
	ErrNoQuestions     = errors.New("quiz has no questions")
	ErrInvalidQuestion = errors.New("invalid question")
	ErrInvalidOption   = errors.New("option index out of range")
)

// Status is the state of the current question.
type Status string

const (
	StatusUnanswered Status = "unanswered"
	StatusRetrying   Status = "retrying"
	StatusCompleted  Status = "completed"
)

// Session is one quiz attempt. UserAnswers is index-aligned with Questions.
type Session struct {
	ID             string            `json:"id"`
	UserID         int64             `json:"user_id"`
	Topic          string            `json:"topic"`
	Questions      []models.Question `json:"questions"`
	CurrentIndex   int               `json:"current_index"`
	Score          int               `json:"score"`
	Attempts       int               `json:"attempts"`
	SelectedOption *int              `json:"selected_option,omitempty"`
	Status         Status            `json:"status"`
	Finished       bool              `json:"finished"`
	UserAnswers    []*int            `json:"user_answers"`
}

// NewSession validates the question bank and returns a session positioned
// on the first question.
func NewSession(topic string, questions []models.Question) (Session, error) {
	if len(questions) == 0 {
		return Session{}, ErrNoQuestions
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return Session{}, fmt.Errorf("%w: question %d: %v", ErrInvalidQuestion, i+1, err)
		}
	}
	bank := make([]models.Question, len(questions))
	copy(bank, questions)
	return Session{
		Topic:       topic,
		Questions:   bank,
		Status:      StatusUnanswered,
		UserAnswers: make([]*int, len(bank)),
	}, nil
}

// Completed reports whether the current question is locked.
func (s Session) Completed() bool {
	return s.Status == StatusCompleted
}

// IsLast reports whether the current question is the final one.
func (s Session) IsLast() bool {
	return s.CurrentIndex == len(s.Questions)-1
}

// Current returns the active question.
func (s Session) Current() (models.Question, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return models.Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Feedback describes the outcome of one SubmitAnswer call.
type Feedback struct {
	Applied      bool   `json:"applied"`
	Correct      bool   `json:"correct"`
	Completed    bool   `json:"completed"`
	Attempts     int    `json:"attempts"`
	AttemptsLeft int    `json:"attempts_left"`
	Hint         string `json:"hint,omitempty"`
	Explanation  string `json:"explanation,omitempty"`
	CorrectIndex *int   `json:"correct_index,omitempty"`
}

// SubmitAnswer evaluates option against the current question.
//
// A locked question or a finished session is left as is and the returned
// Feedback has Applied=false. A wrong answer below the retry budget only
// moves the question to Retrying; UserAnswers is written once, when the
// question reaches Completed.
func (s Session) SubmitAnswer(option int) (Session, Feedback, error) {
	q, ok := s.Current()
	if !ok {
		return s, Feedback{}, ErrNoQuestions
	}
	if s.Finished || s.Completed() {
		return s, s.lockedFeedback(q), nil
	}
	if option < 0 || option >= len(q.Options) {
		return s, Feedback{}, ErrInvalidOption
	}

	next := s.clone()
	next.SelectedOption = intPtr(option)

	if option == q.CorrectAnswerIndex {
		next.Status = StatusCompleted
		next.Score++
		next.UserAnswers[next.CurrentIndex] = intPtr(option)
		next.Attempts = 0
		return next, Feedback{
			Applied:      true,
			Correct:      true,
			Completed:    true,
			Explanation:  q.Explanation,
			CorrectIndex: intPtr(q.CorrectAnswerIndex),
		}, nil
	}

	next.Attempts++
	if next.Attempts >= MaxAttempts {
		next.Attempts = MaxAttempts
		next.Status = StatusCompleted
		next.UserAnswers[next.CurrentIndex] = intPtr(option)
		return next, Feedback{
			Applied:      true,
			Completed:    true,
			Attempts:     next.Attempts,
			Explanation:  q.Explanation,
			CorrectIndex: intPtr(q.CorrectAnswerIndex),
		}, nil
	}

	next.Status = StatusRetrying
	fb := Feedback{
		Applied:      true,
		Attempts:     next.Attempts,
		AttemptsLeft: MaxAttempts - next.Attempts,
	}
	if q.HasHint() {
		fb.Hint = q.Hint
	}
	return next, fb, nil
}

func (s Session) lockedFeedback(q models.Question) Feedback {
	fb := Feedback{Attempts: s.Attempts, Completed: s.Completed()}
	if fb.Completed {
		fb.Explanation = q.Explanation
		fb.CorrectIndex = intPtr(q.CorrectAnswerIndex)
		if a := s.UserAnswers[s.CurrentIndex]; a != nil {
			fb.Correct = *a == q.CorrectAnswerIndex
		}
	}
	return fb
}

// Snapshot is what gets persisted when the last question is left.
type Snapshot struct {
	Topic          string            `json:"topic"`
	Questions      []models.Question `json:"questions"`
	UserAnswers    []*int            `json:"user_answers"`
	Score          int               `json:"score"`
	TotalQuestions int               `json:"total_questions"`
}

// Details converts the snapshot into its stored form.
func (sn Snapshot) Details() (*models.QuizDetails, error) {
	return models.NewQuizDetails(sn.Topic, sn.Questions, sn.UserAnswers)
}

// Advancement reports what Advance did.
type Advancement struct {
	Moved    bool      `json:"moved"`
	Finished bool      `json:"finished"`
	Snapshot *Snapshot `json:"-"`
}

// Advance moves past a Completed question. On the last question it marks
// the session finished and returns the snapshot exactly once.
func (s Session) Advance() (Session, Advancement) {
	if s.Finished {
		return s, Advancement{Finished: true}
	}
	if !s.Completed() {
		return s, Advancement{}
	}

	next := s.clone()
	if next.IsLast() {
		next.Finished = true
		answers := make([]*int, len(next.UserAnswers))
		copy(answers, next.UserAnswers)
		return next, Advancement{
			Finished: true,
			Snapshot: &Snapshot{
				Topic:          next.Topic,
				Questions:      next.Questions,
				UserAnswers:    answers,
				Score:          next.Score,
				TotalQuestions: len(next.Questions),
			},
		}
	}

	next.CurrentIndex++
	next.SelectedOption = nil
	next.Status = StatusUnanswered
	next.Attempts = 0
	return next, Advancement{Moved: true}
}

// Restart returns a fresh session over the same questions, keeping the
// session and owner identifiers.
func (s Session) Restart() (Session, error) {
	fresh, err := NewSession(s.Topic, s.Questions)
	if err != nil {
		return s, err
	}
	fresh.ID = s.ID
	fresh.UserID = s.UserID
	return fresh, nil
}

func (s Session) clone() Session {
	next := s
	next.UserAnswers = make([]*int, len(s.UserAnswers))
	copy(next.UserAnswers, s.UserAnswers)
	if s.SelectedOption != nil {
		next.SelectedOption = intPtr(*s.SelectedOption)
	}
	return next
}

func intPtr(v int) *int {
	return &v
}
