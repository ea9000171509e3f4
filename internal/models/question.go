package models

import (
	"fmt"
	"strings"
)

// OptionsPerQuestion is the fixed number of choices shown for every question.
const OptionsPerQuestion = 4

// Question is one multiple-choice item. JSON names match the records
// stored by earlier versions of the app so old rows decode unchanged.
type Question struct {
	Text               string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex"`
	Explanation        string   `json:"explanation"`
	Hint               string   `json:"hint,omitempty"`
}

// Validate reports the first structural problem with q, or nil.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("empty question text")
	}
	if len(q.Options) != OptionsPerQuestion {
		return fmt.Errorf("expected %d options, got %d", OptionsPerQuestion, len(q.Options))
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("option %d is empty", i)
		}
	}
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		return fmt.Errorf("correctAnswerIndex %d out of range [0, %d]", q.CorrectAnswerIndex, len(q.Options)-1)
	}
	return nil
}

// HasHint reports whether the question carries a retry hint.
func (q Question) HasHint() bool {
	return strings.TrimSpace(q.Hint) != ""
}
