package quiz

import (
	"time"

	"github.com/kruai/backend/internal/models"
)

// OptionMark tells the review screen how to paint an option.
type OptionMark string

const (
	MarkNone      OptionMark = "none"
	MarkCorrect   OptionMark = "correct"
	MarkWrongPick OptionMark = "wrong_pick"
)

type ReviewOption struct {
	Index int        `json:"index"`
	Text  string     `json:"text"`
	Mark  OptionMark `json:"mark"`
}

type ReviewItem struct {
	Number       int            `json:"number"`
	Question     string         `json:"question"`
	Options      []ReviewOption `json:"options"`
	CorrectIndex int            `json:"correct_index"`
	UserAnswer   *int           `json:"user_answer"`
	IsCorrect    bool           `json:"is_correct"`
	Explanation  string         `json:"explanation"`
}

type ReviewSheet struct {
	RecordID  int64        `json:"record_id"`
	Topic     string       `json:"topic"`
	Result    Result       `json:"result"`
	Timestamp time.Time    `json:"timestamp"`
	Items     []ReviewItem `json:"items"`
}

// Review replays a stored record. The record is only read.
func Review(record models.QuizRecord) (*ReviewSheet, error) {
	if record.Details == nil {
		return nil, &models.MissingDataError{RecordID: record.ID, Reason: "record has no details"}
	}
	if err := record.Details.Validate(); err != nil {
		return nil, &models.MissingDataError{RecordID: record.ID, Reason: err.Error()}
	}

	d := record.Details
	sheet := &ReviewSheet{
		RecordID:  record.ID,
		Topic:     d.Topic,
		Result:    ComputeResult(record.Score, record.TotalQuestions),
		Timestamp: record.Timestamp,
		Items:     make([]ReviewItem, len(d.Questions)),
	}

	for i, q := range d.Questions {
		var answer *int
		if a := d.UserAnswers[i]; a != nil {
			answer = intPtr(*a)
		}
		item := ReviewItem{
			Number:       i + 1,
			Question:     q.Text,
			CorrectIndex: q.CorrectAnswerIndex,
			UserAnswer:   answer,
			IsCorrect:    answer != nil && *answer == q.CorrectAnswerIndex,
			Explanation:  q.Explanation,
			Options:      make([]ReviewOption, len(q.Options)),
		}
		for j, text := range q.Options {
			mark := MarkNone
			switch {
			case j == q.CorrectAnswerIndex:
				mark = MarkCorrect
			case answer != nil && j == *answer:
				mark = MarkWrongPick
			}
			item.Options[j] = ReviewOption{Index: j, Text: text, Mark: mark}
		}
		sheet.Items[i] = item
	}
	return sheet, nil
}
