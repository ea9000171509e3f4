package quiz

// View is the client-facing projection of a session. The answer key is
// only revealed once the current question is locked.
type View struct {
	ID             string   `json:"id"`
	Topic          string   `json:"topic"`
	QuestionNumber int      `json:"question_number"`
	TotalQuestions int      `json:"total_questions"`
	Score          int      `json:"score"`
	Attempts       int      `json:"attempts"`
	AttemptsLeft   int      `json:"attempts_left"`
	Status         Status   `json:"status"`
	Finished       bool     `json:"finished"`
	IsLast         bool     `json:"is_last"`
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	SelectedOption *int     `json:"selected_option,omitempty"`
	CorrectIndex   *int     `json:"correct_index,omitempty"`
	Hint           string   `json:"hint,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
}

func (s Session) View() View {
	v := View{
		ID:             s.ID,
		Topic:          s.Topic,
		QuestionNumber: s.CurrentIndex + 1,
		TotalQuestions: len(s.Questions),
		Score:          s.Score,
		Attempts:       s.Attempts,
		Status:         s.Status,
		Finished:       s.Finished,
		IsLast:         s.IsLast(),
		SelectedOption: s.SelectedOption,
	}
	if !s.Completed() {
		v.AttemptsLeft = MaxAttempts - s.Attempts
	}

	q, ok := s.Current()
	if !ok {
		return v
	}
	v.Question = q.Text
	v.Options = append([]string(nil), q.Options...)

	switch s.Status {
	case StatusRetrying:
		if q.HasHint() {
			v.Hint = q.Hint
		}
	case StatusCompleted:
		v.CorrectIndex = intPtr(q.CorrectAnswerIndex)
		v.Explanation = q.Explanation
	}
	return v
}
