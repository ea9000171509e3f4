package quiz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/kruai/backend/internal/models"
)

func testQuestion(correct int, hint string) models.Question {
	return models.Question{
		Text:               "Which planet is closest to the sun?",
		Options:            []string{"Mercury", "Venus", "Earth", "Mars"},
		CorrectAnswerIndex: correct,
		Explanation:        "Mercury orbits closest to the sun.",
		Hint:               hint,
	}
}

func testBank(n int) []models.Question {
	qs := make([]models.Question, n)
	for i := range qs {
		qs[i] = testQuestion(i%4, "think about heat")
		qs[i].Text = fmt.Sprintf("question %d", i+1)
	}
	return qs
}

func mustSession(t *testing.T, qs []models.Question) Session {
	t.Helper()
	s, err := NewSession("Planets", qs)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func mustSubmit(t *testing.T, s Session, option int) (Session, Feedback) {
	t.Helper()
	next, fb, err := s.SubmitAnswer(option)
	if err != nil {
		t.Fatalf("SubmitAnswer(%d): %v", option, err)
	}
	return next, fb
}

func TestNewSession(t *testing.T) {
	s := mustSession(t, testBank(3))
	if s.CurrentIndex != 0 || s.Score != 0 || s.Attempts != 0 {
		t.Errorf("unexpected initial state: %+v", s)
	}
	if s.Status != StatusUnanswered {
		t.Errorf("status = %q, want unanswered", s.Status)
	}
	if len(s.UserAnswers) != 3 {
		t.Fatalf("len(UserAnswers) = %d, want 3", len(s.UserAnswers))
	}
	for i, a := range s.UserAnswers {
		if a != nil {
			t.Errorf("UserAnswers[%d] = %d, want nil", i, *a)
		}
	}
}

func TestNewSession_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		bank    []models.Question
		wantErr error
	}{
		{"empty", nil, ErrNoQuestions},
		{"three options", []models.Question{{Text: "q", Options: []string{"a", "b", "c"}}}, ErrInvalidQuestion},
		{"index out of range", []models.Question{testQuestion(4, "")}, ErrInvalidQuestion},
		{"negative index", []models.Question{testQuestion(-1, "")}, ErrInvalidQuestion},
		{"blank text", []models.Question{{Text: " ", Options: []string{"a", "b", "c", "d"}}}, ErrInvalidQuestion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession("topic", tt.bank)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewSession error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestScenarioA_CorrectFirstTry(t *testing.T) {
	s := mustSession(t, []models.Question{testQuestion(2, "hint")})

	s, fb := mustSubmit(t, s, 2)
	if !fb.Applied || !fb.Correct || !fb.Completed {
		t.Errorf("feedback = %+v, want applied correct completed", fb)
	}
	if fb.Explanation == "" {
		t.Error("explanation should be exposed on completion")
	}
	if fb.Hint != "" {
		t.Errorf("hint should not appear on a correct answer, got %q", fb.Hint)
	}
	if s.Score != 1 {
		t.Errorf("score = %d, want 1", s.Score)
	}
	if s.UserAnswers[0] == nil || *s.UserAnswers[0] != 2 {
		t.Errorf("UserAnswers[0] = %v, want 2", s.UserAnswers[0])
	}
	if s.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", s.Attempts)
	}
	if !s.Completed() {
		t.Error("question should be completed")
	}
}

func TestScenarioB_TwoWrongThenCorrect(t *testing.T) {
	s := mustSession(t, []models.Question{testQuestion(1, "it is hot")})

	s, fb := mustSubmit(t, s, 0)
	if fb.Completed || fb.Attempts != 1 || fb.AttemptsLeft != 2 {
		t.Errorf("first wrong feedback = %+v", fb)
	}
	if fb.Hint != "it is hot" {
		t.Errorf("hint = %q, want %q", fb.Hint, "it is hot")
	}
	if s.Status != StatusRetrying {
		t.Errorf("status = %q, want retrying", s.Status)
	}
	if s.UserAnswers[0] != nil {
		t.Error("tentative answer must not be committed")
	}
	if s.SelectedOption == nil || *s.SelectedOption != 0 {
		t.Errorf("SelectedOption = %v, want 0", s.SelectedOption)
	}

	s, fb = mustSubmit(t, s, 3)
	if fb.Attempts != 2 || fb.AttemptsLeft != 1 || s.UserAnswers[0] != nil {
		t.Errorf("second wrong: feedback=%+v answers=%v", fb, s.UserAnswers)
	}

	s, fb = mustSubmit(t, s, 1)
	if !fb.Correct || !fb.Completed {
		t.Errorf("final feedback = %+v, want correct completed", fb)
	}
	if s.Score != 1 {
		t.Errorf("score = %d, want 1", s.Score)
	}
	if s.UserAnswers[0] == nil || *s.UserAnswers[0] != 1 {
		t.Errorf("UserAnswers[0] = %v, want 1", s.UserAnswers[0])
	}
	if s.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", s.Attempts)
	}
}

func TestScenarioC_ThreeWrong(t *testing.T) {
	s := mustSession(t, []models.Question{testQuestion(0, "hint")})

	s, _ = mustSubmit(t, s, 1)
	s, _ = mustSubmit(t, s, 2)
	s, fb := mustSubmit(t, s, 3)

	if !fb.Completed || fb.Correct {
		t.Errorf("feedback = %+v, want completed and not correct", fb)
	}
	if fb.Hint != "" {
		t.Errorf("hint should not appear after lock-out, got %q", fb.Hint)
	}
	if fb.Explanation == "" || fb.CorrectIndex == nil || *fb.CorrectIndex != 0 {
		t.Errorf("lock-out should reveal explanation and answer: %+v", fb)
	}
	if s.Score != 0 {
		t.Errorf("score = %d, want 0", s.Score)
	}
	if s.UserAnswers[0] == nil || *s.UserAnswers[0] != 3 {
		t.Errorf("UserAnswers[0] = %v, want 3", s.UserAnswers[0])
	}
	if !s.Completed() {
		t.Error("question should be completed")
	}
	if s.Attempts != MaxAttempts {
		t.Errorf("attempts = %d, want %d", s.Attempts, MaxAttempts)
	}
}

func TestScenarioD_TenCorrect(t *testing.T) {
	bank := testBank(10)
	s := mustSession(t, bank)

	var adv Advancement
	for i := range bank {
		s, _ = mustSubmit(t, s, bank[i].CorrectAnswerIndex)
		s, adv = s.Advance()
	}

	if !adv.Finished || adv.Snapshot == nil {
		t.Fatalf("expected finished with snapshot, got %+v", adv)
	}
	if s.Score != 10 {
		t.Errorf("score = %d, want 10", s.Score)
	}
	r := s.Result()
	if r.Percentage != 100 || r.Tier != TierExcellent {
		t.Errorf("result = %+v, want 100%% excellent", r)
	}
	if adv.Snapshot.TotalQuestions != 10 || adv.Snapshot.Score != 10 || adv.Snapshot.Topic != "Planets" {
		t.Errorf("snapshot = %+v", adv.Snapshot)
	}
	for i, a := range adv.Snapshot.UserAnswers {
		if a == nil || *a != bank[i].CorrectAnswerIndex {
			t.Errorf("snapshot answer %d = %v, want %d", i, a, bank[i].CorrectAnswerIndex)
		}
	}
}

func TestSubmitAnswer_IdempotentAfterCompleted(t *testing.T) {
	s := mustSession(t, testBank(2))
	s, _ = mustSubmit(t, s, 0)

	again, fb := mustSubmit(t, s, 2)
	if fb.Applied {
		t.Error("submission after completion should not apply")
	}
	if !fb.Completed || !fb.Correct {
		t.Errorf("locked feedback = %+v", fb)
	}
	if again.Score != s.Score || *again.UserAnswers[0] != 0 || *again.SelectedOption != 0 {
		t.Errorf("state changed after completion: %+v", again)
	}
}

func TestSubmitAnswer_InvalidOption(t *testing.T) {
	s := mustSession(t, testBank(1))
	for _, opt := range []int{-1, 4, 99} {
		next, _, err := s.SubmitAnswer(opt)
		if !errors.Is(err, ErrInvalidOption) {
			t.Errorf("SubmitAnswer(%d) error = %v, want ErrInvalidOption", opt, err)
		}
		if next.Attempts != 0 || next.SelectedOption != nil {
			t.Errorf("invalid option changed state: %+v", next)
		}
	}
}

func TestSubmitAnswer_DoesNotMutateInput(t *testing.T) {
	s := mustSession(t, testBank(1))
	_, _ = mustSubmit(t, s, 0)
	if s.Score != 0 || s.UserAnswers[0] != nil || s.Status != StatusUnanswered {
		t.Errorf("input session was mutated: %+v", s)
	}
}

func TestSubmitAnswer_NoHintWhenAbsent(t *testing.T) {
	s := mustSession(t, []models.Question{testQuestion(0, "")})
	_, fb := mustSubmit(t, s, 1)
	if fb.Hint != "" {
		t.Errorf("hint = %q, want empty", fb.Hint)
	}
}

func TestAdvance_NoopUnlessCompleted(t *testing.T) {
	s := mustSession(t, testBank(3))

	next, adv := s.Advance()
	if adv.Moved || adv.Finished || next.CurrentIndex != 0 {
		t.Errorf("advance on unanswered question moved: %+v", adv)
	}

	s, _ = mustSubmit(t, s, 1) // wrong, retrying
	next, adv = s.Advance()
	if adv.Moved || next.CurrentIndex != 0 {
		t.Errorf("advance while retrying moved: %+v", adv)
	}
}

func TestAdvance_ResetsPerQuestionState(t *testing.T) {
	s := mustSession(t, testBank(3))
	s, _ = mustSubmit(t, s, 1)
	s, _ = mustSubmit(t, s, 2)
	s, _ = mustSubmit(t, s, 3)

	s, adv := s.Advance()
	if !adv.Moved || adv.Finished {
		t.Fatalf("advancement = %+v, want moved", adv)
	}
	if s.CurrentIndex != 1 || s.Attempts != 0 || s.SelectedOption != nil || s.Status != StatusUnanswered {
		t.Errorf("state after advance = %+v", s)
	}
	if s.UserAnswers[1] != nil {
		t.Error("next question answer should be nil")
	}
}

func TestAdvance_SnapshotOnce(t *testing.T) {
	s := mustSession(t, testBank(1))
	s, _ = mustSubmit(t, s, 0)

	s, adv := s.Advance()
	if adv.Snapshot == nil || !s.Finished {
		t.Fatalf("expected snapshot on finish, got %+v", adv)
	}

	s, adv = s.Advance()
	if adv.Snapshot != nil || !adv.Finished {
		t.Errorf("second advance should not emit a snapshot: %+v", adv)
	}

	_, fb := mustSubmit(t, s, 1)
	if fb.Applied {
		t.Error("submission on a finished session should not apply")
	}
}

func TestRestart(t *testing.T) {
	s := mustSession(t, testBank(2))
	s.ID = "abc"
	s.UserID = 7
	s, _ = mustSubmit(t, s, 0)
	s, _ = s.Advance()

	fresh, err := s.Restart()
	if err != nil {
		t.Fatalf("Restart: %v", err)
	}
	if fresh.ID != "abc" || fresh.UserID != 7 {
		t.Errorf("identifiers lost: %+v", fresh)
	}
	if fresh.CurrentIndex != 0 || fresh.Score != 0 || fresh.UserAnswers[0] != nil {
		t.Errorf("restart did not reset: %+v", fresh)
	}
}

// TestInvariants drives every answer sequence over a short quiz and checks
// the score, attempt and committed-answer invariants after each step.
func TestInvariants(t *testing.T) {
	bank := []models.Question{testQuestion(0, "h"), testQuestion(3, "")}

	var walk func(s Session, depth int)
	walk = func(s Session, depth int) {
		if depth == 0 || s.Finished {
			return
		}
		for opt := 0; opt < 4; opt++ {
			next, _, err := s.SubmitAnswer(opt)
			if err != nil {
				t.Fatalf("SubmitAnswer: %v", err)
			}
			checkStep(t, s, next)
			advanced, _ := next.Advance()
			checkStep(t, next, advanced)
			walk(advanced, depth-1)
		}
	}
	walk(mustSession(t, bank), 6)
}

func checkStep(t *testing.T, prev, next Session) {
	t.Helper()
	if next.Score < prev.Score {
		t.Fatalf("score decreased from %d to %d", prev.Score, next.Score)
	}
	if next.Score > len(next.Questions) {
		t.Fatalf("score %d exceeds question count", next.Score)
	}
	if next.Attempts > MaxAttempts {
		t.Fatalf("attempts %d exceed max", next.Attempts)
	}
	if next.Attempts == MaxAttempts && !next.Completed() {
		t.Fatal("exhausted attempts must lock the question")
	}
	for i, a := range prev.UserAnswers {
		if a != nil && (next.UserAnswers[i] == nil || *next.UserAnswers[i] != *a) {
			t.Fatalf("committed answer %d was overwritten", i)
		}
	}
	if next.CurrentIndex != prev.CurrentIndex && !prev.Completed() {
		t.Fatal("index advanced past an incomplete question")
	}
	if !next.Completed() && next.UserAnswers[next.CurrentIndex] != nil {
		t.Fatal("answer committed before completion")
	}
}

func TestSnapshotDetails(t *testing.T) {
	s := mustSession(t, testBank(2))
	s, _ = mustSubmit(t, s, 0)
	s, _ = s.Advance()
	s, _ = mustSubmit(t, s, 1)
	_, adv := s.Advance()
	if adv.Snapshot == nil {
		t.Fatal("expected a snapshot on the last question")
	}
	d, err := adv.Snapshot.Details()
	if err != nil {
		t.Fatalf("Details: %v", err)
	}
	if d.Topic != "Planets" || len(d.Questions) != 2 || len(d.UserAnswers) != 2 {
		t.Errorf("unexpected details: %+v", d)
	}

	bad := Snapshot{Topic: "x", Questions: testBank(2), UserAnswers: []*int{nil}}
	if _, err := bad.Details(); err == nil {
		t.Error("expected misaligned snapshot to be rejected")
	}
}
