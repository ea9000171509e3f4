package sessions

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/models"
	"github.com/kruai/backend/internal/quiz"
)

// QuestionSource produces a question bank for a summary.
type QuestionSource interface {
	GenerateQuiz(ctx context.Context, summary models.SummaryData) ([]models.Question, error)
}

// ResultSaver persists a finished attempt.
type ResultSaver interface {
	Save(ctx context.Context, req models.SaveQuizResultRequest) (*models.QuizRecord, error)
}

// Outcome is the result of Advance.
type Outcome struct {
	Session quiz.Session
	Moved   bool
	// Finished is set once the last question has been left.
	Finished bool
	Result   *quiz.Result
	Record   *models.QuizRecord
	Saved    bool
	SaveErr  error
}

type Service struct {
	store     Store
	questions QuestionSource
	results   ResultSaver
	ttl       time.Duration
	log       *logger.Logger
	newID     func() string

	locksMu sync.Mutex
	locks   map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func NewService(store Store, questions QuestionSource, results ResultSaver, ttl time.Duration, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		questions: questions,
		results:   results,
		ttl:       ttl,
		log:       log,
		newID:     uuid.NewString,
		locks:     make(map[string]*sessionLock),
	}
}

// lock serialises read-modify-write cycles on one session id within this
// process. An entry lives only while some call holds or waits for it.
func (s *Service) lock(id string) func() {
	s.locksMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.locksMu.Unlock()
	}
}

// Start generates a question bank for summary and opens a session owned by
// userID. Nothing is stored when generation fails.
func (s *Service) Start(ctx context.Context, userID int64, summary models.SummaryData) (quiz.Session, error) {
	if strings.TrimSpace(summary.SummaryContent) == "" {
		return quiz.Session{}, models.Invalid("summary is required")
	}

	questions, err := s.questions.GenerateQuiz(ctx, summary)
	if err != nil {
		return quiz.Session{}, err
	}

	sess, err := quiz.NewSession(summary.OriginalTopic, questions)
	if err != nil {
		return quiz.Session{}, &models.GenerationError{Op: "quiz", Err: err}
	}
	sess.ID = s.newID()
	sess.UserID = userID

	if err := s.store.Put(ctx, Entry{Session: sess}, s.ttl); err != nil {
		return quiz.Session{}, fmt.Errorf("store session: %w", err)
	}
	s.log.Info("quiz session started", "session_id", sess.ID, "user_id", userID, "questions", len(questions))
	return sess, nil
}

func (s *Service) load(ctx context.Context, userID int64, id string) (Entry, error) {
	e, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return Entry{}, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
		}
		return Entry{}, fmt.Errorf("load session: %w", err)
	}
	if e.Session.UserID != userID {
		return Entry{}, fmt.Errorf("session %s: %w", id, models.ErrForbidden)
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, userID int64, id string) (quiz.Session, error) {
	e, err := s.load(ctx, userID, id)
	if err != nil {
		return quiz.Session{}, err
	}
	return e.Session, nil
}

func (s *Service) Answer(ctx context.Context, userID int64, id string, option int) (quiz.Session, quiz.Feedback, error) {
	unlock := s.lock(id)
	defer unlock()

	e, err := s.load(ctx, userID, id)
	if err != nil {
		return quiz.Session{}, quiz.Feedback{}, err
	}

	next, fb, err := e.Session.SubmitAnswer(option)
	if err != nil {
		return e.Session, fb, err
	}
	if !fb.Applied {
		return next, fb, nil
	}

	e.Session = next
	if err := s.store.Put(ctx, e, s.ttl); err != nil {
		return quiz.Session{}, quiz.Feedback{}, fmt.Errorf("store session: %w", err)
	}
	return next, fb, nil
}

// Advance moves to the next question. Leaving the last question persists
// the attempt; the session is deleted when that succeeds and kept, with
// the pending snapshot, when it does not. Advancing a finished session
// with a pending snapshot retries the save.
func (s *Service) Advance(ctx context.Context, userID int64, id string) (*Outcome, error) {
	unlock := s.lock(id)
	defer unlock()

	e, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	next, adv := e.Session.Advance()
	out := &Outcome{Session: next, Moved: adv.Moved, Finished: adv.Finished}

	switch {
	case adv.Moved:
		e.Session = next
		if err := s.store.Put(ctx, e, s.ttl); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
		return out, nil
	case !adv.Finished:
		return out, nil
	}

	snap := adv.Snapshot
	if snap == nil {
		snap = e.Unsaved
	}
	result := next.Result()
	out.Result = &result
	if snap == nil {
		// Already finished and saved by an earlier call.
		out.Saved = true
		return out, nil
	}

	details, err := snap.Details()
	if err != nil {
		return nil, fmt.Errorf("build quiz details: %w", err)
	}
	rec, saveErr := s.results.Save(ctx, models.SaveQuizResultRequest{
		UserID:         next.UserID,
		Score:          snap.Score,
		TotalQuestions: snap.TotalQuestions,
		Details:        details,
	})
	if saveErr != nil {
		s.log.Error("quiz result not saved", "session_id", id, "user_id", userID, "error", saveErr)
		out.SaveErr = saveErr
		if err := s.store.Put(ctx, Entry{Session: next, Unsaved: snap}, s.ttl); err != nil {
			s.log.Error("finished session not kept", "session_id", id, "error", err)
		}
		return out, nil
	}

	out.Saved = true
	out.Record = rec
	if err := s.store.Delete(ctx, id); err != nil {
		s.log.Warn("finished session not deleted", "session_id", id, "error", err)
	}
	s.log.Info("quiz finished",
		"session_id", id, "user_id", userID, "record_id", rec.ID,
		"score", result.Score, "total", result.Total, "tier", result.Tier)
	return out, nil
}

// Restart starts the same question bank over, discarding progress.
func (s *Service) Restart(ctx context.Context, userID int64, id string) (quiz.Session, error) {
	unlock := s.lock(id)
	defer unlock()

	e, err := s.load(ctx, userID, id)
	if err != nil {
		return quiz.Session{}, err
	}
	fresh, err := e.Session.Restart()
	if err != nil {
		return quiz.Session{}, err
	}
	if e.Unsaved != nil {
		s.log.Warn("unsaved quiz result dropped by restart", "session_id", id, "user_id", userID)
	}
	if err := s.store.Put(ctx, Entry{Session: fresh}, s.ttl); err != nil {
		return quiz.Session{}, fmt.Errorf("store session: %w", err)
	}
	return fresh, nil
}

func (s *Service) Discard(ctx context.Context, userID int64, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if _, err := s.load(ctx, userID, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
