package sessions

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/kruai/backend/internal/models"
	"github.com/kruai/backend/internal/quiz"
)

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Now()
	m := NewMemoryStore()
	m.now = func() time.Time { return now }
	ctx := context.Background()

	m.Put(ctx, Entry{Session: quiz.Session{ID: "a"}}, time.Minute)
	m.Put(ctx, Entry{Session: quiz.Session{ID: "b"}}, time.Hour)
	m.Put(ctx, Entry{Session: quiz.Session{ID: "c"}}, 0)

	if _, err := m.Get(ctx, "a"); err != nil {
		t.Fatalf("fresh entry: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := m.Get(ctx, "a"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expired entry: expected not found, got %v", err)
	}
	if _, err := m.Get(ctx, "b"); err != nil {
		t.Errorf("live entry: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if n := m.Sweep(); n != 1 {
		t.Errorf("Sweep dropped %d, want 1", n)
	}
	if m.Len() != 1 {
		t.Errorf("expected only the no-ttl entry left, got %d", m.Len())
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	m := NewMemoryStore()
	ctx := context.Background()
	m.Put(ctx, Entry{Session: quiz.Session{ID: "a"}}, time.Minute)
	m.Delete(ctx, "a")
	if _, err := m.Get(ctx, "a"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found after delete, got %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("KRUAI_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("KRUAI_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	s, err := NewRedisStore(ctx, addr)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()

	sess, err := quiz.NewSession("Rain", testBank(2))
	if err != nil {
		t.Fatalf("session: %v", err)
	}
	sess.ID = "redis-store-test"
	sess.UserID = 3
	sess, _, _ = sess.SubmitAnswer(1)

	if err := s.Put(ctx, Entry{Session: sess}, time.Minute); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, sess.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Session.UserID != 3 || got.Session.Attempts != sess.Attempts || len(got.Session.UserAnswers) != 2 {
		t.Errorf("round trip mismatch: %+v", got.Session)
	}

	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, sess.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}
