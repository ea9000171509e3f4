package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/models"
)

type memRepo struct {
	users []models.User
}

func (m *memRepo) Create(ctx context.Context, nickname, grade string, style models.SummaryStyle, pinHash string) (*models.User, error) {
	u := models.User{ID: int64(len(m.users) + 1), Nickname: nickname, Grade: grade, SummaryStyle: style,
		PINHash: pinHash, HasPIN: pinHash != "", CreatedAt: time.Now()}
	m.users = append(m.users, u)
	return &u, nil
}

func (m *memRepo) List(ctx context.Context) ([]models.User, error) {
	return m.users, nil
}

func (m *memRepo) Get(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (m *memRepo) UpdateStyle(ctx context.Context, id int64, style models.SummaryStyle) (*models.User, error) {
	for i := range m.users {
		if m.users[i].ID == id {
			m.users[i].SummaryStyle = style
			return &m.users[i], nil
		}
	}
	return nil, models.ErrNotFound
}

type summaryList struct {
	recs []models.SummaryRecord
	err  error
}

func (s summaryList) ListByUser(ctx context.Context, userID int64) ([]models.SummaryRecord, error) {
	return s.recs, s.err
}

type historyList struct {
	recs []models.QuizRecord
	err  error
}

func (h historyList) ListByUser(ctx context.Context, userID int64) ([]models.QuizRecord, error) {
	return h.recs, h.err
}

func TestCreate(t *testing.T) {
	svc := NewService(&memRepo{}, summaryList{}, historyList{}, logger.Nop())

	u, err := svc.Create(context.Background(), models.CreateUserRequest{Nickname: " Ton ", Grade: "P5", SummaryStyle: "detailed", PIN: "1234"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Nickname != "Ton" || u.SummaryStyle != models.StyleDetailed || !u.HasPIN {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.PINHash == "1234" {
		t.Error("PIN stored in plain text")
	}

	u, err = svc.Create(context.Background(), models.CreateUserRequest{Nickname: "Fah", Grade: "P4"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.SummaryStyle != models.StyleShort || u.HasPIN {
		t.Errorf("expected SHORT default without PIN, got %+v", u)
	}
}

func TestCreate_Invalid(t *testing.T) {
	svc := NewService(&memRepo{}, summaryList{}, historyList{}, logger.Nop())
	tests := []models.CreateUserRequest{
		{Grade: "P5"},
		{Nickname: "A"},
		{Nickname: strings.Repeat("ก", 51), Grade: "P5"},
		{Nickname: "A", Grade: "P5", PIN: "12"},
	}
	for _, req := range tests {
		if _, err := svc.Create(context.Background(), req); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Create(%+v): expected invalid input, got %v", req, err)
		}
	}
}

func TestUpdateStyle(t *testing.T) {
	repo := &memRepo{}
	svc := NewService(repo, summaryList{}, historyList{}, logger.Nop())
	svc.Create(context.Background(), models.CreateUserRequest{Nickname: "A", Grade: "P6"})

	u, err := svc.UpdateStyle(context.Background(), 1, "DETAILED")
	if err != nil || u.SummaryStyle != models.StyleDetailed {
		t.Fatalf("UpdateStyle = %+v, %v", u, err)
	}
	if _, err := svc.UpdateStyle(context.Background(), 1, "LONG"); !errors.Is(err, models.ErrInvalidInput) {
		t.Errorf("expected invalid style error, got %v", err)
	}
	if _, err := svc.UpdateStyle(context.Background(), 9, "SHORT"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	repo := &memRepo{}
	sums := summaryList{recs: []models.SummaryRecord{{ID: 1, UserID: 1, Title: "Plants"}}}
	svc := NewService(repo, sums, historyList{}, logger.Nop())
	svc.Create(context.Background(), models.CreateUserRequest{Nickname: "A", Grade: "P6"})

	dash, err := svc.Dashboard(context.Background(), 1)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.User.ID != 1 || len(dash.Summaries) != 1 {
		t.Errorf("unexpected dashboard: %+v", dash)
	}
	if dash.QuizHistory == nil {
		t.Error("quiz history should be an empty slice, not nil")
	}
}

func TestDashboard_Failure(t *testing.T) {
	repo := &memRepo{}
	failing := historyList{err: &models.PersistenceError{Op: "list quiz history", Err: errors.New("down")}}
	svc := NewService(repo, summaryList{}, failing, logger.Nop())
	svc.Create(context.Background(), models.CreateUserRequest{Nickname: "A", Grade: "P6"})

	_, err := svc.Dashboard(context.Background(), 1)
	var pe *models.PersistenceError
	if !errors.As(err, &pe) {
		t.Errorf("expected PersistenceError, got %v", err)
	}

	if _, err := svc.Dashboard(context.Background(), 5); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing user: expected not found, got %v", err)
	}
}

func TestHandlerRoutes(t *testing.T) {
	svc := NewService(&memRepo{}, summaryList{}, historyList{}, logger.Nop())
	h := NewHandler(svc)
	r := mux.NewRouter()
	r.HandleFunc("/api/users", h.Create).Methods("POST")
	r.HandleFunc("/api/users", h.List).Methods("GET")
	r.HandleFunc("/api/users/{id}", h.Get).Methods("GET")
	r.HandleFunc("/api/users/{id}", h.Update).Methods("PUT")
	r.HandleFunc("/api/users/{id}/dashboard", h.Dashboard).Methods("GET")

	do := func(method, path, body string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
		return rec
	}

	rec := do(http.MethodGet, "/api/users", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("empty list: got %s", rec.Body.String())
	}

	rec = do(http.MethodPost, "/api/users", `{"nickname":"Ton","grade":"P5","pin":"9999"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "pin_hash") || strings.Contains(rec.Body.String(), "PINHash") {
		t.Error("PIN hash serialized")
	}

	if rec = do(http.MethodPut, "/api/users/1", `{"summary_style":"DETAILED"}`); rec.Code != http.StatusOK {
		t.Errorf("update: expected 200, got %d", rec.Code)
	}
	var u models.User
	json.NewDecoder(do(http.MethodGet, "/api/users/1", "").Body).Decode(&u)
	if u.SummaryStyle != models.StyleDetailed {
		t.Errorf("expected DETAILED, got %q", u.SummaryStyle)
	}

	if rec = do(http.MethodGet, "/api/users/2", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing user: expected 404, got %d", rec.Code)
	}
	if rec = do(http.MethodPost, "/api/users", `{"nickname":""}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid create: expected 400, got %d", rec.Code)
	}
	if rec = do(http.MethodGet, "/api/users/1/dashboard", ""); rec.Code != http.StatusOK {
		t.Errorf("dashboard: expected 200, got %d", rec.Code)
	}
}
