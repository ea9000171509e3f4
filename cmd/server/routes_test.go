package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kruai/backend/internal/auth"
	"github.com/kruai/backend/internal/config"
	"github.com/kruai/backend/internal/generator"
	"github.com/kruai/backend/internal/history"
	"github.com/kruai/backend/internal/i18n"
	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/middleware"
	"github.com/kruai/backend/internal/sessions"
	"github.com/kruai/backend/internal/summaries"
	"github.com/kruai/backend/internal/users"
)

// testRouter wires the real handlers around the mock LLM. The stores have
// no database, so only routes that never reach Postgres are exercised.
func testRouter(t *testing.T) (http.Handler, *auth.Issuer) {
	t.Helper()
	if err := i18n.Init("th"); err != nil {
		t.Fatalf("i18n: %v", err)
	}
	log := logger.Nop()
	gen := generator.New(generator.NewMockClient(), "mock", config.LLMConfig{
		Language:        "Thai",
		MaxContentChars: 2000,
		QuizQuestions:   10,
	}, log)

	userStore := users.NewStore(nil)
	summaryStore := summaries.NewStore(nil)
	historyStore := history.NewStore(nil)
	issuer := auth.NewIssuer("test-secret", time.Hour)

	h := newRouter(routerDeps{
		log:       log,
		cors:      []string{"http://localhost:5173"},
		issuer:    issuer,
		users:     users.NewHandler(users.NewService(userStore, summaryStore, historyStore, log)),
		tokens:    auth.NewHandler(userStore, issuer, log),
		summaries: summaries.NewHandler(summaryStore, log),
		generate:  summaries.NewGenerateHandler(gen, 1<<20, log),
		history:   history.NewHandler(historyStore, log),
		sessions:  sessions.NewHandler(sessions.NewService(sessions.NewMemoryStore(), gen, historyStore, time.Hour, log)),
	})
	return h, issuer
}

func do(h http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	h, _ := testRouter(t)
	rec := do(h, "GET", "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("request id header missing")
	}
}

func TestRouter_SessionsRequireToken(t *testing.T) {
	h, _ := testRouter(t)
	rec := do(h, "POST", "/api/sessions", `{"summary":{"summaryContent":"x"}}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRouter_StartSessionWithToken(t *testing.T) {
	h, issuer := testRouter(t)
	token, err := issuer.Issue(7)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	body := `{"summary":{"originalTopic":"Water","summaryContent":"Water moves in a cycle.","keyPoints":["Evaporation"]}}`
	rec := do(h, "POST", "/api/sessions", body, map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Session struct {
			ID             string `json:"id"`
			TotalQuestions int    `json:"total_questions"`
			QuestionNumber int    `json:"question_number"`
		} `json:"session"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Session.ID == "" || resp.Session.TotalQuestions != 10 || resp.Session.QuestionNumber != 1 {
		t.Errorf("unexpected session view: %+v", resp.Session)
	}

	rec = do(h, "GET", "/api/sessions/"+resp.Session.ID, "", map[string]string{"Authorization": "Bearer " + token})
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}
}

func TestRouter_GenerateSummaryAndChat(t *testing.T) {
	h, _ := testRouter(t)

	rec := do(h, "POST", "/api/generate/summary", `{"content":"The water cycle has three steps."}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d body=%s", rec.Code, rec.Body.String())
	}

	chat := `{"summary":{"originalTopic":"Water","summaryContent":"Water moves.","keyPoints":["Rain"]},"history":[],"message":"Why does it rain?"}`
	rec = do(h, "POST", "/api/chat", chat, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("chat status = %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Why does it rain?") {
		t.Errorf("chat reply = %s", rec.Body.String())
	}
}

func TestRouter_GenerateSummaryRejectsEmpty(t *testing.T) {
	h, _ := testRouter(t)
	rec := do(h, "POST", "/api/generate/summary", `{"content":"   "}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	h, _ := testRouter(t)
	rec := do(h, "OPTIONS", "/api/sessions", "", map[string]string{
		"Origin":                        "http://localhost:5173",
		"Access-Control-Request-Method": "POST",
	})
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("allow-origin = %q", got)
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	root := rootCmd()
	for _, name := range []string{"serve", "migrate"} {
		if c, _, err := root.Find([]string{name}); err != nil || c.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.Flags().Lookup("jwt-secret") == nil {
		t.Error("root command should carry serve flags")
	}
}
