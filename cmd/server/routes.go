package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/kruai/backend/internal/auth"
	"github.com/kruai/backend/internal/database"
	"github.com/kruai/backend/internal/history"
	"github.com/kruai/backend/internal/httputil"
	"github.com/kruai/backend/internal/i18n"
	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/middleware"
	"github.com/kruai/backend/internal/models"
	"github.com/kruai/backend/internal/sessions"
	"github.com/kruai/backend/internal/summaries"
	"github.com/kruai/backend/internal/users"
)

type routerDeps struct {
	db     *sql.DB
	log    *logger.Logger
	cors   []string
	issuer *auth.Issuer

	users     *users.Handler
	tokens    *auth.Handler
	summaries *summaries.Handler
	generate  *summaries.GenerateHandler
	history   *history.Handler
	sessions  *sessions.Handler
}

func newRouter(d routerDeps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(d.log))
	r.Use(i18n.Middleware)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/db-test", dbTest(d.db, d.log)).Methods("GET")

	// Profiles
	api.HandleFunc("/users", d.users.Create).Methods("POST")
	api.HandleFunc("/users", d.users.List).Methods("GET")
	api.HandleFunc("/users/{id}", d.users.Get).Methods("GET")
	api.HandleFunc("/users/{id}", d.users.Update).Methods("PUT")
	api.HandleFunc("/users/{id}/token", d.tokens.IssueToken).Methods("POST")
	api.HandleFunc("/users/{id}/dashboard", d.users.Dashboard).Methods("GET")

	// Summaries and quiz history
	api.HandleFunc("/summaries", d.summaries.Save).Methods("POST")
	api.HandleFunc("/summaries/{userId}", d.summaries.List).Methods("GET")
	api.HandleFunc("/quiz-history", d.history.Save).Methods("POST")
	api.HandleFunc("/quiz-history/record/{id}/review", d.history.Review).Methods("GET")
	api.HandleFunc("/quiz-history/{userId}", d.history.List).Methods("GET")

	// AI teacher
	api.HandleFunc("/generate/summary", d.generate.Summary).Methods("POST")
	api.HandleFunc("/chat", d.generate.Chat).Methods("POST")

	// Quiz sessions (profile token required)
	sess := api.PathPrefix("/sessions").Subrouter()
	sess.Use(middleware.AuthMiddleware(d.issuer))
	sess.HandleFunc("", d.sessions.Start).Methods("POST")
	sess.HandleFunc("/{id}", d.sessions.Get).Methods("GET")
	sess.HandleFunc("/{id}", d.sessions.Discard).Methods("DELETE")
	sess.HandleFunc("/{id}/answer", d.sessions.Answer).Methods("POST")
	sess.HandleFunc("/{id}/advance", d.sessions.Advance).Methods("POST")
	sess.HandleFunc("/{id}/restart", d.sessions.Restart).Methods("POST")

	c := cors.New(cors.Options{
		AllowedOrigins:   d.cors,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept-Language", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler(r)
}

func dbTest(db *sql.DB, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		now, err := database.ServerTime(ctx, db)
		if err != nil {
			log.Error("database probe failed", "error", err)
			httputil.WriteJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Database connection failed", Kind: "persistence"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"message": "Database connected",
			"time":    now,
		})
	}
}
