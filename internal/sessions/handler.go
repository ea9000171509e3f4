package sessions

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kruai/backend/internal/httputil"
	"github.com/kruai/backend/internal/i18n"
	"github.com/kruai/backend/internal/middleware"
	"github.com/kruai/backend/internal/models"
	"github.com/kruai/backend/internal/quiz"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type startRequest struct {
	Summary models.SummaryData `json:"summary"`
}

type answerRequest struct {
	Option *int `json:"option"`
}

type sessionResponse struct {
	Session quiz.View `json:"session"`
}

type answerResponse struct {
	Session  quiz.View     `json:"session"`
	Feedback quiz.Feedback `json:"feedback"`
	Message  string        `json:"message,omitempty"`
}

type advanceResponse struct {
	Session  quiz.View             `json:"session"`
	Moved    bool                  `json:"moved"`
	Finished bool                  `json:"finished"`
	Result   *i18n.LocalizedResult `json:"result,omitempty"`
	Saved    bool                  `json:"saved"`
	RecordID int64                 `json:"record_id,omitempty"`
	Warning  string                `json:"warning,omitempty"`
}

func userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		httputil.WriteError(w, models.ErrUnauthorized)
	}
	return id, ok
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req startRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sess, err := h.service.Start(r.Context(), uid, req.Summary)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, sessionResponse{Session: sess.View()})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Get(r.Context(), uid, mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Session: sess.View()})
}

func (h *Handler) Answer(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	var req answerRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if req.Option == nil {
		httputil.WriteError(w, models.Invalid("option is required"))
		return
	}

	sess, fb, err := h.service.Answer(r.Context(), uid, mux.Vars(r)["id"], *req.Option)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := answerResponse{Session: sess.View(), Feedback: fb}
	if fb.Applied && !fb.Completed {
		resp.Message = i18n.Td(r.Context(), "AttemptsLeft", map[string]any{"Count": fb.AttemptsLeft})
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Advance(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	out, err := h.service.Advance(r.Context(), uid, mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	resp := advanceResponse{
		Session:  out.Session.View(),
		Moved:    out.Moved,
		Finished: out.Finished,
		Saved:    out.Saved,
	}
	if out.Result != nil {
		lr := i18n.Result(r.Context(), *out.Result)
		resp.Result = &lr
	}
	if out.Record != nil {
		resp.RecordID = out.Record.ID
	}
	if out.SaveErr != nil {
		resp.Warning = i18n.T(r.Context(), "ResultNotSaved")
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	sess, err := h.service.Restart(r.Context(), uid, mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sessionResponse{Session: sess.View()})
}

func (h *Handler) Discard(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}
	if err := h.service.Discard(r.Context(), uid, mux.Vars(r)["id"]); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
