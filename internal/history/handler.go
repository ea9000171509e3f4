package history

import (
	"context"
	"net/http"

	"github.com/kruai/backend/internal/httputil"
	"github.com/kruai/backend/internal/i18n"
	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/models"
	"github.com/kruai/backend/internal/quiz"
)

type Repository interface {
	Save(ctx context.Context, req models.SaveQuizResultRequest) (*models.QuizRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]models.QuizRecord, error)
	Get(ctx context.Context, id int64) (*models.QuizRecord, error)
}

type Handler struct {
	repo Repository
	log  *logger.Logger
}

func NewHandler(repo Repository, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

// Save stores a finished quiz. Repeated submissions create repeated rows.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveQuizResultRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.WriteError(w, models.Invalid("%v", err))
		return
	}

	rec, err := h.repo.Save(r.Context(), req)
	if err != nil {
		h.log.Error("save quiz result failed", "user_id", req.UserID, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := httputil.PathID(r, "userId")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	recs, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if recs == nil {
		recs = []models.QuizRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, recs)
}

type reviewResponse struct {
	*quiz.ReviewSheet
	Result i18n.LocalizedResult `json:"result"`
}

// Review renders a stored attempt read-only.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.repo.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	sheet, err := quiz.Review(*rec)
	if err != nil {
		h.log.Warn("review unavailable", "record_id", id, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, reviewResponse{
		ReviewSheet: sheet,
		Result:      i18n.Result(r.Context(), sheet.Result),
	})
}
