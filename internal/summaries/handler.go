package summaries

import (
	"context"
	"net/http"
	"strings"

	"github.com/kruai/backend/internal/httputil"
	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/models"
)

type Repository interface {
	Save(ctx context.Context, userID int64, title string, content models.SummaryData) (*models.SummaryRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]models.SummaryRecord, error)
}

type Handler struct {
	repo Repository
	log  *logger.Logger
}

func NewHandler(repo Repository, log *logger.Logger) *Handler {
	return &Handler{repo: repo, log: log}
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveSummaryRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if req.UserID <= 0 {
		httputil.WriteError(w, models.Invalid("user_id is required"))
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSpace(req.Content.OriginalTopic)
	}
	if title == "" || strings.TrimSpace(req.Content.SummaryContent) == "" {
		httputil.WriteError(w, models.Invalid("title and content are required"))
		return
	}

	rec, err := h.repo.Save(r.Context(), req.UserID, title, req.Content)
	if err != nil {
		h.log.Error("save summary failed", "user_id", req.UserID, "error", err)
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
		recs = []models.SummaryRecord{}
	}
	httputil.WriteJSON(w, http.StatusOK, recs)
}
