package auth

import (
	"context"
	"net/http"

	"github.com/kruai/backend/internal/httputil"
	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/models"
)

// UserLookup loads a profile including its PIN hash.
type UserLookup interface {
	Get(ctx context.Context, id int64) (*models.User, error)
}

type Handler struct {
	users  UserLookup
	issuer *Issuer
	log    *logger.Logger
}

func NewHandler(users UserLookup, issuer *Issuer, log *logger.Logger) *Handler {
	return &Handler{users: users, issuer: issuer, log: log}
}

// IssueToken handles POST /api/users/{id}/token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	id, err := httputil.PathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req models.TokenRequest
	if r.ContentLength != 0 {
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := CheckPIN(user.PINHash, req.PIN); err != nil {
		h.log.Warn("profile PIN rejected", "user_id", id)
		httputil.WriteJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Wrong PIN", Kind: "unauthorized"})
		return
	}

	token, err := h.issuer.Issue(user.ID)
	if err != nil {
		h.log.Error("token signing failed", "user_id", id, "error", err)
		httputil.WriteJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to generate token"})
		return
	}

	httputil.WriteJSON(w, http.StatusOK, models.TokenResponse{Token: token, User: *user})
}
