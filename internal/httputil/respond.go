// Package httputil holds the JSON response helpers shared by every handler.
package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/kruai/backend/internal/models"
	"github.com/kruai/backend/internal/quiz"
)

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// WriteError maps err to a status code and error kind.
func WriteError(w http.ResponseWriter, err error) {
	status, resp := Classify(err)
	WriteJSON(w, status, resp)
}

// Classify returns the status and body WriteError would send for err.
func Classify(err error) (int, models.ErrorResponse) {
	var (
		genErr     *models.GenerationError
		persistErr *models.PersistenceError
		missingErr *models.MissingDataError
	)
	switch {
	case errors.As(err, &missingErr):
		return http.StatusUnprocessableEntity, models.ErrorResponse{Error: "no answer-key data", Kind: "missing_data"}
	case errors.As(err, &genErr):
		return http.StatusBadGateway, models.ErrorResponse{Error: "AI teacher could not finish this request, please try again", Kind: "generation"}
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound, models.ErrorResponse{Error: "Not found", Kind: "not_found"}
	case errors.As(err, &persistErr):
		return http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save or load data", Kind: "persistence"}
	case errors.Is(err, models.ErrInvalidInput):
		return http.StatusBadRequest, models.ErrorResponse{Error: strings.TrimPrefix(err.Error(), models.ErrInvalidInput.Error()+": "), Kind: "validation"}
	case errors.Is(err, quiz.ErrInvalidOption):
		return http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Kind: "validation"}
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized", Kind: "unauthorized"}
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden, models.ErrorResponse{Error: "Forbidden", Kind: "forbidden"}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"}
	}
}

// DecodeJSON reads a bounded JSON body into dst.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return models.Invalid("Invalid request body")
	}
	return nil
}

// PathID parses the int64 route variable name.
func PathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, models.Invalid("Invalid %s", name)
	}
	return id, nil
}
