package summaries

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/kruai/backend/internal/generator"
	"github.com/kruai/backend/internal/httputil"
	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/models"
)

// Generator is the AI side of the lesson flow.
type Generator interface {
	GenerateSummary(ctx context.Context, req generator.SummaryRequest) (*models.SummaryData, error)
	ChatWithTeacher(ctx context.Context, summary models.SummaryData, history []models.ChatMessage, message string) (string, error)
}

var textExtensions = map[string]bool{".txt": true, ".md": true, ".csv": true}

type GenerateHandler struct {
	gen       Generator
	maxUpload int64
	log       *logger.Logger
}

func NewGenerateHandler(gen Generator, maxUpload int64, log *logger.Logger) *GenerateHandler {
	return &GenerateHandler{gen: gen, maxUpload: maxUpload, log: log}
}

// Summary accepts either a JSON body or a multipart upload with a "file"
// part. Only plain-text files are read; other files contribute their name.
func (h *GenerateHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req generator.SummaryRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		parsed, err := h.readUpload(w, r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		req = parsed
	} else {
		var body models.GenerateSummaryRequest
		if err := httputil.DecodeJSON(w, r, &body); err != nil {
			httputil.WriteError(w, err)
			return
		}
		req = generator.SummaryRequest{
			Content:  body.Content,
			FileName: body.FileName,
			Style:    models.NormalizeStyle(body.Style),
		}
	}

	if strings.TrimSpace(req.Content) == "" && strings.TrimSpace(req.FileName) == "" {
		httputil.WriteError(w, models.Invalid("content or file is required"))
		return
	}

	summary, err := h.gen.GenerateSummary(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}

func (h *GenerateHandler) readUpload(w http.ResponseWriter, r *http.Request) (generator.SummaryRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return generator.SummaryRequest{}, models.Invalid("file is larger than %d MiB", h.maxUpload>>20)
		}
		return generator.SummaryRequest{}, models.Invalid("invalid upload")
	}

	req := generator.SummaryRequest{
		Content: r.FormValue("content"),
		Style:   models.NormalizeStyle(r.FormValue("style")),
	}

	file, header, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil
	}
	if err != nil {
		return req, models.Invalid("invalid upload")
	}
	defer file.Close()

	req.FileName = filepath.Base(header.Filename)
	if !isTextFile(header.Header.Get("Content-Type"), req.FileName) {
		h.log.Debug("non-text upload, using file name only", "file", req.FileName)
		return req, nil
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return req, fmt.Errorf("read upload: %w", err)
	}
	if !utf8.Valid(data) {
		return req, models.Invalid("text file is not valid UTF-8")
	}
	if req.Content != "" {
		req.Content += "\n\n"
	}
	req.Content += string(data)
	return req, nil
}

func isTextFile(contentType, name string) bool {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "text/plain" {
		return true
	}
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// Chat handles POST /api/chat.
func (h *GenerateHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		httputil.WriteError(w, models.Invalid("message is required"))
		return
	}
	if strings.TrimSpace(req.Summary.SummaryContent) == "" {
		httputil.WriteError(w, models.Invalid("summary is required"))
		return
	}

	text, err := h.gen.ChatWithTeacher(r.Context(), req.Summary, req.History, req.Message)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, models.ChatResponse{Text: text})
}
