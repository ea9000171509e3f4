package generator

import (
	"context"
	"strings"

	"github.com/kruai/backend/internal/config"
	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/models"
)

// SummaryRequest is the material a summary is generated from.
type SummaryRequest struct {
	Content  string
	FileName string
	Style    models.SummaryStyle
}

// Generator turns study material into summaries, quizzes and chat replies.
// Every failure it returns is a *models.GenerationError.
type Generator struct {
	client   LLMClient
	model    string
	language string
	maxChars int
	count    int
	log      *logger.Logger
}

func New(client LLMClient, model string, cfg config.LLMConfig, log *logger.Logger) *Generator {
	return &Generator{
		client:   client,
		model:    model,
		language: cfg.Language,
		maxChars: cfg.MaxContentChars,
		count:    cfg.QuizQuestions,
		log:      log,
	}
}

// NewFromConfig builds the client named by cfg.Provider and wraps it.
func NewFromConfig(cfg config.LLMConfig, log *logger.Logger) (*Generator, error) {
	client, model, err := NewLLMClient(cfg, log)
	if err != nil {
		return nil, err
	}
	return New(client, model, cfg, log), nil
}

func (g *Generator) GenerateSummary(ctx context.Context, req SummaryRequest) (*models.SummaryData, error) {
	if strings.TrimSpace(req.Content) == "" && strings.TrimSpace(req.FileName) == "" {
		return nil, &models.GenerationError{Op: "summary", Err: errEmptyMaterial}
	}

	resp, err := g.client.Generate(ctx, SummarySystemPrompt(g.language),
		BuildSummaryUserPrompt(req.Content, req.FileName, models.NormalizeStyle(string(req.Style)), g.maxChars))
	if err != nil {
		g.log.Error("summary generation failed", "model", g.model, "error", err)
		return nil, &models.GenerationError{Op: "summary", Err: err}
	}

	summary, warnings, err := ParseSummary(resp.Content)
	for _, w := range warnings {
		g.log.Warn("summary response adjusted", "warning", w)
	}
	if err != nil {
		g.log.Error("summary response rejected", "model", g.model, "error", err)
		return nil, &models.GenerationError{Op: "summary", Err: err}
	}

	g.log.Info("summary generated",
		"model", g.model, "topic", summary.OriginalTopic,
		"prompt_tokens", resp.PromptTokens, "output_tokens", resp.OutputTokens)
	return summary, nil
}

func (g *Generator) GenerateQuiz(ctx context.Context, summary models.SummaryData) ([]models.Question, error) {
	if strings.TrimSpace(summary.SummaryContent) == "" {
		return nil, &models.GenerationError{Op: "quiz", Err: errEmptySummary}
	}

	resp, err := g.client.Generate(ctx, QuizSystemPrompt(), BuildQuizUserPrompt(summary, g.count))
	if err != nil {
		g.log.Error("quiz generation failed", "model", g.model, "error", err)
		return nil, &models.GenerationError{Op: "quiz", Err: err}
	}

	questions, err := ParseQuiz(resp.Content)
	if err != nil {
		g.log.Error("quiz response rejected", "model", g.model, "error", err)
		return nil, &models.GenerationError{Op: "quiz", Err: err}
	}
	if len(questions) != g.count {
		g.log.Warn("quiz size differs from request", "requested", g.count, "received", len(questions))
	}

	g.log.Info("quiz generated",
		"model", g.model, "topic", summary.OriginalTopic, "questions", len(questions),
		"prompt_tokens", resp.PromptTokens, "output_tokens", resp.OutputTokens)
	return questions, nil
}

// ChatWithTeacher answers the student's message in the context of summary.
func (g *Generator) ChatWithTeacher(ctx context.Context, summary models.SummaryData, history []models.ChatMessage, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", &models.GenerationError{Op: "chat", Err: errEmptyMessage}
	}

	turns := make([]Turn, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		turns = append(turns, Turn{Assistant: m.Role == models.ChatRoleModel, Text: m.Text})
	}

	resp, err := g.client.Chat(ctx, ChatSystemPrompt(summary, g.language), turns, message)
	if err != nil {
		g.log.Error("teacher chat failed", "model", g.model, "error", err)
		return "", &models.GenerationError{Op: "chat", Err: err}
	}
	return strings.TrimSpace(resp.Content), nil
}
