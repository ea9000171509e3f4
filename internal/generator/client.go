package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/kruai/backend/internal/config"
	"github.com/kruai/backend/internal/logger"
)

// LLMClient is the interface every generator backend satisfies.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
	Chat(ctx context.Context, systemPrompt string, history []Turn, message string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Turn is one prior chat message. Assistant is false for the student.
type Turn struct {
	Assistant bool
	Text      string
}

// NewLLMClient picks the backend named by cfg.Provider.
func NewLLMClient(cfg config.LLMConfig, log *logger.Logger) (LLMClient, string, error) {
	switch cfg.Provider {
	case "cli":
		log.Info("generator using local CLI", "path", cfg.CLIPath)
		return NewCLIClient(cfg.CLIPath), "cli", nil
	case "mock":
		log.Info("generator using mock data")
		return NewMockClient(), "mock", nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, "", fmt.Errorf("openai-api-key is required for the openai provider")
		}
		log.Info("generator using OpenAI-compatible API", "url", cfg.OpenAIBaseURL, "model", cfg.OpenAIModel)
		return NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel), cfg.OpenAIModel, nil
	case "anthropic", "":
		if cfg.AnthropicAPIKey == "" {
			return nil, "", fmt.Errorf("anthropic-api-key is required for the anthropic provider")
		}
		log.Info("generator using Anthropic API", "model", cfg.AnthropicModel)
		return NewAPIClient(cfg.AnthropicAPIKey, cfg.AnthropicModel), cfg.AnthropicModel, nil
	default:
		return nil, "", fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

// ── APIClient: Anthropic SDK ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(apiKey, model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return c.send(ctx, systemPrompt, []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
	}, 0.7)
}

func (c *APIClient) Chat(ctx context.Context, systemPrompt string, history []Turn, message string) (*LLMResponse, error) {
	var msgs []anthropic.MessageParam
	for _, t := range trimLeadingAssistant(history) {
		if t.Assistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
		} else {
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		}
	}
	msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))
	return c.send(ctx, systemPrompt, msgs, 0.5)
}

// send makes a single request. Failures are returned as is, without retry.
func (c *APIClient) send(ctx context.Context, systemPrompt string, msgs []anthropic.MessageParam, temperature float64) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   8192,
		Temperature: param.NewOpt(temperature),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: msgs,
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API: %w", err)
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

// trimLeadingAssistant drops assistant turns before the first student turn;
// the conversation sent upstream has to open with the user.
func trimLeadingAssistant(history []Turn) []Turn {
	for i, t := range history {
		if !t.Assistant {
			return history[i:]
		}
	}
	return nil
}

// ── MockClient: local development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	content := mockSummaryJSON(userPrompt)
	if systemPrompt == QuizSystemPrompt() {
		content = mockQuizJSON()
	}
	return &LLMResponse{
		Content:      content,
		PromptTokens: len(userPrompt) / 4,
		OutputTokens: len(content) / 4,
	}, nil
}

func (m *MockClient) Chat(ctx context.Context, systemPrompt string, history []Turn, message string) (*LLMResponse, error) {
	return &LLMResponse{
		Content: fmt.Sprintf("[Mock] Good question! You asked: %q. Let's look at the summary together.", strings.TrimSpace(message)),
	}, nil
}

func mockSummaryJSON(userPrompt string) string {
	return `{"originalTopic":"[Mock] The Water Cycle",` +
		`"summaryContent":"[Mock] Water moves around our planet in a big circle. The sun warms the sea, the water rises as vapour, forms clouds, and falls again as rain.",` +
		`"keyPoints":["Evaporation turns water into vapour","Condensation makes clouds","Precipitation brings water back down"]}`
}

func mockQuizJSON() string {
	var b strings.Builder
	b.WriteString(`{"questions":[`)
	for i := 0; i < 10; i++ {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b,
			`{"question":"[Mock] Question %d about the water cycle?","options":["Option A","Option B","Option C","Option D"],"correctAnswerIndex":%d,"explanation":"[Mock] Option %c is right because it matches the summary.","hint":"[Mock] Read key point %d again."}`,
			i+1, i%4, 'A'+rune(i%4), i%3+1)
	}
	b.WriteString(`]}`)
	return b.String()
}
