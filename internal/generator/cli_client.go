package generator

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CLIClient shells out to a local LLM command line tool for development.
type CLIClient struct {
	cliPath string
}

func NewCLIClient(cliPath string) *CLIClient {
	return &CLIClient{cliPath: cliPath}
}

func (c *CLIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	return c.run(ctx, systemPrompt, userPrompt)
}

// Chat flattens the conversation into a single prompt.
func (c *CLIClient) Chat(ctx context.Context, systemPrompt string, history []Turn, message string) (*LLMResponse, error) {
	var b strings.Builder
	for _, t := range history {
		role := "Student"
		if t.Assistant {
			role = "Teacher"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, t.Text)
	}
	fmt.Fprintf(&b, "Student: %s\nTeacher:", message)
	return c.run(ctx, systemPrompt, b.String())
}

func (c *CLIClient) run(ctx context.Context, systemPrompt, input string) (*LLMResponse, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cmd := exec.CommandContext(ctx,
		c.cliPath,
		"--print",
		"--output-format", "text",
		"--system-prompt", systemPrompt,
		"--max-turns", "1",
	)
	cmd.Stdin = strings.NewReader(input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("llm CLI error: %w\nstderr: %s", err, stderr.String())
	}

	responseText := strings.TrimSpace(stdout.String())
	if responseText == "" {
		return nil, fmt.Errorf("llm CLI returned empty response")
	}

	return &LLMResponse{Content: responseText}, nil
}
