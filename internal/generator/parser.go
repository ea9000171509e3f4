package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kruai/backend/internal/models"
)

const (
	minKeyPoints = 1
	maxKeyPoints = 5
)

type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Errors, "; "))
}

// ParseSummary decodes a summary response. Extra key points beyond five
// are dropped and reported as warnings rather than failing the request.
func ParseSummary(responseBody string) (*models.SummaryData, []string, error) {
	cleaned := stripCodeFences(responseBody)

	var summary models.SummaryData
	if err := json.Unmarshal([]byte(cleaned), &summary); err != nil {
		return nil, nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	var errs, warnings []string
	summary.OriginalTopic = strings.TrimSpace(summary.OriginalTopic)
	summary.SummaryContent = strings.TrimSpace(summary.SummaryContent)
	if summary.OriginalTopic == "" {
		errs = append(errs, "missing originalTopic")
	}
	if summary.SummaryContent == "" {
		errs = append(errs, "missing summaryContent")
	}

	points := summary.KeyPoints[:0]
	for _, p := range summary.KeyPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	summary.KeyPoints = points
	switch {
	case len(points) < minKeyPoints:
		errs = append(errs, "no keyPoints")
	case len(points) > maxKeyPoints:
		warnings = append(warnings, fmt.Sprintf("%d keyPoints returned, keeping first %d", len(points), maxKeyPoints))
		summary.KeyPoints = points[:maxKeyPoints]
	}

	if len(errs) > 0 {
		return nil, warnings, &ValidationError{Errors: errs}
	}
	return &summary, warnings, nil
}

// ParseQuiz accepts either a bare JSON array or an object with a
// "questions" field.
func ParseQuiz(responseBody string) ([]models.Question, error) {
	cleaned := stripCodeFences(responseBody)

	var questions []models.Question
	if strings.HasPrefix(cleaned, "[") {
		if err := json.Unmarshal([]byte(cleaned), &questions); err != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w", err)
		}
	} else {
		var wrapped struct {
			Questions []models.Question `json:"questions"`
		}
		if err := json.Unmarshal([]byte(cleaned), &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		questions = wrapped.Questions
	}

	if err := validateQuestions(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

func validateQuestions(questions []models.Question) error {
	if len(questions) == 0 {
		return &ValidationError{Errors: []string{"no questions in response"}}
	}

	var errs []string
	for i, q := range questions {
		qNum := i + 1
		if err := q.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("question %d: %v", qNum, err))
			continue
		}
		if strings.TrimSpace(q.Explanation) == "" {
			errs = append(errs, fmt.Sprintf("question %d: missing explanation", qNum))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
