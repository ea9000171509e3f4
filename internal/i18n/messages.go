package i18n

import (
	"context"

	"github.com/kruai/backend/internal/quiz"
)

var tierMessageIDs = map[quiz.Tier]string{
	quiz.TierExcellent:   "TierExcellent",
	quiz.TierGood:        "TierGood",
	quiz.TierNeedsReview: "TierNeedsReview",
}

// LocalizedResult is a quiz result with the mascot's message attached.
type LocalizedResult struct {
	quiz.Result
	Message   string `json:"message"`
	ScoreLine string `json:"score_line"`
}

func Result(ctx context.Context, r quiz.Result) LocalizedResult {
	return LocalizedResult{
		Result:    r,
		Message:   T(ctx, tierMessageIDs[r.Tier]),
		ScoreLine: Td(ctx, "ScoreLine", map[string]any{"Score": r.Score, "Total": r.Total}),
	}
}
