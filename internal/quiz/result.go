package quiz

// Tier is the qualitative band for a final percentage.
type Tier string

const (
	TierExcellent   Tier = "excellent"
	TierGood        Tier = "good"
	TierNeedsReview Tier = "needs review"
)

// Emotion is the mascot mood shown with the result.
type Emotion string

const (
	EmotionExcited  Emotion = "excited"
	EmotionHappy    Emotion = "happy"
	EmotionThinking Emotion = "thinking"
)

type Result struct {
	Score      int     `json:"score"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
	Tier       Tier    `json:"tier"`
	Emotion    Emotion `json:"emotion"`
}

// ComputeResult derives the percentage and tier. A zero total yields 0%.
func ComputeResult(score, total int) Result {
	r := Result{Score: score, Total: total}
	if total > 0 {
		r.Percentage = float64(score) / float64(total) * 100
	}
	switch {
	case r.Percentage >= 80:
		r.Tier, r.Emotion = TierExcellent, EmotionExcited
	case r.Percentage >= 50:
		r.Tier, r.Emotion = TierGood, EmotionHappy
	default:
		r.Tier, r.Emotion = TierNeedsReview, EmotionThinking
	}
	return r
}

// Result computes the aggregate for the session's current score.
func (s Session) Result() Result {
	return ComputeResult(s.Score, len(s.Questions))
}
