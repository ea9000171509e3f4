package models

import (
	"strings"
	"time"
)

type SummaryStyle string

const (
	StyleShort    SummaryStyle = "SHORT"
	StyleDetailed SummaryStyle = "DETAILED"
)

// ValidSummaryStyles lists the styles a profile may pick.
var ValidSummaryStyles = map[SummaryStyle]bool{
	StyleShort:    true,
	StyleDetailed: true,
}

// NormalizeStyle upper-cases s and falls back to SHORT for empty or unknown values.
func NormalizeStyle(s string) SummaryStyle {
	style := SummaryStyle(strings.ToUpper(strings.TrimSpace(s)))
	if !ValidSummaryStyles[style] {
		return StyleShort
	}
	return style
}

type User struct {
	ID           int64        `json:"id"`
	Nickname     string       `json:"nickname"`
	Grade        string       `json:"grade"`
	SummaryStyle SummaryStyle `json:"summary_style"`
	HasPIN       bool         `json:"has_pin"`
	PINHash      string       `json:"-"`
	CreatedAt    time.Time    `json:"created_at"`
}

type CreateUserRequest struct {
	Nickname     string `json:"nickname"`
	Grade        string `json:"grade"`
	SummaryStyle string `json:"summary_style,omitempty"`
	PIN          string `json:"pin,omitempty"`
}

type UpdateUserRequest struct {
	SummaryStyle string `json:"summary_style"`
}

type TokenRequest struct {
	PIN string `json:"pin,omitempty"`
}

type TokenResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Dashboard is everything the start screen reloads after a save.
type Dashboard struct {
	User        User            `json:"user"`
	Summaries   []SummaryRecord `json:"summaries"`
	QuizHistory []QuizRecord    `json:"quiz_history"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
