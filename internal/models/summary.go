package models

import "time"

// SummaryData is the simplified lesson produced from the student's material.
type SummaryData struct {
	OriginalTopic  string   `json:"originalTopic"`
	SummaryContent string   `json:"summaryContent"`
	KeyPoints      []string `json:"keyPoints"`
}

type SummaryRecord struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	Title     string      `json:"title"`
	Content   SummaryData `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

type SaveSummaryRequest struct {
	UserID  int64       `json:"user_id"`
	Title   string      `json:"title"`
	Content SummaryData `json:"content"`
}

type GenerateSummaryRequest struct {
	Content  string `json:"content"`
	FileName string `json:"file_name,omitempty"`
	Style    string `json:"style,omitempty"`
}

type ChatRole string

const (
	ChatRoleUser  ChatRole = "user"
	ChatRoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

type ChatRequest struct {
	Summary SummaryData   `json:"summary"`
	History []ChatMessage `json:"history"`
	Message string        `json:"message"`
}

type ChatResponse struct {
	Text string `json:"text"`
}
