package summaries

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/kruai/backend/internal/database"
	"github.com/kruai/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Save(ctx context.Context, userID int64, title string, content models.SummaryData) (*models.SummaryRecord, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode summary: %w", err)
	}

	rec := models.SummaryRecord{UserID: userID, Title: title, Content: content}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO summaries (user_id, title, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		userID, title, raw,
	).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("user %d: %w", userID, models.ErrNotFound)
		}
		return nil, &models.PersistenceError{Op: "save summary", Err: err}
	}
	return &rec, nil
}

// ListByUser returns the user's summaries, newest first.
func (s *Store) ListByUser(ctx context.Context, userID int64) ([]models.SummaryRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, content, created_at
		 FROM summaries WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, &models.PersistenceError{Op: "list summaries", Err: err}
	}
	defer rows.Close()

	var out []models.SummaryRecord
	for rows.Next() {
		var rec models.SummaryRecord
		var raw []byte
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Title, &raw, &rec.CreatedAt); err != nil {
			return nil, &models.PersistenceError{Op: "scan summary", Err: err}
		}
		if err := json.Unmarshal(raw, &rec.Content); err != nil {
			return nil, &models.PersistenceError{Op: "decode summary", Err: err}
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "list summaries", Err: err}
	}
	return out, nil
}
