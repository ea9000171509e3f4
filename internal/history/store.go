package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
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

func (s *Store) Save(ctx context.Context, req models.SaveQuizResultRequest) (*models.QuizRecord, error) {
	var details interface{}
	if req.Details != nil {
		raw, err := json.Marshal(req.Details)
		if err != nil {
			return nil, fmt.Errorf("encode details: %w", err)
		}
		details = raw
	}

	rec := models.QuizRecord{
		UserID:         req.UserID,
		Score:          req.Score,
		TotalQuestions: req.TotalQuestions,
		Details:        req.Details,
	}
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO quiz_history (user_id, score, total_questions, details)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, timestamp`,
		req.UserID, req.Score, req.TotalQuestions, details,
	).Scan(&rec.ID, &rec.Timestamp)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("user %d: %w", req.UserID, models.ErrNotFound)
		}
		return nil, &models.PersistenceError{Op: "save quiz result", Err: err}
	}
	return &rec, nil
}

// ListByUser returns the user's quiz records, newest first.
func (s *Store) ListByUser(ctx context.Context, userID int64) ([]models.QuizRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, score, total_questions, details, timestamp
		 FROM quiz_history WHERE user_id = $1
		 ORDER BY timestamp DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, &models.PersistenceError{Op: "list quiz history", Err: err}
	}
	defer rows.Close()

	var out []models.QuizRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &models.PersistenceError{Op: "scan quiz record", Err: err}
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "list quiz history", Err: err}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*models.QuizRecord, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx,
		`SELECT id, user_id, score, total_questions, details, timestamp
		 FROM quiz_history WHERE id = $1`,
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("quiz record %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get quiz record", Err: err}
	}
	return rec, nil
}

// scanRecord leaves Details nil when the column is NULL or unreadable;
// older rows were written without a snapshot.
func scanRecord(row interface{ Scan(...interface{}) error }) (*models.QuizRecord, error) {
	var rec models.QuizRecord
	var raw []byte
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Score, &rec.TotalQuestions, &raw, &rec.Timestamp); err != nil {
		return nil, err
	}
	if len(raw) > 0 {
		var d models.QuizDetails
		if err := json.Unmarshal(raw, &d); err == nil {
			rec.Details = &d
		}
	}
	return &rec, nil
}
