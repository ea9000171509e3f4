package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kruai/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const userColumns = `id, nickname, grade, summary_style, COALESCE(pin_hash, ''), created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Nickname, &u.Grade, &u.SummaryStyle, &u.PINHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.HasPIN = u.PINHash != ""
	return &u, nil
}

func (s *Store) Create(ctx context.Context, nickname, grade string, style models.SummaryStyle, pinHash string) (*models.User, error) {
	var hash sql.NullString
	if pinHash != "" {
		hash = sql.NullString{String: pinHash, Valid: true}
	}
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`INSERT INTO users (nickname, grade, summary_style, pin_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		nickname, grade, style, hash,
	))
	if err != nil {
		return nil, &models.PersistenceError{Op: "create user", Err: err}
	}
	return u, nil
}

// List returns every profile, newest first.
func (s *Store) List(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, &models.PersistenceError{Op: "list users", Err: err}
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, &models.PersistenceError{Op: "scan user", Err: err}
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistenceError{Op: "list users", Err: err}
	}
	return users, nil
}

func (s *Store) Get(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "get user", Err: err}
	}
	return u, nil
}

func (s *Store) UpdateStyle(ctx context.Context, id int64, style models.SummaryStyle) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`UPDATE users SET summary_style = $1 WHERE id = $2 RETURNING `+userColumns,
		style, id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, &models.PersistenceError{Op: "update user", Err: err}
	}
	return u, nil
}
