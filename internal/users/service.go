package users

import (
	"context"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/kruai/backend/internal/auth"
	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/models"
)

const maxNicknameLen = 50

// Repository is the profile storage the service needs.
type Repository interface {
	Create(ctx context.Context, nickname, grade string, style models.SummaryStyle, pinHash string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	UpdateStyle(ctx context.Context, id int64, style models.SummaryStyle) (*models.User, error)
}

type SummaryLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.SummaryRecord, error)
}

type HistoryLister interface {
	ListByUser(ctx context.Context, userID int64) ([]models.QuizRecord, error)
}

type Service struct {
	repo      Repository
	summaries SummaryLister
	history   HistoryLister
	log       *logger.Logger
}

func NewService(repo Repository, summaries SummaryLister, history HistoryLister, log *logger.Logger) *Service {
	return &Service{repo: repo, summaries: summaries, history: history, log: log}
}

func (s *Service) Create(ctx context.Context, req models.CreateUserRequest) (*models.User, error) {
	nickname := strings.TrimSpace(req.Nickname)
	grade := strings.TrimSpace(req.Grade)
	if nickname == "" || grade == "" {
		return nil, models.Invalid("nickname and grade are required")
	}
	if utf8.RuneCountInString(nickname) > maxNicknameLen {
		return nil, models.Invalid("nickname must be at most %d characters", maxNicknameLen)
	}

	var pinHash string
	if req.PIN != "" {
		hash, err := auth.HashPIN(req.PIN)
		if err != nil {
			return nil, err
		}
		pinHash = hash
	}

	user, err := s.repo.Create(ctx, nickname, grade, models.NormalizeStyle(req.SummaryStyle), pinHash)
	if err != nil {
		s.log.Error("create user failed", "error", err)
		return nil, err
	}
	s.log.Info("user created", "user_id", user.ID, "grade", user.Grade, "has_pin", user.HasPIN)
	return user, nil
}

func (s *Service) List(ctx context.Context) ([]models.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.Get(ctx, id)
}

// UpdateStyle rejects unknown styles rather than silently defaulting.
func (s *Service) UpdateStyle(ctx context.Context, id int64, style string) (*models.User, error) {
	normalized := models.SummaryStyle(strings.ToUpper(strings.TrimSpace(style)))
	if !models.ValidSummaryStyles[normalized] {
		return nil, models.Invalid("summary_style must be SHORT or DETAILED")
	}
	return s.repo.UpdateStyle(ctx, id, normalized)
}

// Dashboard loads the profile with its summaries and quiz history.
// The three reads run concurrently; the first failure cancels the rest.
func (s *Service) Dashboard(ctx context.Context, id int64) (*models.Dashboard, error) {
	var (
		user      *models.User
		summaries []models.SummaryRecord
		history   []models.QuizRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = s.repo.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		summaries, err = s.summaries.ListByUser(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		history, err = s.history.ListByUser(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if summaries == nil {
		summaries = []models.SummaryRecord{}
	}
	if history == nil {
		history = []models.QuizRecord{}
	}
	return &models.Dashboard{User: *user, Summaries: summaries, QuizHistory: history}, nil
}
