package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kruai/backend/internal/auth"
	"github.com/kruai/backend/internal/config"
	"github.com/kruai/backend/internal/database"
	"github.com/kruai/backend/internal/generator"
	"github.com/kruai/backend/internal/history"
	"github.com/kruai/backend/internal/i18n"
	"github.com/kruai/backend/internal/logger"
	"github.com/kruai/backend/internal/sessions"
	"github.com/kruai/backend/internal/summaries"
	"github.com/kruai/backend/internal/users"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "kruai",
		Short: "Study summaries and quizzes for primary school students",
	}

	serve := serveCmd()
	root.AddCommand(serve, migrateCmd())

	// "serve" is the default when no subcommand is given.
	root.RunE = serve.RunE
	root.Flags().AddFlagSet(serve.Flags())

	return root
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE:  runServe,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Apply or roll back database migrations",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMigrate,
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func runMigrate(cmd *cobra.Command, args []string) error {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return err
	}
	log, err := logger.New(v.GetString("log-mode"))
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.Connect(config.LoadDB(v).DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	direction := "up"
	if len(args) == 1 {
		direction = args[0]
	}
	switch direction {
	case "up":
		err = database.Migrate(db)
	case "down":
		err = database.Rollback(db)
	case "version":
	default:
		return fmt.Errorf("unknown migrate direction %q", direction)
	}
	if err != nil {
		return err
	}

	version, dirty, err := database.Version(db)
	if err != nil {
		return err
	}
	log.Info("database schema", "direction", direction, "version", version, "dirty", dirty)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	v, err := config.NewViper(cmd.Flags())
	if err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return err
	}
	defer log.Sync()

	if err := i18n.Init(cfg.Lang); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(cfg.DB.DSN())
	if err != nil {
		return err
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return err
	}

	gen, err := generator.NewFromConfig(cfg.LLM, log)
	if err != nil {
		return err
	}

	sessionStore, closeStore, err := newSessionStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	userStore := users.NewStore(db)
	summaryStore := summaries.NewStore(db)
	historyStore := history.NewStore(db)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)

	handler := newRouter(routerDeps{
		db:        db,
		log:       log,
		cors:      cfg.CORSOrigins,
		issuer:    issuer,
		users:     users.NewHandler(users.NewService(userStore, summaryStore, historyStore, log)),
		tokens:    auth.NewHandler(userStore, issuer, log),
		summaries: summaries.NewHandler(summaryStore, log),
		generate:  summaries.NewGenerateHandler(gen, cfg.MaxUploadBytes, log),
		history:   history.NewHandler(historyStore, log),
		sessions:  sessions.NewHandler(sessions.NewService(sessionStore, gen, historyStore, cfg.SessionTTL, log)),
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "addr", cfg.Addr, "llm_provider", cfg.LLM.Provider)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newSessionStore uses Redis when an address is configured and an
// in-process store otherwise.
func newSessionStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (sessions.Store, func(), error) {
	if cfg.RedisAddr != "" {
		rs, err := sessions.NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, nil, err
		}
		log.Info("quiz sessions in redis", "addr", cfg.RedisAddr)
		return rs, func() { rs.Close() }, nil
	}

	ms := sessions.NewMemoryStore()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := ms.Sweep(); n > 0 {
					log.Debug("expired quiz sessions dropped", "count", n)
				}
			}
		}
	}()
	log.Info("quiz sessions in memory")
	return ms, func() {}, nil
}
