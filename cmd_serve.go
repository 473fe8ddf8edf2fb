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

	"github.com/Tetsu-is/social-graph/internal/auth"
	"github.com/Tetsu-is/social-graph/internal/config"
	"github.com/Tetsu-is/social-graph/internal/database"
	"github.com/Tetsu-is/social-graph/internal/handler"
	"github.com/Tetsu-is/social-graph/internal/mailer"
	"github.com/Tetsu-is/social-graph/internal/repository"
	"github.com/Tetsu-is/social-graph/internal/repository/memory"
	"github.com/Tetsu-is/social-graph/internal/service"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger)
	},
}

// openStores returns the stores for the configured backend and a func
// releasing them.
func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (service.Stores, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, data is lost on exit")
		store := memory.New()
		return service.Stores{
			Accounts:  store,
			Profiles:  store,
			Relations: store,
			Posts:     store,
			Comments:  store,
			Likes:     store,
			Sessions:  store,
		}, func() {}, nil
	case config.StoragePostgres:
		pool, err := database.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConns)
		if err != nil {
			return service.Stores{}, nil, fmt.Errorf("failed to connect database: %w", err)
		}
		return service.Stores{
			Accounts:  repository.NewAccountRepository(pool),
			Profiles:  repository.NewProfileRepository(pool),
			Relations: repository.NewRelationRepository(pool),
			Posts:     repository.NewPostRepository(pool),
			Comments:  repository.NewCommentRepository(pool),
			Likes:     repository.NewLikeRepository(pool),
			Sessions:  repository.NewSessionRepository(pool),
		}, pool.Close, nil
	}
	return service.Stores{}, nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	stores, closeStores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	svc := service.New(stores, service.Options{
		Hasher:        auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:        auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Mailer:        mailer.NewLogMailer(logger),
		ResetTokenTTL: cfg.Auth.ResetTokenTTL,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           handler.New(svc, logger).Routes(cfg.HTTP.AllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting", zap.String("addr", cfg.HTTP.Addr), zap.String("storage", cfg.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
