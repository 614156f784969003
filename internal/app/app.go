package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/andy6609/roomchat-server/internal/admin"
	"github.com/andy6609/roomchat-server/internal/chat"
	"github.com/andy6609/roomchat-server/internal/config"
)

// App wires the chat server and the optional admin HTTP server.
type App struct {
	cfg   config.Config
	chat  *chat.Server
	admin *http.Server
	log   *zerolog.Logger
}

func New(cfg config.Config, logger *zerolog.Logger) *App {
	chatLog := logger.With().Str("component", "chat").Logger()
	a := &App{
		cfg:  cfg,
		chat: chat.NewServer(cfg.ChatOptions(), &chatLog),
		log:  logger,
	}
	if cfg.AdminAddr != "" {
		adminLog := logger.With().Str("component", "admin").Logger()
		a.admin = admin.NewServer(cfg.AdminAddr, a.chat, &adminLog)
	}
	return a
}

// Run starts both servers and blocks until ctx is cancelled or one of them
// fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.chat.Serve(ctx); err != nil {
			return fmt.Errorf("chat server: %w", err)
		}
		return nil
	})

	if a.admin != nil {
		g.Go(func() error {
			a.log.Info().Str("addr", a.admin.Addr).Msg("admin server started")
			if err := a.admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
			defer cancel()
			a.log.Info().Msg("shutting down admin server")
			return a.admin.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
