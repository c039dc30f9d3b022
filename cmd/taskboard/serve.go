package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nhle/taskboard/internal/ai"
	"github.com/nhle/taskboard/internal/api"
	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/credential"
	"github.com/nhle/taskboard/internal/logging"
	"github.com/nhle/taskboard/internal/model"
	"github.com/nhle/taskboard/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the board HTTP API",
	Long: `Run the board HTTP API on top of the SQLite store.

Summaries use the Anthropic API when a key is configured (ANTHROPIC_API_KEY
or "taskboard credential set"), and a local digest otherwise. Set redis.addr
to cache assistant responses.

Examples:
  taskboard serve
  taskboard serve --addr :8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	summarizer, release := newSummarizer(ctx, cfg, log)
	defer release()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewRouter(board.NewService(st, summarizer, log), log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeoutSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	log.Info("server exited")
	return nil
}

// newSummarizer picks the Claude assistant when a key is available and wraps
// it in the Redis cache when one is configured and reachable.
func newSummarizer(ctx context.Context, cfg *model.AppConfig, log logrus.FieldLogger) (board.Summarizer, func()) {
	var base board.Summarizer = ai.Local{}

	apiKey, err := credential.APIKey()
	if err != nil {
		log.WithError(err).Warn("reading API key from keyring")
	}
	if apiKey != "" {
		base = ai.New(apiKey, cfg.AI, log)
	} else {
		log.Warn("no Anthropic API key configured, using local summaries")
	}

	if cfg.Redis.Addr == "" {
		return base, func() {}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable, assistant cache disabled")
		rdb.Close()
		return base, func() {}
	}

	ttl := time.Duration(cfg.Redis.TTLSec) * time.Second
	return ai.NewCache(base, rdb, ttl, log), func() { rdb.Close() }
}
