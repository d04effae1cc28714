package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/wordimize/internal/config"
	"github.com/robalobadob/wordimize/internal/history"
	"github.com/robalobadob/wordimize/internal/httpserver"
	"github.com/robalobadob/wordimize/internal/logging"
	"github.com/robalobadob/wordimize/internal/store"
	"github.com/robalobadob/wordimize/internal/words"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and websocket API",
		Long: `Run the JSON API and the /ws play channel.

Settings come from .env, the --config file and WORDIMIZE_* variables.
SIGINT or SIGTERM shuts the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().IntP("port", "p", 0, "Listen port (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath(cmd))
	if err != nil {
		return err
	}
	if p, _ := cmd.Flags().GetInt("port"); p > 0 {
		cfg.Port = p
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr()); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Addr(), err)
	}
	return Serve(ctx, cfg, ln)
}

// Serve runs the API on ln until ctx is done, then shuts down gracefully.
func Serve(ctx context.Context, cfg *config.Config, ln net.Listener) error {
	lists, err := words.Load(cfg.SourceFile, cfg.DictionaryFile)
	if err != nil {
		ln.Close()
		return err
	}
	hist, err := history.Open(ctx, cfg.Database)
	if err != nil {
		ln.Close()
		return fmt.Errorf("open history: %w", err)
	}
	defer hist.Close()

	srv := httpserver.New(cfg, store.NewMemoryStore(), hist, lists)
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       time.Minute,
	}

	sources, dict := lists.Stats()
	log.Info().
		Str("addr", ln.Addr().String()).
		Int("sources", sources).
		Int("dictionary", dict).
		Bool("postgres", history.IsPostgresDSN(cfg.Database)).
		Msg("starting wordimize")

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if _, err := srv.Sweep(gctx); err != nil {
					log.Warn().Err(err).Msg("sweep failed")
				}
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(sctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("graceful shutdown complete")
	return nil
}
