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

	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/api"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/config"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/ledger"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/logger"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/metrics"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/middleware"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/monitoring"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/services"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/store"
	"github.com/denisolympiquebar-cmyk/lumixpay-mvp/internal/websocket"
)

const shutdownTimeout = 5 * time.Second

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger.Init(cfg.LogLevel, cfg.LogPretty)

			a, err := newApp(cfg, ledger.New(ledger.Config{
				HorizonURL:        cfg.HorizonURL,
				FriendbotURL:      cfg.FriendbotURL,
				NetworkPassphrase: cfg.NetworkPassphrase,
				Timeout:           cfg.LedgerTimeout,
			}))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.run(ctx)
		},
	}
}

// app is the assembled server with its background workers.
type app struct {
	server    *http.Server
	hub       *websocket.Hub
	limiter   *middleware.RateLimiter
	scheduler *monitoring.Scheduler
}

func newApp(cfg *config.Config, gateway ledger.Gateway) (*app, error) {
	eventStore, err := store.New(cfg.EventsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store: %w", err)
	}

	rates, err := config.LoadRates(cfg.RatesFile)
	if err != nil {
		return nil, err
	}

	m := metrics.New()

	hub := websocket.NewHub()
	hub.OnClientCount = func(n int) { m.LiveClients.Set(float64(n)) }

	var stats monitoring.StatsProvider
	if s, err := monitoring.NewSystemStats(); err != nil {
		log.Warn().Err(err).Msg("Process stats unavailable")
	} else {
		stats = s
	}

	var scheduler *monitoring.Scheduler
	if cfg.SnapshotCron != "" {
		scheduler, err = monitoring.NewScheduler(eventStore, cfg.SnapshotCron, cfg.SnapshotDir)
		if err != nil {
			return nil, err
		}
	}

	limiter := middleware.NewRateLimiter(cfg.CreateAccountRPS, cfg.CreateAccountBurst)

	router := api.NewRouter(api.Deps{
		Wallet:               services.NewWalletService(gateway, m),
		Conversion:           services.NewConversionService(rates, cfg.StrictRates),
		Events:               services.NewEventService(eventStore, hub, m),
		Hub:                  hub,
		Stats:                stats,
		Metrics:              m,
		CreateAccountLimiter: limiter,
		StartedAt:            time.Now(),
	})

	return &app{
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		hub:       hub,
		limiter:   limiter,
		scheduler: scheduler,
	}, nil
}

// run serves until ctx is done, then shuts down gracefully.
func (a *app) run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.server.Addr, err)
	}
	return a.serve(ctx, ln)
}

func (a *app) serve(ctx context.Context, ln net.Listener) error {
	go a.hub.Run()

	stopCleanup := make(chan struct{})
	a.limiter.StartCleanup(time.Minute, stopCleanup)

	if a.scheduler != nil {
		go a.scheduler.Run()
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", ln.Addr().String()).Msg("Server starting")
		if err := a.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	case runErr = <-serveErr:
		log.Error().Err(runErr).Msg("Server stopped unexpectedly")
	}

	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	close(stopCleanup)
	a.hub.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return runErr
}
