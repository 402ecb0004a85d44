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

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/sessionauth/directory"
	"github.com/jonwraymond/sessionauth/health"
	"github.com/jonwraymond/sessionauth/httpapi"
	"github.com/jonwraymond/sessionauth/observe"
	"github.com/jonwraymond/sessionauth/resilience"
	"github.com/jonwraymond/sessionauth/revocation"
)

const AddrKey = "server.addr"

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the session HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := loadApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()
		cfg := a.cfg

		if cfg.Directory.Path == "" {
			return errors.New("directory.path is required to serve")
		}
		dir, err := directory.Load(cfg.Directory.Path)
		if err != nil {
			return err
		}

		if err := a.openStore(ctx); err != nil {
			return err
		}

		obs, err := observe.NewObserver(ctx, cfg.ObserveConfig())
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		mw, err := observe.MiddlewareFromObserver(obs)
		if err != nil {
			return err
		}

		svc, err := a.newService(mw)
		if err != nil {
			return err
		}

		agg := health.NewAggregator(health.AggregatorConfig{})
		agg.Register(health.NewKeyPairChecker(a.pair))
		agg.Register(health.NewStoreChecker(a.store))
		agg.Register(health.NewMemoryChecker(health.MemoryCheckerConfig{}))

		limiter := resilience.NewKeyedLimiter(resilience.RateLimiterConfig{
			Rate:  cfg.Login.Rate,
			Burst: cfg.Login.Burst,
		})

		api, err := httpapi.NewServer(httpapi.Config{
			Service:    svc,
			Directory:  dir,
			KeyPair:    a.pair,
			Health:     agg,
			Metrics:    obs.MetricsHandler(),
			Limiter:    limiter,
			Bulkhead:   resilience.NewBulkhead(resilience.BulkheadConfig{MaxConcurrent: cfg.Login.MaxConcurrent}),
			Middleware: mw,
		})
		if err != nil {
			return err
		}

		addr := viper.GetString(AddrKey)
		if addr == "" {
			addr = cfg.Server.Addr
		}
		server := &http.Server{
			Addr:              addr,
			Handler:           api.Routes(),
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			log.Info().Msgf("Starting server on %s...", addr)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server crashed: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			maintain(gctx, cfg.Store.PurgeInterval, a.store, limiter)
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			log.Info().Msg("Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()

			return errors.Join(
				server.Shutdown(shutdownCtx),
				obs.Shutdown(shutdownCtx),
			)
		})

		if err := g.Wait(); err != nil {
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	},
}

// purger is implemented by stores that need expired entries swept.
type purger interface {
	Purge(now time.Time) int
}

// maintain sweeps expired store entries and idle login throttles every
// interval until ctx is done. A zero interval disables it.
func maintain(ctx context.Context, interval time.Duration, store revocation.Store, limiter *resilience.KeyedLimiter) {
	if interval <= 0 {
		return
	}
	p, _ := store.(purger)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			purged := 0
			if p != nil {
				purged = p.Purge(now)
			}
			swept := limiter.Sweep()
			if purged > 0 || swept > 0 {
				log.Debug().Int("purged", purged).Int("throttles_swept", swept).Msg("maintenance")
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Address to listen on (overrides server.addr)")
	_ = viper.BindPFlag(AddrKey, serveCmd.Flags().Lookup("addr"))
}
