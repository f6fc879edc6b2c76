package rpc

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"milkchain/core"
)

const maxRequestBytes = 1 << 16

// Config carries the HTTP surface settings.
type Config struct {
	RateLimit RateLimit
	// Auth enables the mutation routes when non-nil.
	Auth   *AuthConfig
	Logger *slog.Logger
	// Clock supplies claim timestamps. Defaults to time.Now.
	Clock func() time.Time
}

// Server exposes node queries, and optionally authenticated mutations, over
// HTTP.
type Server struct {
	node    *core.Node
	logger  *slog.Logger
	limiter *RateLimiter
	auth    *Authenticator
	clock   func() time.Time
}

func NewServer(node *core.Node, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "rpc"))
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	s := &Server{
		node:    node,
		logger:  logger,
		limiter: NewRateLimiter(cfg.RateLimit, logger),
		clock:   clock,
	}
	if cfg.Auth != nil {
		s.auth = NewAuthenticator(*cfg.Auth, logger)
	}
	return s
}

// Handler returns the instrumented router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLog(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Use(s.limiter.Middleware)
		v1.Get("/token", s.handleToken)
		v1.Get("/supply", s.handleSupply)
		v1.Get("/balance/{account}", s.handleBalance)
		v1.Get("/allowance/{owner}/{spender}", s.handleAllowance)
		v1.Get("/rarity", s.handleRarity)
		v1.Get("/reward/{category}/{tier}", s.handleReward)
		v1.Get("/claims/{account}", s.handleClaimStatus)
		v1.Get("/items/{account}/{id}", s.handleItem)
		v1.Get("/roles/{namespace}/{role}/{account}", s.handleRole)

		if s.auth != nil {
			v1.Group(func(w chi.Router) {
				w.Use(s.auth.Middleware)
				w.Post("/claim", s.handleClaim)
				w.Post("/transfer", s.handleTransfer)
				w.Post("/approve", s.handleApprove)
				w.Post("/withdraw", s.handleWithdraw)
				w.Post("/items/transfer", s.handleItemTransfer)
			})
		}
	})
	return otelhttp.NewHandler(r, "milkchain.rpc")
}

// Serve listens on addr until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http surface listening", slog.String("addr", addr), slog.Bool("mutations", s.auth != nil))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
