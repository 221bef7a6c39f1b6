package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vivapay-be/internal/config"
	"vivapay-be/internal/db"
	"vivapay-be/internal/httpapi"
	"vivapay-be/internal/logger"
	"vivapay-be/internal/metrics"
	"vivapay-be/internal/middleware"
	"vivapay-be/internal/payment"
	"vivapay-be/internal/payment/webhook"
	"vivapay-be/internal/viva"

	"go.uber.org/zap"
)

const webhookPath = "/webhook/viva"

var errMissingJWTSecret = errors.New("JWT_SECRET must be set")

var (
	initDBFunc      = db.InitDB
	startServerFunc = startServer
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("Server stopped", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		return errMissingJWTSecret
	}

	database := initDBFunc(cfg)
	defer database.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := ":" + cfg.AppPort
	logger.L().Info("Payment server starting",
		zap.String("addr", addr),
		zap.Bool("viva_test_mode", cfg.VivaTestMode),
	)
	return startServerFunc(addr, newServer(ctx, cfg, database))
}

func newServer(ctx context.Context, cfg *config.Config, database *sql.DB) http.Handler {
	gateway := viva.NewGateway(
		viva.Settings{
			MerchantID: cfg.VivaMerchantID,
			APIKey:     cfg.VivaAPIKey,
			TestMode:   cfg.VivaTestMode,
		},
		&http.Client{Timeout: cfg.VivaHTTPTimeout},
		viva.Parameters{
			SourceCode:  optional(cfg.VivaSourceCode),
			RequestLang: optional(cfg.VivaRequestLang),
		},
	)

	repo := payment.NewRepository(database)
	svc := payment.NewService(repo, payment.NewVivaGateway(gateway))

	limiter := newLimiter(cfg.InternalSecretKey)
	go limiter.Run(ctx, time.Minute)

	return setupRouter(
		httpapi.NewHandler(svc),
		webhook.NewWebhookHandler(svc, repo),
		limiter,
		[]byte(cfg.JWTSecret),
	)
}

// newLimiter puts Viva callbacks and the calls that move money on the strict tier.
func newLimiter(internalKey string) *middleware.Limiter {
	return middleware.NewLimiter(internalKey,
		middleware.PathPrefix(webhookPath),
		middleware.Route(http.MethodPost, "/payments/", "/refund"),
		middleware.Route(http.MethodDelete, "/payments/", ""),
	)
}

func setupRouter(api *httpapi.Handler, webhookHandler http.Handler, limiter *middleware.Limiter, jwtSecret []byte) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	auth := middleware.Auth(jwtSecret)

	mux.Handle("GET /metrics/viva", auth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(metrics.Viva.Snapshot())
	})))

	// Viva calls back unauthenticated, GET for verification and POST for events.
	mux.Handle(webhookPath, limiter.Middleware(webhookHandler))

	api.Register(mux, func(next http.Handler) http.Handler {
		return middleware.Chain(next, auth, limiter.Middleware)
	})

	return middleware.Chain(mux, logger.RequestIDMiddleware, middleware.Logging)
}

// startServer serves until SIGINT/SIGTERM, then drains in-flight requests.
func startServer(addr string, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return viva.String(v)
}
