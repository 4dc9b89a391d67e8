package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/noah-isme/cart-pricing/internal/app"
	"github.com/noah-isme/cart-pricing/internal/config"
	"github.com/noah-isme/cart-pricing/internal/health"
	"github.com/noah-isme/cart-pricing/internal/obs"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	now := time.Now()
	deps, err := app.NewDependencies(cfg, logger, now)
	if err != nil {
		logger.Fatal().Err(err).Msg("build dependencies")
	}

	cart := deps.NewCart()
	if err := app.FillDemoCart(cart); err != nil {
		logger.Fatal().Err(err).Msg("fill demo cart")
	}
	quote := cart.Quote(now)
	for _, line := range quote.Lines {
		logger.Info().
			Str("code", line.Code).
			Int("quantity", line.Quantity).
			Str("list_total", line.ListTotal.String()).
			Str("total", line.Total.String()).
			Str("promotion_code", line.PromotionCode).
			Msg("cart_line")
	}
	logger.Info().
		Str("cart_id", cart.ID.String()).
		Str("subtotal", quote.Subtotal.String()).
		Str("savings", quote.Savings.String()).
		Str("total", quote.Total.String()).
		Msg("cart_total")

	if !cfg.OpsEnabled() {
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.OpsAddr,
		Handler:           deps.OpsRouter(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		<-ctx.Done()
		health.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("shutdown ops server")
		}
	}()

	logger.Info().Str("addr", srv.Addr).Msg("ops server starting")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("ops server exited unexpectedly")
	}
	<-drained
	logger.Info().Msg("ops server stopped")
}
