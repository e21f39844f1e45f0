package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nathanyu/clob/internal/config"
	"github.com/nathanyu/clob/internal/handler"
	"github.com/nathanyu/clob/internal/marketdata"
	"github.com/nathanyu/clob/internal/matching"
	"github.com/nathanyu/clob/internal/middleware"
	"github.com/nathanyu/clob/internal/sequencer"
	"github.com/nathanyu/clob/internal/stream"
	"github.com/nathanyu/clob/internal/telemetry"
)

const serviceName = "clob"

func main() {
	telemetry.InitLogger(serviceName)
	slog.Info("starting CLOB service")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "error", err)
		os.Exit(1)
	}

	cleanup, err := telemetry.InitTracer(serviceName)
	if err != nil {
		slog.Warn("tracer init failed, continuing without tracing", "error", err)
	} else {
		defer cleanup()
	}

	// --- Core components ---

	// Matching engine (per-symbol order books, global id/sequence counters)
	engine := matching.NewEngine()

	// Sequencer (single writer over the engine, trade stream source)
	seq := sequencer.NewSequencer(engine, cfg.ChannelBuffer)

	// Market data publisher (trade log, candlesticks)
	publisher := marketdata.NewPublisher(cfg.ChannelBuffer)

	// Websocket streamer
	streamer := stream.NewServer()

	// Fan trades out from the sequencer to the publisher and the streamer.
	go func() {
		for trades := range seq.TradeOut {
			select {
			case publisher.TradeIn <- trades:
			default:
				slog.Warn("market data trade channel full")
			}
			streamer.Publish(stream.Message{Type: "trade", Data: trades})
		}
	}()

	seq.Start()
	publisher.Start()

	// --- HTTP server ---
	r := gin.Default()
	r.Use(middleware.PrometheusMiddleware())
	r.Use(middleware.Tracing())

	h := handler.NewHandler(seq, publisher, streamer)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: r,
	}

	// --- Metrics server ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    ":" + cfg.MetricsPort,
		Handler: metricsMux,
	}

	go func() {
		slog.Info("metrics server listening", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		slog.Info("http server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	seq.Stop()
	publisher.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		slog.Error("metrics server shutdown error", "error", err)
	}

	slog.Info("CLOB service stopped")
}
