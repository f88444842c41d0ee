package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	"tradebot/internal/broker"
	"tradebot/internal/engine"
	"tradebot/internal/guards"
	"tradebot/internal/notify"
	"tradebot/internal/repository"
	"tradebot/internal/stream"
	"tradebot/strategies/crossover"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("[main] no .env file, using process environment")
	}

	cfg := engine.Config{
		FastPeriod:  envInt("FAST_PERIOD", 20),
		SlowPeriod:  envInt("SLOW_PERIOD", 50),
		MaxBudget:   envDecimal("MAX_BUDGET", "10000"),
		Universe:    splitList(mustEnv("UNIVERSE")),
		Exchange:    mustEnv("EXCHANGE"),
		HistoryBars: envInt("HISTORY_BARS", 0),
		MaxDrawdown: envDecimal("MAX_DRAWDOWN", "0.25"),
		DupWindow:   time.Duration(envInt("DUP_WINDOW_SECONDS", 30)) * time.Second,
	}

	db, err := repository.NewDatabase(mustEnv("DATABASE_URL"), cfg.Exchange)
	if err != nil {
		log.Fatalf("[main] database: %v", err)
	}
	defer db.Close()

	paper := broker.NewPaper(envDecimal("STARTING_CASH", "100000"))
	market := broker.NewMarkFeed(
		stream.NewClient(mustEnv("STREAM_URL"), os.Getenv("API_KEY"), os.Getenv("API_SECRET")),
		paper,
	)
	exec := guards.NewSafeExecution(paper, cfg.DupWindow)
	notifier := notify.NewWebhook(os.Getenv("WEBHOOK_URL"))

	bot, err := engine.NewOrchestrator(
		cfg,
		crossover.New(cfg.FastPeriod, cfg.SlowPeriod),
		market,
		exec,
		&db,
		notifier,
	)
	if err != nil {
		log.Fatalf("[main] config: %v", err)
	}

	go serveMetrics(envOr("METRICS_ADDR", ":9090"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := bot.Run(ctx); err != nil {
		log.Fatalf("[main] run: %v", err)
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	log.Printf("[main] metrics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Printf("[main] metrics server stopped: %v", err)
	}
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("[main] %s missing", key)
	}
	return value
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Fatalf("[main] %s must be an integer, got %q", key, value)
	}
	return n
}

func envDecimal(key, fallback string) decimal.Decimal {
	value := os.Getenv(key)
	if value == "" {
		value = fallback
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		log.Fatalf("[main] %s must be a decimal, got %q", key, value)
	}
	return d
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
