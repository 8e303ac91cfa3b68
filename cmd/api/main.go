package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"stock_insight/pkg/api/currency"
	"stock_insight/pkg/api/moat"
	"stock_insight/pkg/api/portfolio"
	"stock_insight/pkg/api/stock"
	"stock_insight/pkg/core/agent"
	"stock_insight/pkg/core/fx"
	"stock_insight/pkg/core/marketdata"
	"stock_insight/pkg/core/report"
	"stock_insight/pkg/core/scrape"
	"stock_insight/pkg/core/store"
	"stock_insight/pkg/logger"
)

const shutdownGrace = 10 * time.Second

func main() {
	godotenv.Load()

	log := logger.New(logger.Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Pretty: os.Getenv("LOG_PRETTY") == "true",
	})
	logger.SetGlobalLogger(log)

	agentCfg, err := agent.LoadConfig("config/models.yaml")
	if err != nil {
		log.Warn().Err(err).Msg("models config unavailable, using defaults")
		agentCfg = agent.DefaultConfig()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cache, err := store.Open(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cache store init failed")
	}
	defer cache.Close()

	market := marketdata.NewClient(log)
	analyst := scrape.NewAnalyst(log)
	converter := fx.NewConverter(market, log)
	reports := report.NewBuilder(market, analyst, log)
	agents := agent.NewManager(agentCfg, log)

	stockAPI := stock.NewHandler(reports, market, cache, log)
	portfolioAPI := portfolio.NewHandler(market, converter, reports, agents, cache, log)
	moatAPI := moat.NewHandler(agents, log)
	currencyAPI := currency.NewHandler(converter, log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/stock/history/{ticker}", stockAPI.History)
		r.Get("/stock/{ticker}", stockAPI.Get)
		r.Get("/chart/{ticker}/{timeframe}", stockAPI.Chart)
		r.Post("/portfolio/twr", portfolioAPI.TWR)
		r.Post("/portfolio/analyze", portfolioAPI.Analyze)
		r.Get("/currency-rate", currencyAPI.Rate)
		r.Get("/evaluate_moat/{ticker}", moatAPI.Evaluate)
	})

	addr := ":" + envOr("PORT", "8000")
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
