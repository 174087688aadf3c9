package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jonboulle/clockwork"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/config"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/gateway"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/handlers"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/logging"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/metrics"
	appMiddleware "github.com/atrajit-sarkar/Discord-Guardian/internal/middleware"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/services"
)

func main() {
	cfg := config.Load()
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)
	clock := clockwork.NewRealClock()

	// Ledger: Mongo when configured, the in-memory twin otherwise.
	var ledger services.Ledger
	if cfg.MongoURI != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		mongoLedger, err := services.NewMongoLedgerService(ctx, cfg.MongoURI, cfg.MongoDB, clock)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer mongoLedger.Close(context.Background())
		ledger = mongoLedger
		logger.Info("ledger backed by MongoDB", "database", cfg.MongoDB)
	} else {
		ledger = services.NewMemoryLedger(clock)
		logger.Warn("MONGO_URI not set, using in-memory ledger (state is not durable)")
	}

	// Tier table: external file with fallback to the built-in four bands.
	tiers := services.DefaultTierTable()
	if specs, err := config.LoadTierTable(cfg.TierTableFile); err != nil {
		logger.Info("using default tier table", "reason", err)
	} else if t, err := services.NewTierTable(specs); err != nil {
		logger.Warn("tier table file invalid, using default", "error", err)
	} else {
		tiers = t
	}

	exemptions := services.NewExemptionRegistry(config.LoadExemptions(cfg.ExemptionsFile))

	classifier := services.NewGeminiClassifier(cfg.GeminiAPIKey, cfg.ClassifierTimeout, logger)
	policy := &services.Policy{
		PenaltyFlag:   cfg.HeartPenaltyFlag,
		Advice:        cfg.HeartAdvice,
		ProblemSolved: cfg.HeartProblemSolved,
	}
	moderation := services.NewModerationService(ledger, logger)
	engine := services.NewEngine(ledger, classifier, policy, tiers, exemptions, moderation, services.EngineConfig{
		StartingHearts: cfg.HeartStart,
		DailyBonus:     cfg.HeartDailyBonus,
	}, logger)

	// Intent executor: log-only platform stand-ins unless a webhook is set.
	var notifier gateway.Notifier = &gateway.LogNotifier{Logger: logger}
	if cfg.NotifyWebhookURL != "" {
		notifier = gateway.NewWebhookNotifier(cfg.NotifyWebhookURL)
	}
	executor := gateway.NewExecutor(
		notifier,
		&gateway.LogRoleManager{Logger: logger},
		&gateway.LogRemover{Logger: logger},
		moderation,
		logger,
	)

	admins := services.NewAdminService(cfg.JWTSecret, cfg.JWTExpiration)
	if err := admins.Seed(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatalf("Failed to seed admin account: %v", err)
	}

	authHandler := handlers.NewAuthHandler(admins)
	eventsHandler := handlers.NewEventsHandler(engine, executor, cfg.AllowedGuildID, logger)
	guildHandler := handlers.NewGuildHandler(ledger, tiers, cfg.HeartStart, cfg.LeaderboardLimit, logger)
	adminHandler := handlers.NewAdminHandler(engine, executor, logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", authHandler.Login)

		r.Post("/events/message", eventsHandler.IngestMessage)

		r.Route("/guilds/{guildID}", func(r chi.Router) {
			r.Get("/leaderboard", guildHandler.GetLeaderboard)
			r.Get("/members/{userID}/hearts", guildHandler.GetHearts)
		})

		r.Group(func(r chi.Router) {
			r.Use(appMiddleware.JWTAuth(cfg.JWTSecret))

			r.Post("/admin/award", adminHandler.Award)
			r.Post("/admin/penalize", adminHandler.Penalize)
		})
	})

	logger.Info("guardian API server starting", "address", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, r); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
