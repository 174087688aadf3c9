package main

import (
	"context"
	"log"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/config"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/gateway"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/logging"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/services"
)

// The reconciler applies exemption configuration out of band: it ensures
// every exempt subject has a profile, raises hearts to configured floors, and
// executes the resulting role intents. Safe to run repeatedly.
func main() {
	cfg := config.Load()
	logger := logging.Init(cfg.LogLevel, cfg.LogFormat)

	if cfg.AllowedGuildID == "" {
		log.Fatal("ALLOWED_GUILD_ID must be set for reconciliation")
	}
	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI must be set for reconciliation")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	ledger, err := services.NewMongoLedgerService(ctx, cfg.MongoURI, cfg.MongoDB, clockwork.NewRealClock())
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer ledger.Close(context.Background())

	exemptions := services.NewExemptionRegistry(config.LoadExemptions(cfg.ExemptionsFile))

	tiers := services.DefaultTierTable()
	if specs, err := config.LoadTierTable(cfg.TierTableFile); err == nil {
		if t, err := services.NewTierTable(specs); err == nil {
			tiers = t
		} else {
			logger.Warn("tier table file invalid, using default", "error", err)
		}
	}

	var directory services.MemberDirectory
	if cfg.RoleMembersFile != "" {
		fileDir, err := gateway.NewFileMemberDirectory(cfg.RoleMembersFile)
		if err != nil {
			log.Fatalf("Failed to load member directory: %v", err)
		}
		directory = fileDir
	}

	reconciler := services.NewReconciler(ledger, exemptions, tiers, directory, cfg.HeartStart, logger)
	intents, err := reconciler.Reconcile(ctx, cfg.AllowedGuildID)
	if err != nil {
		log.Fatalf("Reconciliation failed: %v", err)
	}

	moderation := services.NewModerationService(ledger, logger)
	executor := gateway.NewExecutor(
		&gateway.LogNotifier{Logger: logger},
		&gateway.LogRoleManager{Logger: logger},
		&gateway.LogRemover{Logger: logger},
		moderation,
		logger,
	)
	executor.Execute(ctx, intents)

	logger.Info("reconciliation complete", "guild_id", cfg.AllowedGuildID, "intents", len(intents))
}
