package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jewelerp/backend/internal/domain/exchange"
	"github.com/jewelerp/backend/internal/domain/rates"
	"github.com/jewelerp/backend/internal/domain/tax"
	"github.com/jewelerp/backend/internal/infrastructure/config"
	"github.com/jewelerp/backend/internal/infrastructure/logger"
	"github.com/jewelerp/backend/internal/infrastructure/persistence"
)

func main() {
	var logLevel string
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	switch command {
	case "up":
		runUp(db, log)
	case "status":
		runStatus(db, log)
	case "seed":
		runSeed(db, cfg, log, args[1:])
	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// migratedModels is every persisted aggregate and ledger table
var migratedModels = []interface{}{
	&rates.RateRecord{},
	&tax.TcsTransaction{},
	&exchange.ExchangeOrder{},
	&exchange.ExchangeItem{},
}

func runUp(db *persistence.Database, log *zap.Logger) {
	log.Info("Running schema migration")

	if err := db.DB.AutoMigrate(migratedModels...); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}

	log.Info("Schema migration completed", zap.Int("models", len(migratedModels)))
}

func runStatus(db *persistence.Database, log *zap.Logger) {
	migrator := db.DB.Migrator()
	for _, model := range migratedModels {
		name := fmt.Sprintf("%T", model)
		if migrator.HasTable(model) {
			log.Info("Table present", zap.String("model", name))
		} else {
			log.Warn("Table missing", zap.String("model", name))
		}
	}
}

// runSeed inserts opening metal rates for the configured purities.
// Arguments take the form PURITY=RATE, e.g. GOLD_22K=6150.50.
func runSeed(db *persistence.Database, cfg *config.Config, log *zap.Logger, args []string) {
	if len(args) == 0 {
		log.Fatal("No rates given. Usage: migrate seed GOLD_22K=6150.50 SILVER_925=92.50")
	}

	allowed := make(map[string]bool, len(cfg.Rates.SeedPurities))
	for _, purity := range cfg.Rates.SeedPurities {
		allowed[purity] = true
	}

	repo := persistence.NewGormRateRepository(db.DB)
	today := time.Now().Truncate(24 * time.Hour)
	ctx := context.Background()

	for _, arg := range args {
		purity, rate, ok := strings.Cut(arg, "=")
		if !ok {
			log.Fatal("Invalid seed argument, expected PURITY=RATE", zap.String("arg", arg))
		}
		if !allowed[purity] {
			log.Warn("Purity not in configured seed list, skipping",
				zap.String("purity", purity),
				zap.Strings("configured", cfg.Rates.SeedPurities),
			)
			continue
		}

		unitRate, err := decimal.NewFromString(rate)
		if err != nil {
			log.Fatal("Invalid rate value", zap.String("arg", arg), zap.Error(err))
		}

		record, err := rates.NewMetalRateRecord(purity, unitRate, today)
		if err != nil {
			log.Fatal("Invalid rate record", zap.String("purity", purity), zap.Error(err))
		}
		if err := repo.Append(ctx, record); err != nil {
			log.Fatal("Failed to seed rate", zap.String("purity", purity), zap.Error(err))
		}

		log.Info("Seeded opening rate",
			zap.String("purity", purity),
			zap.String("rate", unitRate.String()),
		)
	}
}

func printUsage() {
	fmt.Println("Usage: migrate [flags] <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up       Create or update the schema for all persisted models")
	fmt.Println("  status   Report which tables exist")
	fmt.Println("  seed     Insert opening metal rates, e.g. seed GOLD_22K=6150.50")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -log-level   Log level (debug, info, warn, error)")
}
