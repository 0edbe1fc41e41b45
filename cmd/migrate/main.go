package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"funnelboard/adapters/postgres"
	"funnelboard/domain/funnel"
	"funnelboard/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// demoCounts is a small version of the demo onboarding funnel
var demoCounts = funnel.AccountCreationCounts{
	TotalAccounts:     482,
	StepBasicInfo:     439,
	StepHeadline:      297,
	StepLocation:      261,
	StepCompany:       198,
	StepLinkedIn:      120,
	StepFinderEnabled: 51,
}

func main() {
	seed := flag.Bool("seed", false, "Insert demo persons after creating the schema")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if flag.NArg() > 0 {
		databaseURL = flag.Arg(0)
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate [-seed] [database_url] (or set DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	log.Printf("Running migrations v%s", runner.Version())
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if *seed {
		if err := runner.Seed(ctx, db, demoCounts); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		log.Printf("Seeded %d demo persons", demoCounts.TotalAccounts)
	}

	spec, err := postgres.NewFunnelRepository(db).Funnel(ctx)
	if err != nil {
		log.Printf("Account-creation funnel not readable yet: %v", err)
		return
	}
	log.Printf("Account-creation funnel ready: %d accounts this year", int64(spec.Total))
}
