// Command seed fills the configured store with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"findlost/internal/config"
	"findlost/internal/database"
	"findlost/internal/repository"
	"findlost/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numItems := flag.Int("items", 100, "Number of items to create")
	recovered := flag.Int("recovered", 25, "Percent of items to mark recovered")
	seedValue := flag.Int64("seed", 0, "Random seed (0 picks one)")
	maxDays := flag.Int("days", 90, "Spread creation times over this many days")
	fixture := flag.String("fixture", "", "Load a YAML fixture instead of generating data")
	dryRun := flag.Bool("dry-run", false, "Log what would be created without writing")
	flag.Parse()

	log.Println("Find Lost Items seeder")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := database.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to store: %v", err)
	}
	defer func() { _ = store.Close(context.Background()) }()

	repos := repository.New(store)

	var sum seed.Summary
	if *fixture != "" {
		f, err := os.Open(*fixture)
		if err != nil {
			log.Fatalf("Failed to open fixture: %v", err)
		}
		fx, err := seed.LoadFixture(f)
		_ = f.Close()
		if err != nil {
			log.Fatalf("Invalid fixture: %v", err)
		}
		sum, err = fx.Apply(ctx, repos)
		if err != nil {
			log.Fatalf("Fixture seeding failed: %v", err)
		}
	} else {
		sum, err = seed.NewSeeder(repos, seed.Options{
			Users:            *numUsers,
			Items:            *numItems,
			RecoveredPercent: *recovered,
			Seed:             *seedValue,
			MaxDays:          *maxDays,
			DryRun:           *dryRun,
		}).Run(ctx)
		if err != nil {
			log.Fatalf("Seeding failed: %v", err)
		}
	}

	log.Printf("Created %d users, %d items, %d recoveries", sum.Users, sum.Items, sum.Recoveries)
}
