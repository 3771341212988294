// Command seed fills the configured store with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"redshare/internal/config"
	"redshare/internal/di"
	"redshare/internal/seed"
)

func main() {
	opts := seed.DefaultOptions()
	flag.IntVar(&opts.Users, "users", opts.Users, "number of users to create, including the demo account")
	flag.IntVar(&opts.GalleriesPerUser, "galleries", opts.GalleriesPerUser, "galleries per user")
	flag.Int64Var(&opts.Seed, "seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg := config.LoadConfig()
	if cfg.Database.Driver == "memory" {
		log.Println("DB_DRIVER=memory keeps nothing after exit; use mysql or sqlite to persist the seed")
	}

	app, cleanup, err := di.InitializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := app.Seeder.Run(ctx, opts)
	if err != nil {
		app.Logger.Error("seeding failed", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
	if res.Skipped {
		app.Logger.Info("store already seeded")
	}
}
