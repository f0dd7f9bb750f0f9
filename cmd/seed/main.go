// Command main fills the blog database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"strings"

	"inkpost/internal/config"
	"inkpost/internal/database"
	"inkpost/internal/security"
	"inkpost/internal/seed"
)

func main() {
	preset := flag.String("preset", "default", "Preset to apply ("+strings.Join(seed.PresetNames(), ", ")+")")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("rand", 0, "Random seed for reproducible data (0 = time based)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Schema apply failed: %v", err)
	}

	hasher, err := security.NewPasswordHasher(cfg.PasswordScheme)
	if err != nil {
		log.Fatalf("Invalid password scheme: %v", err)
	}
	s := seed.NewSeeder(db, hasher, *randSeed)

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	sum, err := s.ApplyPreset(ctx, *preset)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d posts, %d comments, %d likes", sum.Users, sum.Posts, sum.Comments, sum.Likes)
	log.Printf("Generated users have the password %q", seed.DefaultPassword)
}
