package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/workmatch/workmatch/internal/config"
	"github.com/workmatch/workmatch/internal/db"
)

// Seeds the database with demo accounts, companies, swipes and matches.
// Intended for local development only.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment variables")
	}

	cfg := config.New()

	gdb, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	if err := db.SeedTestData(gdb); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("Seeding complete.")
}
