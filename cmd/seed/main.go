// Command main runs the database seeder for Huntboard.
package main

import (
	"flag"
	"log"

	"huntboard/internal/config"
	"huntboard/internal/database"
	"huntboard/internal/seed"
)

func main() {
	// Parse command line flags
	numUsers := flag.Int("users", 20, "Number of users to create")
	appsPerUser := flag.Int("applications", 25, "Applications to create per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	maxDays := flag.Int("days", 120, "Spread application dates over this many days")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d applications each, clean=%v\n", *numUsers, *appsPerUser, *shouldClean)

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if _, err = database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run seeder
	opts := seed.Options{
		NumUsers:            *numUsers,
		ApplicationsPerUser: *appsPerUser,
		ShouldClean:         *shouldClean,
		MaxDays:             *maxDays,
	}
	if err := seed.Seed(database.DB, opts); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✅ Seeding complete")
}
