package main

import (
	"context"
	"log"
	"os"

	"axonflow-be/internal/model"
	"axonflow-be/internal/repository/implementation"
	"axonflow-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Println("Starting GORM Migration...")

	// AutoMigrate cannot create extensions.
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
	}

	// Vector extension, table and ANN index in one idempotent step.
	vectorRepo := implementation.NewDocumentVectorRepository(db)
	if err := vectorRepo.EnsureIndex(context.Background()); err != nil {
		log.Fatalf("Error: Failed to ensure vector index: %v", err)
	}

	models := []interface{}{
		&model.User{},
		&model.Document{},
		&model.ChatSession{},
		&model.ChatMessage{},
		&model.ChatCitation{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	log.Println("Migration completed.")
}
