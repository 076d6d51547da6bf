package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"axonflow-be/internal/repository/contract"
	"axonflow-be/internal/repository/unitofwork"
	"axonflow-be/pkg/database"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.DocumentRepository())
	assert.NotNil(t, uow.DocumentVectorRepository())

	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Document Repository", func(t *testing.T) {
		count, err := uow.DocumentRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("Document count: %d", count)
	})

	t.Run("Check Document Vector Repository", func(t *testing.T) {
		count, err := uow.DocumentVectorRepository().Count(context.Background(), contract.VectorFilter{})
		assert.NoError(t, err)
		t.Logf("DocumentVector count: %d", count)
	})

	t.Run("EnsureIndex Is Idempotent", func(t *testing.T) {
		vectorRepo := uow.DocumentVectorRepository()
		assert.NoError(t, vectorRepo.EnsureIndex(context.Background()))
		assert.NoError(t, vectorRepo.EnsureIndex(context.Background()))
	})
}
