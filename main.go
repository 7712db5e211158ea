package main

import (
	"context"
	"log"

	"spendlens/internal"
	"spendlens/internal/config"
	"spendlens/internal/container"
	"spendlens/internal/errors"
	"spendlens/internal/migration"
	"spendlens/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase opens the PostgreSQL connection and applies the schema
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	migrator := migration.NewRunner()
	if err := migrator.Run(context.Background(), db); err != nil {
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewDefaultLogger()

	db, err := initDatabase(appConfig)
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	appContainer := container.New(appConfig, logger)
	appContainer.InitWithDatabase(db)
	defer appContainer.Shutdown()

	server := ui.NewApp(appConfig.Server, appConfig.Ingest,
		appContainer.IngestService, appContainer.DashboardService, logger)

	logger.Info("[main] starting server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start())
}
