// Command migrate applies the database schema and optionally backfills
// campaign data from a directory of export files.
//
// Usage: migrate [export_dir]
package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"

	"spendlens/internal"
	"spendlens/internal/config"
	"spendlens/internal/container"
	"spendlens/internal/ingest"
	"spendlens/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Schema migration complete")

	if len(os.Args) < 2 {
		return
	}

	logger := internal.NewDefaultLogger()
	appContainer := container.New(appConfig, logger)
	appContainer.InitWithDatabase(db)

	files, err := findExportFiles(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to scan export directory: %v", err)
	}
	log.Printf("Found %d export files to ingest", len(files))

	var uploads []ingest.UploadFile
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			log.Printf("Skipping %s: %v", file, err)
			continue
		}
		uploads = append(uploads, ingest.UploadFile{Filename: filepath.Base(file), Data: data})
	}

	ingested := 0
	failed := 0
	for _, result := range appContainer.IngestService.IngestBatch(ctx, uploads) {
		if result.Error != "" {
			log.Printf("Failed to ingest %s: %s", result.Filename, result.Error)
			failed++
			continue
		}
		log.Printf("Ingested %s: %d records from %s", result.Filename, result.Inserted, result.Source)
		ingested++
	}
	log.Printf("Backfill complete: %d ingested, %d failed", ingested, failed)
}

func findExportFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv", ".tsv", ".txt", ".xlsx", ".xlsm":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
