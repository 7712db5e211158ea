package container

import (
	"spendlens/adapters/excel"
	"spendlens/adapters/postgres"
	"spendlens/app"
	"spendlens/internal"
	"spendlens/internal/config"
	"spendlens/internal/ingest"
	"spendlens/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Stores (data access layer)
	RecordStore         ports.RecordStore
	ClassificationStore ports.ClassificationStore
	ImportLog           ports.ImportLog

	// Services
	IngestService    *ingest.Service
	DashboardService *app.DashboardService
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) *Container {
	return &Container{Config: cfg, Logger: logger}
}

// InitWithDatabase wires the stores and services on top of an open
// database connection.
func (c *Container) InitWithDatabase(db *sqlx.DB) {
	c.DB = db

	c.RecordStore = postgres.NewRecordStore(db)
	c.ClassificationStore = postgres.NewClassificationStore(db)
	c.ImportLog = postgres.NewImportLog(db)

	c.IngestService = ingest.NewService(
		c.RecordStore, c.ImportLog, excel.NewConverter(), c.Config.Ingest, c.Logger)
	c.DashboardService = app.NewDashboardService(
		c.RecordStore, c.ClassificationStore, c.ImportLog, c.Config.Analytics, c.Logger)
}

// Shutdown releases container resources.
func (c *Container) Shutdown() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
