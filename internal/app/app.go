package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/stockpile-hq/stockpile/internal/attrtype"
	"github.com/stockpile-hq/stockpile/internal/config"
	"github.com/stockpile-hq/stockpile/internal/db"
	"github.com/stockpile-hq/stockpile/internal/markdown"
	"github.com/stockpile-hq/stockpile/internal/metrics"
	"github.com/stockpile-hq/stockpile/internal/repository"
	"github.com/stockpile-hq/stockpile/internal/service"
	"github.com/stockpile-hq/stockpile/internal/storage"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	Registry         *attrtype.Registry
	AuthService      *service.AuthService
	EmailService     *service.EmailService
	AttributeService *service.AttributeService
	AssetService     *service.AssetService
	FileService      *service.FileService
	ReportService    *service.ReportService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app, err := build(ctx, cfg, database)
	if err != nil {
		_ = database.Close()
		return nil, err
	}
	return app, nil
}

// NewWithDB wires the services over an already migrated database.
func NewWithDB(ctx context.Context, cfg *config.Config, database *sqlx.DB) (*App, error) {
	return build(ctx, cfg, database)
}

func build(ctx context.Context, cfg *config.Config, database *sqlx.DB) (*App, error) {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	attributeRepository := repository.NewAttributeRepository(database)
	assetRepository := repository.NewAssetRepository(database)

	// One registry; every type carries its value table.
	registry := attrtype.New(repository.NewValueTables(database))

	// Storage is optional; file uploads are rejected without it.
	var fileStorage storage.Storage
	if cfg.StorageEnabled() {
		s3Storage, err := storage.New(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		fileStorage = s3Storage
	}

	if cfg.MetricsEnabled {
		metrics.Register()
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(userRepository, emailService, cfg.JWTSecret, cfg.JWTExpiry)
	attributeService := service.NewAttributeService(attributeRepository, assetRepository, registry)
	assetService := service.NewAssetService(assetRepository, attributeService)
	fileService := service.NewFileService(attributeService, fileStorage, cfg.MaxUploadSize)
	reportService := service.NewReportService(assetService, markdown.NewParser())

	return &App{
		Cfg:              cfg,
		DB:               database,
		Registry:         registry,
		AuthService:      authService,
		EmailService:     emailService,
		AttributeService: attributeService,
		AssetService:     assetService,
		FileService:      fileService,
		ReportService:    reportService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
