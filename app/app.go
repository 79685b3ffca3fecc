package app

import (
	"context"
	"fmt"
	"net/http"

	"pacas-inventario/app/controller"
	"pacas-inventario/app/router"
	"pacas-inventario/config"
	"pacas-inventario/db"
	"pacas-inventario/logging"
	"pacas-inventario/repository"
	"pacas-inventario/service"
	"pacas-inventario/utils"
)

// App holds the wired services and the HTTP handler
type App struct {
	Config      *config.Config
	DB          *db.DB
	Bundles     *service.BundleService
	Configs     *service.ConfigService
	PriceSheets *service.PriceSheetService
	Imports     *service.ImportService
	Backups     *service.BackupService
	Formatter   *utils.Formatter
	Handler     http.Handler
}

// Initialize opens the database, applies migrations and wires the application
func Initialize(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Open(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if _, err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	a, err := New(ctx, cfg, database)
	if err != nil {
		database.Close()
		return nil, err
	}
	return a, nil
}

// New wires repositories, services, controllers and routes over an open database
func New(ctx context.Context, cfg *config.Config, database *db.DB) (*App, error) {
	pricingDefaults, err := config.LoadPricingDefaults(cfg.PricingDefaultsFile)
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	bundleRepo := repository.NewBundleRepository(database)
	configRepo := repository.NewConfigRepository(database, pricingDefaults)

	formatter := utils.NewFormatter(cfg.DisplayLocale)

	// Drive uploads are optional; backups are always written locally
	var driveService service.DriveServiceInterface
	if cfg.GoogleCredentials != "" && cfg.DriveBackupFolderID != "" {
		ds, err := service.NewDriveService(ctx, cfg.GoogleCredentials)
		if err != nil {
			logging.Sugar.Warnf("⚠️  Google Drive disabled: %v", err)
		} else {
			driveService = ds
		}
	}

	a := &App{
		Config:      cfg,
		DB:          database,
		Bundles:     service.NewBundleService(bundleRepo, configRepo, formatter),
		Configs:     service.NewConfigService(configRepo),
		PriceSheets: service.NewPriceSheetService(bundleRepo, configRepo, formatter, cfg.ChromePath),
		Imports:     service.NewImportService(bundleRepo, configRepo, cfg.BackupDir),
		Backups:     service.NewBackupService(bundleRepo, configRepo, driveService, cfg.DriveBackupFolderID, cfg.BackupDir),
		Formatter:   formatter,
	}

	// Create controllers
	controllers := &router.Controllers{
		Bundle:     controller.NewBundleController(a.Bundles),
		Config:     controller.NewConfigController(a.Configs),
		PriceSheet: controller.NewPriceSheetController(a.PriceSheets),
	}

	// Setup routes using standard http router
	a.Handler = router.SetupRoutes(controllers)

	return a, nil
}

// Close releases the database connection
func (a *App) Close() error {
	return a.DB.Close()
}
