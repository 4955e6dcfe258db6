package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"pagespeed-campaign/internal/analyses"
	"pagespeed-campaign/internal/campaign"
	"pagespeed-campaign/internal/catalog"
	"pagespeed-campaign/internal/crux"
	"pagespeed-campaign/internal/pagespeed"
	"pagespeed-campaign/internal/shared/config"
	"pagespeed-campaign/internal/shared/server"
	"pagespeed-campaign/internal/shared/storage/object"
	localstore "pagespeed-campaign/internal/shared/storage/object/local"
	s3store "pagespeed-campaign/internal/shared/storage/object/s3"
	"pagespeed-campaign/internal/shared/telemetry"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	Catalog         *catalog.Catalog
	Store           object.ObjectStore
	PageSpeed       *pagespeed.Client
	CrUX            *crux.Client
	AnalysesService *analyses.Service
	AnalysisHandler *analyses.Handler
	CatalogHandler  *catalog.Handler
}

// TryBuild is Build for long-lived runtimes that report startup failures
// instead of crashing: a catalog panic comes back as an error.
func TryBuild(cfg config.Config) (app *App, err error) {
	defer func() {
		if r := recover(); r != nil {
			app, err = nil, fmt.Errorf("catalog: %v", r)
		}
	}()
	return Build(cfg)
}

// Build prepares shared dependencies and wires routes. An inconsistent
// catalog panics.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ReportStore) == "" {
		cfg.ReportStore = "local"
	}
	telemetry.SetLevel(cfg.LogLevel)
	ctx := context.Background()

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Catalog:   catalog.MustLoad(cfg.CatalogDir),
		Store:     store,
		PageSpeed: pagespeed.NewClient(cfg.PageSpeedTimeout),
		CrUX:      crux.NewClient(cfg.CrUXTimeout),
	}

	app.AnalysesService = &analyses.Service{
		PageSpeed:     app.PageSpeed,
		CrUX:          app.CrUX,
		Engine:        campaign.NewEngine(app.Catalog),
		Store:         app.Store,
		DefaultAPIKey: cfg.PageSpeedAPIKey,
		Key:           analyses.DefaultKey,
	}
	app.AnalysisHandler = analyses.NewHandler(app.AnalysesService)
	app.CatalogHandler = catalog.NewHandler(app.Catalog)
	app.Router = server.NewRouter(app.Config, app.AnalysisHandler, app.CatalogHandler)

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":       cfg.Env,
		"store":     cfg.ReportStore,
		"solutions": len(app.Catalog.Solutions()),
		"mappings":  len(app.Catalog.Mappings()),
	})
	return app, nil
}

// buildStore returns nil when report storage is disabled.
func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ReportStore {
	case "none":
		return nil, nil
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("REPORT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.ReportsDir), nil
	}
}
