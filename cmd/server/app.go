package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/ecorewards-api/internal/catalog"
	"github.com/phrazzld/ecorewards-api/internal/config"
	"github.com/phrazzld/ecorewards-api/internal/domain/streak"
	"github.com/phrazzld/ecorewards-api/internal/events"
	"github.com/phrazzld/ecorewards-api/internal/platform/postgres"
	"github.com/phrazzld/ecorewards-api/internal/platform/sqlite"
	"github.com/phrazzld/ecorewards-api/internal/platform/userlock"
	"github.com/phrazzld/ecorewards-api/internal/recommend"
	"github.com/phrazzld/ecorewards-api/internal/service"
	"github.com/phrazzld/ecorewards-api/internal/service/auth"
	"github.com/phrazzld/ecorewards-api/internal/store"
)

// application holds the shared dependencies of the server and releases them
// on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	catalog *catalog.Catalog
	stores  store.Stores
	locks   *userlock.Locker
	emitter *events.InMemoryEventEmitter

	jwtService            auth.JWTService
	habitService          service.HabitService
	walletService         service.WalletService
	recommendationService service.RecommendationService
	profileService        service.ProfileService

	now func() time.Time
}

// newApplication wires the services on top of an open database. db must
// already be migrated.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
		now:    time.Now,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.catalog, err = catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	logger.Info("catalog loaded",
		slog.Int("questions", len(app.catalog.Questions())),
		slog.Int("challenges", len(app.catalog.Challenges())),
		slog.Int("rewards", len(app.catalog.Rewards())))

	if cfg.Database.IsSQLite() {
		app.stores = sqlite.NewStores(db, logger)
	} else {
		app.stores = postgres.NewStores(db, logger)
	}

	app.locks = userlock.NewLocker(cfg.Engine.LockTimeout)

	app.emitter = events.NewInMemoryEventEmitter(logger)
	app.emitter.RegisterHandler(events.NewAuditLogHandler(logger))
	app.emitter.RegisterHandler(events.NewAlertHandler(logger))

	deps := service.Deps{
		DB:           db,
		Stores:       app.stores,
		Catalog:      app.catalog,
		Locks:        app.locks,
		Events:       app.emitter,
		Now:          app.now,
		VerifyLedger: cfg.Engine.VerifyLedger,
		Logger:       logger,
	}

	streaks, err := streak.NewServiceWithParams(streak.NewParams(streak.ParamsConfig{
		GraceWindowDays: cfg.Engine.GraceWindowDays,
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create streak service: %w", err)
	}

	if app.habitService, err = service.NewHabitService(deps, streaks); err != nil {
		return nil, fmt.Errorf("failed to create habit service: %w", err)
	}
	if app.walletService, err = service.NewWalletService(deps); err != nil {
		return nil, fmt.Errorf("failed to create wallet service: %w", err)
	}
	if app.recommendationService, err = service.NewRecommendationService(deps, recommend.Params{
		FallbackCount: cfg.Engine.FallbackCount,
	}); err != nil {
		return nil, fmt.Errorf("failed to create recommendation service: %w", err)
	}
	if app.profileService, err = service.NewProfileService(deps, cfg.Engine.RecentTransactions); err != nil {
		return nil, fmt.Errorf("failed to create profile service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully and
// releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
