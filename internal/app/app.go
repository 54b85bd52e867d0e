package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/edenspa/core/internal/config"
	"github.com/edenspa/core/internal/database"
	"github.com/edenspa/core/internal/middleware"
	"github.com/edenspa/core/internal/modules/access"
	"github.com/edenspa/core/internal/modules/document"
	"github.com/edenspa/core/internal/modules/gateway"
	"github.com/edenspa/core/internal/pkg/jwt"
	pkgredis "github.com/edenspa/core/internal/pkg/redis"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// apiRateLimit is the per-IP request budget per second on /api when Redis is configured.
const apiRateLimit = 50

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	db      *gorm.DB
	rc      *pkgredis.Client
	store   *document.Store
	hub     *gateway.Hub
	logger  *zap.Logger
	cancel  context.CancelFunc
	stopped chan struct{}
	started time.Time
}

// New initializes the application: config → store → access → Redis → hub → routes.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	persister, db, err := openPersister(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	store := document.NewStore(persister, logger.Named("document"))
	if err := store.Load(context.Background()); err != nil {
		closeDatabase(db, logger)
		return nil, fmt.Errorf("document store: %w", err)
	}

	var rc *pkgredis.Client
	if cfg.RedisURL != "" {
		rc, err = pkgredis.Connect(cfg.RedisURL)
		if err != nil {
			closeDatabase(db, logger)
			return nil, fmt.Errorf("redis: %w", err)
		}
	}

	opts := gateway.Options{
		Store:        store,
		Access:       access.NewService(store, cfg.OperatorPassword, logger.Named("access")),
		RequireToken: cfg.Security.RequireUpdateToken,
		Redis:        rc,
		Logger:       logger.Named("gateway"),
	}
	if cfg.Security.RequireUpdateToken {
		opts.Signer = jwt.NewSigner(cfg.Security.TokenSecret, cfg.Security.TokenTTL)
	}
	hub := gateway.NewHub(opts)

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
		gin.DebugPrintRouteFunc = func(string, string, string, int) {}
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger.Named("http")))
	router.Use(cors.New(corsConfig(cfg)))

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		cfg:     cfg,
		router:  router,
		db:      db,
		rc:      rc,
		store:   store,
		hub:     hub,
		logger:  logger,
		cancel:  cancel,
		stopped: make(chan struct{}),
		started: time.Now(),
	}
	go func() {
		hub.Run(ctx)
		close(a.stopped)
	}()
	a.registerRoutes()

	logger.Info("document store ready",
		zap.String("driver", cfg.Storage.Driver),
		zap.Bool("operator_enabled", opts.Access.OperatorEnabled()),
		zap.Bool("update_token_required", cfg.Security.RequireUpdateToken),
		zap.Bool("redis", rc != nil),
	)
	return a, nil
}

// openPersister picks the document backend. The data directory is created
// up front for the file and SQLite backends.
func openPersister(cfg *config.AppConfig) (document.Persister, *gorm.DB, error) {
	switch cfg.Storage.Driver {
	case config.StorageMySQL:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		return document.NewSQLPersister(db), db, nil
	case config.StorageSQLite:
		if err := os.MkdirAll(cfg.DataPath(), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create data dir: %w", err)
		}
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		return document.NewSQLPersister(db), db, nil
	default:
		return document.NewFilePersister(cfg.DocumentPath()), nil, nil
	}
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Hub returns the sync channel hub.
func (a *App) Hub() *gateway.Hub { return a.hub }

// Shutdown stops the hub, dropping every session, and closes external connections.
func (a *App) Shutdown() {
	a.cancel()
	<-a.stopped
	if a.rc != nil {
		if err := a.rc.Close(); err != nil {
			a.logger.Warn("close redis", zap.Error(err))
		}
	}
	closeDatabase(a.db, a.logger)
}

func closeDatabase(db *gorm.DB, logger *zap.Logger) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if err != nil {
		logger.Warn("close database", zap.Error(err))
	}
}
