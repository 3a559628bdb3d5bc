package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ctrlfund/ctrlfund/internal"
	"github.com/ctrlfund/ctrlfund/internal/core/events"
	"github.com/ctrlfund/ctrlfund/internal/document"
	"github.com/ctrlfund/ctrlfund/internal/drive"
	"github.com/ctrlfund/ctrlfund/internal/identity"
	identitypg "github.com/ctrlfund/ctrlfund/internal/identity/postgres"
	"github.com/ctrlfund/ctrlfund/internal/localstore"
	"github.com/ctrlfund/ctrlfund/internal/note"
	"github.com/ctrlfund/ctrlfund/internal/notification"
	"github.com/ctrlfund/ctrlfund/internal/receipt"
	"github.com/ctrlfund/ctrlfund/internal/transaction"
	transactionpg "github.com/ctrlfund/ctrlfund/internal/transaction/postgres"
	"github.com/ctrlfund/ctrlfund/internal/transport"
	"github.com/ctrlfund/ctrlfund/internal/transport/rest"
	"github.com/ctrlfund/ctrlfund/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config     *internal.Config
	DB         *sqlx.DB
	LocalStore *localstore.Store
	Drive      *drive.Client
	Router     *chi.Mux
	Logger     *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.Drive.Shutdown(ctx); err != nil {
			deps.Logger.Error("drive client shutdown error", "error", err)
		}
		if err := deps.LocalStore.Close(); err != nil {
			deps.Logger.Error("local store close error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Logging.Environment, config.Logging.Level)
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	store, err := localstore.Open(config.LocalStore.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	eventBus := events.NewEventBus(lg)
	notifier := notification.NewService(lg, eventBus, 0)

	tokens := identity.NewJWTTokenGenerator(
		config.Security.JWTSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	provider := identity.NewSimulatedProvider(identity.ProviderProfile{
		Subject: "google-demo-subject",
		Email:   "demo@ctrlfund.com",
		Name:    "Demo User",
	})
	identityService := identity.NewService(
		identitypg.NewIdentityRepository(gormDB),
		tokens, provider, notifier, eventBus, lg,
		config.Security.BCryptCost,
	)

	transactionService := transaction.NewService(
		transactionpg.NewTransactionRepository(gormDB),
		notifier, eventBus, lg,
	)

	driveClient := drive.NewClient(drive.Config{
		Workers:     config.Drive.Workers,
		QueueSize:   config.Drive.QueueSize,
		UploadDelay: config.Drive.UploadDelay,
		FolderID:    config.Drive.FolderID,
	}, lg)

	noteService := note.NewService(store, notifier, lg)
	receiptService := receipt.NewService(store, notifier, identityService, driveClient, lg)
	documentService := document.NewService(store, notifier, identityService, lg)

	base := transport.NewBaseHandler(lg)
	handlers := rest.Handlers{
		Identity:     identity.NewHandler(identityService),
		Transaction:  transaction.NewHandler(transactionService),
		Note:         note.NewHandler(noteService),
		Receipt:      receipt.NewHandler(receiptService),
		Document:     document.NewHandler(documentService),
		Notification: rest.NewNotificationHandler(base, notifier),
		Export:       rest.NewExportHandler(base, transactionService, receiptService, noteService),
	}

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, handlers, identityService, config.Server.AllowedOrigins, lg)

	return &Dependencies{
		Config:     config,
		DB:         db,
		LocalStore: store,
		Drive:      driveClient,
		Router:     router,
		Logger:     lg,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
