package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/davinrkh/finbook/internal/application/service"
	"github.com/davinrkh/finbook/internal/auth"
	"github.com/davinrkh/finbook/internal/config"
	"github.com/davinrkh/finbook/internal/infrastructure/persistence/repository"
	"github.com/davinrkh/finbook/internal/infrastructure/persistence/sqlite"
	httpadapter "github.com/davinrkh/finbook/internal/interfaces/http"
	"github.com/davinrkh/finbook/internal/report"
	"github.com/davinrkh/finbook/internal/storage"
	"github.com/davinrkh/finbook/pkg/database"
	"github.com/davinrkh/finbook/pkg/utils"
)

func main() {
	// Local development secrets; missing .env is fine in production.
	_ = gotenv.Load()

	cfg, err := config.Load(configPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting finance tracker",
		zap.Int("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Repositories
	txManager := sqlite.NewDB(db.DB, logger)
	transactionRepo := repository.NewTransactionRepository(db.DB, logger)
	reimbursementRepo := repository.NewReimbursementRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	notificationRepo := repository.NewNotificationRepository(db.DB, logger)
	activityRepo := repository.NewActivityLogRepository(db.DB, logger)
	categoryRepo := repository.NewCategoryRepository(db.DB, logger)

	fileStore, err := storage.NewLocalFileStore(cfg.Storage.UploadDir, logger)
	if err != nil {
		logger.Fatal("Failed to initialize file store", zap.Error(err))
	}

	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	// Services
	svcLogger := service.NewZapLogger(logger)
	authService := service.NewAuthService(userRepo, tokens, svcLogger)
	userService := service.NewUserService(userRepo, svcLogger)
	transactionService := service.NewTransactionService(transactionRepo, txManager, svcLogger)
	reimbursementService := service.NewReimbursementService(reimbursementRepo, notificationRepo, txManager, svcLogger)
	notificationService := service.NewNotificationService(notificationRepo, svcLogger)
	settingsService := service.NewSettingsService(categoryRepo, txManager, svcLogger)
	activityService := service.NewActivityService(activityRepo, svcLogger)
	reportService := report.NewService(transactionRepo, reimbursementRepo, logger)

	server := httpadapter.NewServer(httpadapter.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadSize:  cfg.Storage.MaxUploadSize,
	}, httpadapter.Services{
		Auth:          authService,
		Users:         userService,
		Transactions:  transactionService,
		Reimburse:     reimbursementService,
		Notifications: notificationService,
		Settings:      settingsService,
		Activity:      activityService,
		Reports:       reportService,
		Uploads:       fileStore,
		Tokens:        tokens,
		UserLookup:    userRepo,
	}, service.NewZapLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Error("Server exited with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Shutdown complete")
}

func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}
