package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/project-management/internal"
	"github.com/frahmantamala/project-management/internal/auth"
	authPostgres "github.com/frahmantamala/project-management/internal/auth/postgres"
	"github.com/frahmantamala/project-management/internal/bootstrap"
	"github.com/frahmantamala/project-management/internal/comment"
	commentPostgres "github.com/frahmantamala/project-management/internal/comment/postgres"
	"github.com/frahmantamala/project-management/internal/project"
	projectPostgres "github.com/frahmantamala/project-management/internal/project/postgres"
	"github.com/frahmantamala/project-management/internal/projection"
	"github.com/frahmantamala/project-management/internal/task"
	taskPostgres "github.com/frahmantamala/project-management/internal/task/postgres"
	"github.com/frahmantamala/project-management/internal/transport/rest"
	"github.com/frahmantamala/project-management/internal/transport/swagger"
	"github.com/frahmantamala/project-management/internal/user"
	userPostgres "github.com/frahmantamala/project-management/internal/user/postgres"
	"github.com/frahmantamala/project-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	Gorm   *gorm.DB
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}
	lg := deps.Logger

	hasher := auth.NewBcryptHasher(deps.Config.Security.BCryptCost)
	userRepo := userPostgres.NewUserRepository(deps.Gorm)

	seeder := bootstrap.NewSeeder(userRepo, hasher, deps.Config.Bootstrap, lg)
	if _, err := seeder.EnsureAdmin(context.Background()); err != nil {
		lg.Error("admin bootstrap failed", "error", err)
		os.Exit(1)
	}

	if _, err := swagger.LoadSpec(context.Background(), deps.Config.Server.OpenAPIPath); err != nil {
		lg.Warn("openapi document failed validation", "path", deps.Config.Server.OpenAPIPath, "error", err)
	}

	setupRoutes(deps, userRepo, hasher)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	lg.Info("Starting HTTP server", "address", addr, "driver", deps.Config.Database.Driver)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		lg.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			lg.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			lg.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	lg.Info("Server stopped")
}

func setupRoutes(deps *Dependencies, userRepo *userPostgres.UserRepository, hasher *auth.BcryptHasher) {
	cfg := deps.Config
	lg := deps.Logger
	reader := projection.NewReader(deps.DB)

	policy := auth.NewABACPolicy(nil)
	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), tokens, hasher, lg.With("service", "auth"))

	userService := user.NewService(userRepo, hasher, lg.With("service", "user"))
	projectService := project.NewService(projectPostgres.NewProjectRepository(deps.Gorm), reader, lg.With("service", "project"))
	taskService := task.NewService(taskPostgres.NewTaskRepository(deps.Gorm), reader, lg.With("service", "task"))

	projectComments := comment.NewService(comment.ScopeProject,
		commentPostgres.NewCommentRepository(deps.Gorm, comment.ScopeProject), reader, lg)
	taskComments := comment.NewService(comment.ScopeTask,
		commentPostgres.NewCommentRepository(deps.Gorm, comment.ScopeTask), reader, lg)

	handlers := rest.Handlers{
		Auth:           auth.NewHandler(authService),
		User:           user.NewHandler(userService, policy),
		Project:        project.NewHandler(projectService),
		Task:           task.NewHandler(taskService),
		ProjectComment: comment.NewHandler(projectComments, policy),
		TaskComment:    comment.NewHandler(taskComments, policy),
		RBAC:           auth.NewRBACAuthorization(policy, lg),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, handlers, rest.RouterOptions{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		OpenAPIPath:    cfg.Server.OpenAPIPath,
	}, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logCfg := config.Observability.Logging
	logger.Init(config.Env, logger.Options{
		Level:      logCfg.Level,
		Format:     logCfg.Format,
		File:       logCfg.File,
		MaxSizeMB:  logCfg.MaxSizeMB,
		MaxBackups: logCfg.MaxBackups,
		MaxAgeDays: logCfg.MaxAgeDays,
	})

	gdb, db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.LoggerWrapper(),
		Gorm:   gdb,
		DB:     db,
		Router: chi.NewRouter(),
	}, nil
}

// gormDialector picks the gorm driver and the sqlx bind driver name for cfg.
func gormDialector(cfg internal.DatabaseConfig) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.GetDSN()), "pgx", nil
	case "sqlite":
		return sqlite.Open(cfg.GetDSN()), "sqlite3", nil
	case "mysql":
		return mysql.Open(cfg.GetDSN()), "mysql", nil
	}
	return nil, "", fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// initDB opens the gorm handle and an sqlx handle sharing its pool.
func initDB(cfg internal.DatabaseConfig) (*gorm.DB, *sqlx.DB, error) {
	dialector, driverName, err := gormDialector(cfg)
	if err != nil {
		return nil, nil, err
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return gdb, sqlx.NewDb(sqlDB, driverName), nil
}
