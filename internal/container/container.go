package container

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/FACorreiaa/go-account-api/app/db"
	"github.com/FACorreiaa/go-account-api/config"
	"github.com/FACorreiaa/go-account-api/internal/api/account"
)

// Container holds all application dependencies
type Container struct {
	Config                 *config.Config
	Logger                 *slog.Logger
	Pool                   *pgxpool.Pool
	AccountHandler         *account.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// NewContainer initializes and returns a new dependency container
func NewContainer(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	accountRepo := account.NewPostgresAccountRepo(pool, logger)
	accountService := account.NewAccountService(accountRepo, cfg, logger)
	accountHandler := account.NewHandlerImpl(accountService, logger)

	return &Container{
		Config:                 cfg,
		Logger:                 logger,
		Pool:                   pool,
		AccountHandler:         accountHandler,
		AuthenticateMiddleware: account.Authenticate(logger, cfg.JWT, accountRepo),
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
