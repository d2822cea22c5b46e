package postgres

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/gravadigital/wisha-api/internal/config"
	"github.com/gravadigital/wisha-api/internal/logger"
)

// Container implements RepositoryContainer interface
type Container struct {
	db           *gorm.DB
	log          *log.Logger
	identityRepo IdentityRepository
	userRepo     UserRepository
	eventRepo    EventRepository
	messageRepo  MessageRepository
	activityRepo ActivityRepository
	itemRepo     ItemRepository
}

// NewContainer connects, migrates and returns a container with all repositories initialized
func NewContainer(cfg *config.Config) (*Container, error) {
	log := logger.Repository("postgres_container")
	log.Info("Initializing PostgreSQL repository container...")

	db, err := Connect(cfg)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		log.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	container := NewContainerWithDB(db)

	if err := container.Health(context.Background()); err != nil {
		log.Error("Container health check failed", "error", err)
		return nil, fmt.Errorf("container health check failed: %w", err)
	}

	log.Info("PostgreSQL repository container initialized successfully")
	return container, nil
}

// NewContainerWithDB creates a container with an existing database connection
func NewContainerWithDB(db *gorm.DB) *Container {
	return newContainer(db, logger.Repository("postgres_container"))
}

func newContainer(db *gorm.DB, l *log.Logger) *Container {
	return &Container{
		db:           db,
		log:          l,
		identityRepo: NewPostgresIdentityRepository(db),
		userRepo:     NewPostgresUserRepository(db),
		eventRepo:    NewPostgresEventRepository(db),
		messageRepo:  NewPostgresMessageRepository(db),
		activityRepo: NewPostgresActivityRepository(db),
		itemRepo:     NewPostgresItemRepository(db),
	}
}

func (c *Container) Identities() IdentityRepository { return c.identityRepo }
func (c *Container) Users() UserRepository           { return c.userRepo }
func (c *Container) Events() EventRepository         { return c.eventRepo }
func (c *Container) Messages() MessageRepository     { return c.messageRepo }
func (c *Container) Activities() ActivityRepository  { return c.activityRepo }
func (c *Container) Items() ItemRepository           { return c.itemRepo }

// Transaction runs fn against repositories bound to a single database
// transaction. Returning an error from fn rolls everything back.
func (c *Container) Transaction(ctx context.Context, fn func(tx RepositoryContainer) error) error {
	c.log.Debug("Database transaction started")

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newContainer(tx, logger.Repository("postgres_transaction")))
	})
	if err != nil {
		c.log.Debug("Database transaction rolled back", "error", err)
		return err
	}

	c.log.Debug("Database transaction committed successfully")
	return nil
}

// Health performs a health check on all repositories and database connection
// within the deadline of ctx
func (c *Container) Health(ctx context.Context) error {
	c.log.Debug("Performing container health check...")

	if err := HealthCheckContext(ctx, c.db); err != nil {
		c.log.Error("Database health check failed", "error", err)
		return fmt.Errorf("database health check failed: %w", err)
	}

	metrics := GetDatabaseMetrics(c.db)
	c.log.Debug("Database connection metrics",
		"open_connections", metrics.OpenConnections,
		"in_use_connections", metrics.InUseConnections,
		"idle_connections", metrics.IdleConnections)

	for _, table := range []string{"auth_identities", "users", "events", "messages", "activities", "items"} {
		var count int64
		if err := c.db.WithContext(ctx).Table(table).Limit(1).Count(&count).Error; err != nil {
			c.log.Error("Repository health check failed", "table", table, "error", err)
			return fmt.Errorf("repository %s health check failed: %w", table, err)
		}
		c.log.Debug("Repository health check passed", "table", table)
	}

	c.log.Debug("Container health check completed successfully")
	return nil
}

// Close gracefully shuts down the container and closes database connections
func (c *Container) Close() error {
	c.log.Info("Closing PostgreSQL repository container...")

	if c.db == nil {
		c.log.Warn("Database connection is nil, nothing to close")
		return nil
	}

	metrics := GetDatabaseMetrics(c.db)
	c.log.Debug("Final database metrics",
		"open_connections", metrics.OpenConnections,
		"in_use_connections", metrics.InUseConnections,
		"idle_connections", metrics.IdleConnections)

	if err := Close(c.db); err != nil {
		c.log.Error("Failed to close database connection", "error", err)
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	c.db = nil

	c.log.Info("PostgreSQL repository container closed successfully")
	return nil
}

// GetInfo returns information about the container and its repositories
func (c *Container) GetInfo() map[string]interface{} {
	info := map[string]interface{}{
		"type":         "postgres",
		"repositories": []string{"identities", "users", "events", "messages", "activities", "items"},
	}

	if c.db != nil {
		info["database"] = GetConnectionInfo(c.db)
	} else {
		info["database"] = map[string]interface{}{
			"connected": false,
			"error":     "no database connection",
		}
	}

	return info
}

// GetDB returns the underlying database connection
func (c *Container) GetDB() *gorm.DB {
	return c.db
}
