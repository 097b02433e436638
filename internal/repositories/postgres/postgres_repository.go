package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/BMS-2026/crm-service/internal/cache"
	"github.com/BMS-2026/crm-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface.
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	customer repositories.CustomerRepository
	user     repositories.UserRepository
	callLog  repositories.CallLogRepository
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	DB          *gorm.DB
	RedisClient *redis.Client
}

// NewPostgreSQLRepository creates the repository manager with all
// sub-repositories sharing one cache manager.
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient)
	return newWithCache(config.DB, config.RedisClient, cacheManager)
}

func newWithCache(db *gorm.DB, redisClient *redis.Client, cacheManager *cache.CacheManager) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:           db,
		redisClient:  redisClient,
		cacheManager: cacheManager,
		customer:     NewCustomerPostgreSQL(db, cacheManager),
		user:         NewUserPostgreSQL(db, cacheManager),
		callLog:      NewCallLogPostgreSQL(db, cacheManager),
	}
}

func (r *PostgreSQLRepository) Customer() repositories.CustomerRepository {
	return r.customer
}

func (r *PostgreSQLRepository) User() repositories.UserRepository {
	return r.user
}

func (r *PostgreSQLRepository) CallLog() repositories.CallLogRepository {
	return r.callLog
}

// WithTransaction runs fn with a Repository bound to a single transaction.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newWithCache(tx, r.redisClient, r.cacheManager))
	})
}

func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
