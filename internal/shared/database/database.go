package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cineplex/internal/shared/config"
	"cineplex/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// DB holds database connections
type DB struct {
	PostgreSQL *gorm.DB
	Redis      *redis.Client

	log *logger.Logger
}

// InitDB connects to PostgreSQL, runs migrations and connects to Redis. A Redis
// failure is not fatal: Redis is left nil and callers fall back to the
// in-process cache.
func InitDB(cfg *config.Config, log *logger.Logger) (*DB, error) {
	log = log.WithComponent("database")

	pg, err := initPostgreSQL(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	if err := Migrate(pg); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	db := &DB{PostgreSQL: pg, log: log}

	rdb, err := initRedis(cfg)
	if err != nil {
		log.ErrorWithContext(context.Background(), "Redis unavailable, using in-memory cache", err, map[string]interface{}{
			"addr": cfg.Redis.Addr,
		})
		return db, nil
	}
	log.Info("Redis connected", "addr", cfg.Redis.Addr)
	db.Redis = rdb

	return db, nil
}

func initPostgreSQL(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: newGormLogger(log, cfg.IsDevelopment()),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
		PrepareStmt:                              true,
		TranslateError:                           true,
		DisableForeignKeyConstraintWhenMigrating: true,
	}

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("PostgreSQL connected", "database", cfg.Database.Name)
	return db, nil
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,

		PoolSize:     10,
		MinIdleConns: 5,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return rdb, nil
}

// Close closes all database connections
func (db *DB) Close() error {
	var errs []error

	if db.PostgreSQL != nil {
		if sqlDB, err := db.PostgreSQL.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("failed to close PostgreSQL: %w", err))
			}
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return err
	}

	if db.log != nil {
		db.log.Info("All database connections closed")
	}
	return nil
}

// HealthCheck pings PostgreSQL and, when connected, Redis
func (db *DB) HealthCheck(ctx context.Context) error {
	if db.PostgreSQL != nil {
		sqlDB, err := db.PostgreSQL.DB()
		if err != nil {
			return fmt.Errorf("PostgreSQL health check failed: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("PostgreSQL ping failed: %w", err)
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping failed: %w", err)
		}
	}

	return nil
}

func (db *DB) GetRedisClient() *redis.Client {
	return db.Redis
}

func (db *DB) GetPostgreSQL() *gorm.DB {
	return db.PostgreSQL
}
