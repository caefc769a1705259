package config

import (
	"context"
	"time"

	"github.com/anonto42/instaclone/backend/internal/logger"
	"github.com/anonto42/instaclone/backend/internal/models"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB holds the database connections. Mongo and Redis are nil unless
// configured.
type DB struct {
	Postgres *gorm.DB
	Mongo    *mongo.Client
	Redis    *redis.Client
}

// InitDB opens every connection the configuration asks for.
func InitDB(ctx context.Context, cfg *Config) (*DB, error) {
	db := &DB{}

	pg, err := initPostgres(cfg.PostgresConnStr, cfg.IsProduction())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to PostgreSQL")
	}
	db.Postgres = pg

	if cfg.UseMongoPosts() {
		if cfg.MongoURI == "" {
			db.CloseDB()
			return nil, errors.New("MONGO_URI must be set when POST_STORE=mongo")
		}
		db.Mongo, err = initMongo(ctx, cfg.MongoURI)
		if err != nil {
			db.CloseDB()
			return nil, errors.Wrap(err, "failed to connect to MongoDB")
		}
	}

	if cfg.RedisAddr != "" {
		db.Redis, err = initRedis(ctx, cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			db.CloseDB()
			return nil, errors.Wrap(err, "failed to connect to Redis")
		}
	}
	return db, nil
}

// Migrate creates or updates the relational schema.
func (db *DB) Migrate() error {
	if err := db.Postgres.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "auto migrate")
	}
	logger.Log.Info("PostgreSQL auto-migrations completed")
	return nil
}

func initPostgres(connStr string, production bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if production {
		level = gormlogger.Error
	}
	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}

	logger.Log.Info("Successfully connected to PostgreSQL")
	return db, nil
}

func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logger.Log.Info("Successfully connected to MongoDB")
	return client, nil
}

func initRedis(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Log.Info("Successfully connected to Redis", zap.String("addr", addr))
	return client, nil
}

// PingPostgres, PingMongo and PingRedis back the health endpoint.
func (db *DB) PingPostgres(ctx context.Context) error {
	sqlDB, err := db.Postgres.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *DB) PingMongo(ctx context.Context) error {
	return db.Mongo.Ping(ctx, nil)
}

func (db *DB) PingRedis(ctx context.Context) error {
	return db.Redis.Ping(ctx).Err()
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.Postgres != nil {
		if sqlDB, err := db.Postgres.DB(); err != nil {
			logger.Log.Error("Error getting SQL DB from GORM", zap.Error(err))
		} else if err := sqlDB.Close(); err != nil {
			logger.Log.Error("Error closing PostgreSQL connection", zap.Error(err))
		} else {
			logger.Log.Info("PostgreSQL connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			logger.Log.Error("Error closing MongoDB connection", zap.Error(err))
		} else {
			logger.Log.Info("MongoDB connection closed")
		}
	}

	if db.Redis != nil {
		if err := db.Redis.Close(); err != nil {
			logger.Log.Error("Error closing Redis connection", zap.Error(err))
		}
	}
}
