package initializers

import (
	"context"
	"fmt"
	"log"

	"github.com/Kariqs/tableside/models"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func ConnectToDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Connected to database.")
	return db, nil
}

func SyncDatabase(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.CheckoutAttempt{}); err != nil {
		return fmt.Errorf("failed to sync database: %w", err)
	}
	log.Println("Database synced successfully.")
	return nil
}

func ConnectToRedis(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	log.Println("Redis ping succeeded.")
	return client, nil
}
