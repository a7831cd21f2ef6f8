package database

import (
	"errors"
	"fmt"
	"os"

	"github.com/i4rcu/magazam-inventory-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Connect() {
	if err := godotenv.Load(); err != nil {
		zap.S().Warnw("no .env file loaded", "error", err)
	}

	host := os.Getenv("DB_HOST")
	if host == "" {
		host = "db"
	}
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=5432 sslmode=disable",
		host, os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		zap.S().Fatalw("could not connect to database", "error", err)
	}
}

func AutoMigrate() {
	if err := DB.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.StockItem{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
		&models.IdempotencyKey{},
	); err != nil {
		zap.S().Fatalw("automigrate failed", "error", err)
	}
}

// FromCtx returns the *gorm.DB bound to the request: the per-request
// transaction when middlewares.Tx opened one, otherwise the shared DB.
func FromCtx(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals("tx"); v != nil {
		if tx, ok := v.(*gorm.DB); ok && tx != nil {
			return tx, nil
		}
	}
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	return DB, nil
}
