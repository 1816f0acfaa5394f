package database

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"

	"handyghana/internal/domain"
)

func Connect(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		logrus.Info("Connecting to PostgreSQL...")
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}

	logrus.Infof("Using SQLite for local development: %s", dsn)

	return gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		&gorm.Config{},
	)
}

// Migrate applies the schema for every persisted entity.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Provider{},
		&domain.Service{},
		&domain.Booking{},
		&domain.Payment{},
		&domain.Subscription{},
		&domain.Review{},
		&domain.Wallet{},
		&domain.WalletEntry{},
		&domain.Payout{},
		&domain.Conversation{},
		&domain.ChatMessage{},
		&domain.Notification{},
		&domain.Settings{},
	)
}
