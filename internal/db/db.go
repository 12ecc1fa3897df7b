package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/workmatch/workmatch/internal/config"
)

// NewDB initializes the database connection using DSN from config.
// TranslateError is on so duplicate-key violations surface as
// gorm.ErrDuplicatedKey regardless of driver; the match resolver depends
// on that to absorb insert races.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DB.DSN), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate keeps the schema in sync with the models.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&User{},
		&JobseekerProfile{},
		&Company{},
		&Swipe{},
		&Match{},
		&MatchJob{},
		&JobPosting{},
		&CompanyDraft{},
		&CompanyInvite{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
