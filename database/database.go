// database.go - Handles database connection and setup

package database // Declares the package name

import ( // Import required packages
	"fmt"     // Error wrapping
	"strings" // DSN inspection
	"time"    // Slow query threshold

	"plasticity-backend/models" // Persisted models

	"github.com/sirupsen/logrus"     // Structured logging
	"gorm.io/driver/postgres"        // Postgres driver for GORM (pgx)
	"gorm.io/driver/sqlite"          // SQLite driver for GORM
	"gorm.io/gorm"                   // GORM ORM
	gormlogger "gorm.io/gorm/logger" // GORM log adapter
)

// Open connects to the database named by dsn and runs migrations.
// postgres:// and postgresql:// URLs use the Postgres driver, anything else
// is treated as a SQLite file path.
func Open(dsn string, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(dialector(dsn), &gorm.Config{
		TranslateError: true, // Map unique violations to gorm.ErrDuplicatedKey
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Create or update tables for every persisted model
	if err := db.AutoMigrate(&models.User{}, &models.UploadedFile{}, &models.Session{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	if !strings.Contains(dsn, "?") { // Cascade history deletes in SQLite
		dsn += "?_foreign_keys=on"
	}
	return sqlite.Open(dsn)
}
