// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/trentd187/tournament-finder/internal/models"
)

// NewSQLiteDB opens a private in-memory SQLite database with the schema auto-migrated.
// Each call gets its own named database, so tests never see each other's rows.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	// A named shared-cache database survives across pooled connections;
	// a plain ":memory:" would give every new connection an empty database.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&models.Tournament{}, &models.NewsletterSubscription{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}
