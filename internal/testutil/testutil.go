package testutil

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ecoscan/pkg/database"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// Every call gets its own database, so tests never see each other's rows.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{
		Driver: database.DriverSQLite,
		DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
