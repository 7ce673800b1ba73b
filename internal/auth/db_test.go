package auth

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// each test gets its own named in-memory database so pooled
	// connections all see the same tables
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = conn.AutoMigrate(
		&models.User{},
		&models.UserPermission{},
		&models.Customer{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}
