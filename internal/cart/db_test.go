package cart

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	err = conn.AutoMigrate(
		&models.Collection{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, price string) *models.Product {
	t.Helper()
	collection := &models.Collection{Title: "Cart Test"}
	if err := tx.Create(collection).Error; err != nil {
		t.Fatalf("create collection: %v", err)
	}
	product := &models.Product{
		Title:        "Cart Test Product",
		Slug:         fmt.Sprintf("slug-%s", uuid.NewString()),
		UnitPrice:    decimal.RequireFromString(price),
		Inventory:    100,
		CollectionID: collection.ID,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
