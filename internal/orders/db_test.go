package orders

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
		&models.User{},
		&models.Customer{},
		&models.Collection{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func mustCreateTestUser(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("orders_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Orders",
		LastName:     "Tester",
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, price string) *models.Product {
	t.Helper()
	collection := &models.Collection{Title: "Orders Test"}
	if err := tx.Create(collection).Error; err != nil {
		t.Fatalf("create collection: %v", err)
	}
	product := &models.Product{
		Title:        "Orders Test Product",
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

func mustCreateTestCart(t *testing.T, tx *gorm.DB, lines map[uuid.UUID]int) *models.Cart {
	t.Helper()
	cart := &models.Cart{}
	if err := tx.Create(cart).Error; err != nil {
		t.Fatalf("create cart: %v", err)
	}
	for productID, quantity := range lines {
		item := &models.CartItem{CartID: cart.ID, ProductID: productID, Quantity: quantity}
		if err := tx.Create(item).Error; err != nil {
			t.Fatalf("create cart item: %v", err)
		}
	}
	return cart
}
