package catalog

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
)

func mustCreateTestCollection(t *testing.T, tx *gorm.DB, title string) *models.Collection {
	t.Helper()
	collection := &models.Collection{Title: title}
	if err := tx.Create(collection).Error; err != nil {
		t.Fatalf("create collection: %v", err)
	}
	return collection
}

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, collectionID uuid.UUID, title string, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		Title:        title,
		Slug:         fmt.Sprintf("slug-%s", uuid.NewString()),
		UnitPrice:    decimal.RequireFromString(price),
		Inventory:    10,
		CollectionID: collectionID,
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func mustCreateTestCustomer(t *testing.T, tx *gorm.DB) *models.Customer {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("catalog_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Catalog",
		LastName:     "Tester",
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	customer := &models.Customer{UserID: user.ID}
	if err := tx.Create(customer).Error; err != nil {
		t.Fatalf("create customer: %v", err)
	}
	return customer
}
