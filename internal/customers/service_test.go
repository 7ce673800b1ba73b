package customers

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/enums"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/pagination"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Customer{}, &models.Address{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func mustCreateTestUser(t *testing.T, tx *gorm.DB) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("customers_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Cust",
		LastName:     "Tester",
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestGetMeCreatesProfileOnFirstAccess(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user := mustCreateTestUser(t, conn)

	profile, err := svc.GetMe(ctx, user.ID)
	if err != nil {
		t.Fatalf("get me: %v", err)
	}
	if profile.Membership != enums.MembershipBronze {
		t.Fatalf("expected bronze default, got %s", profile.Membership)
	}
	if profile.Email != user.Email {
		t.Fatalf("expected user email on profile, got %q", profile.Email)
	}

	again, err := svc.GetMe(ctx, user.ID)
	if err != nil {
		t.Fatalf("get me again: %v", err)
	}
	if again.ID != profile.ID {
		t.Fatal("second access created a new profile")
	}
}

func TestUpdateMeAppliesFields(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user := mustCreateTestUser(t, conn)
	phone := "+1-555-0100"
	birth := time.Date(1990, time.June, 15, 0, 0, 0, 0, time.UTC)

	profile, err := svc.UpdateMe(ctx, user.ID, UpdateProfileInput{Phone: &phone, BirthDate: &birth})
	if err != nil {
		t.Fatalf("update me: %v", err)
	}
	if profile.Phone != phone {
		t.Fatalf("expected phone %q, got %q", phone, profile.Phone)
	}
	if profile.BirthDate == nil || !profile.BirthDate.Equal(birth) {
		t.Fatalf("expected birth date set, got %v", profile.BirthDate)
	}

	future := time.Now().Add(24 * time.Hour)
	_, err = svc.UpdateMe(ctx, user.ID, UpdateProfileInput{BirthDate: &future})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for future birth date, got %v", err)
	}
}

func TestSetMembership(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user := mustCreateTestUser(t, conn)
	profile, err := svc.GetMe(ctx, user.ID)
	if err != nil {
		t.Fatalf("get me: %v", err)
	}

	upgraded, err := svc.SetMembership(ctx, profile.ID, enums.MembershipGold)
	if err != nil {
		t.Fatalf("set membership: %v", err)
	}
	if upgraded.Membership != enums.MembershipGold {
		t.Fatalf("expected gold, got %s", upgraded.Membership)
	}

	_, err = svc.SetMembership(ctx, profile.ID, enums.Membership("platinum"))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for unknown tier, got %v", err)
	}
}

func TestAddressesRoundTrip(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user := mustCreateTestUser(t, conn)

	created, err := svc.AddAddress(ctx, user.ID, AddressInput{Street: "1 Main St", City: "Springfield", Zip: "12345"})
	if err != nil {
		t.Fatalf("add address: %v", err)
	}

	addresses, err := svc.ListAddresses(ctx, user.ID)
	if err != nil {
		t.Fatalf("list addresses: %v", err)
	}
	if len(addresses) != 1 || addresses[0].ID != created.ID {
		t.Fatalf("expected the created address back, got %+v", addresses)
	}
}

func TestListCustomersPaginates(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		user := mustCreateTestUser(t, conn)
		if _, err := svc.GetMe(ctx, user.ID); err != nil {
			t.Fatalf("create profile %d: %v", i, err)
		}
	}

	page, err := svc.ListCustomers(ctx, pagination.Params{Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("list customers: %v", err)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page.Items))
	}
	if page.Meta.Total != 3 || page.Meta.TotalPages != 2 {
		t.Fatalf("unexpected meta: %+v", page.Meta)
	}
}
