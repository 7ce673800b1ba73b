package orders

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db"
	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/enums"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewFromConn(conn))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, conn
}

func TestConvertCartCopiesLinesAndClearsCart(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user := mustCreateTestUser(t, conn)
	cheap := mustCreateTestProduct(t, conn, "10.00")
	pricey := mustCreateTestProduct(t, conn, "99.99")
	cart := mustCreateTestCart(t, conn, map[uuid.UUID]int{cheap.ID: 2, pricey.ID: 1})

	order, err := svc.ConvertCart(ctx, user.ID, cart.ID)
	if err != nil {
		t.Fatalf("convert cart: %v", err)
	}

	if order.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment status, got %s", order.PaymentStatus)
	}
	if len(order.Items) != 2 {
		t.Fatalf("expected 2 order lines, got %d", len(order.Items))
	}
	for _, line := range order.Items {
		switch line.ProductID {
		case cheap.ID:
			if line.Quantity != 2 || !line.UnitPrice.Equal(cheap.UnitPrice) {
				t.Fatalf("cheap line not copied faithfully: %+v", line)
			}
		case pricey.ID:
			if line.Quantity != 1 || !line.UnitPrice.Equal(pricey.UnitPrice) {
				t.Fatalf("pricey line not copied faithfully: %+v", line)
			}
		default:
			t.Fatalf("unexpected product in order: %s", line.ProductID)
		}
	}

	var carts int64
	if err := conn.Model(&models.Cart{}).Where("id = ?", cart.ID).Count(&carts).Error; err != nil {
		t.Fatalf("count carts: %v", err)
	}
	if carts != 0 {
		t.Fatal("converted cart still exists")
	}
	var cartLines int64
	if err := conn.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&cartLines).Error; err != nil {
		t.Fatalf("count cart lines: %v", err)
	}
	if cartLines != 0 {
		t.Fatal("converted cart lines still exist")
	}
}

func TestConvertCartCreatesCustomerOnFirstOrder(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user := mustCreateTestUser(t, conn)
	product := mustCreateTestProduct(t, conn, "10.00")

	var customers int64
	if err := conn.Model(&models.Customer{}).Count(&customers).Error; err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if customers != 0 {
		t.Fatalf("expected no customers before first order, got %d", customers)
	}

	first := mustCreateTestCart(t, conn, map[uuid.UUID]int{product.ID: 1})
	if _, err := svc.ConvertCart(ctx, user.ID, first.ID); err != nil {
		t.Fatalf("first conversion: %v", err)
	}

	second := mustCreateTestCart(t, conn, map[uuid.UUID]int{product.ID: 3})
	if _, err := svc.ConvertCart(ctx, user.ID, second.ID); err != nil {
		t.Fatalf("second conversion: %v", err)
	}

	if err := conn.Model(&models.Customer{}).Where("user_id = ?", user.ID).Count(&customers).Error; err != nil {
		t.Fatalf("count customers: %v", err)
	}
	if customers != 1 {
		t.Fatalf("expected a single reused customer profile, got %d", customers)
	}
}

func TestConvertCartRejectsEmptyAndMissingCarts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user := mustCreateTestUser(t, conn)

	empty := mustCreateTestCart(t, conn, nil)
	_, err := svc.ConvertCart(ctx, user.ID, empty.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for empty cart, got %v", err)
	}

	_, err = svc.ConvertCart(ctx, user.ID, uuid.New())
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for missing cart, got %v", err)
	}
}

func TestConvertCartRollsBackOnMidTransactionFailure(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user := mustCreateTestUser(t, conn)
	product := mustCreateTestProduct(t, conn, "10.00")
	cart := mustCreateTestCart(t, conn, map[uuid.UUID]int{product.ID: 2})

	// force the order-line insert to fail after the order row is written
	if err := conn.Migrator().DropTable(&models.OrderItem{}); err != nil {
		t.Fatalf("drop order_items: %v", err)
	}

	if _, err := svc.ConvertCart(ctx, user.ID, cart.ID); err == nil {
		t.Fatal("expected conversion to fail")
	}

	var orders int64
	if err := conn.Model(&models.Order{}).Count(&orders).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if orders != 0 {
		t.Fatalf("expected rollback to leave no orders, got %d", orders)
	}

	var cartLines int64
	if err := conn.Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&cartLines).Error; err != nil {
		t.Fatalf("count cart lines: %v", err)
	}
	if cartLines != 1 {
		t.Fatalf("expected cart to survive failed conversion, got %d lines", cartLines)
	}
}

func TestOrderSnapshotSurvivesPriceChange(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	user := mustCreateTestUser(t, conn)
	product := mustCreateTestProduct(t, conn, "20.00")
	cart := mustCreateTestCart(t, conn, map[uuid.UUID]int{product.ID: 1})

	order, err := svc.ConvertCart(ctx, user.ID, cart.ID)
	if err != nil {
		t.Fatalf("convert cart: %v", err)
	}

	product.UnitPrice = decimal.RequireFromString("35.00")
	if err := conn.Save(product).Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}

	reloaded, err := svc.GetOrder(ctx, Caller{UserID: user.ID}, order.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if !reloaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("snapshot price drifted to %s", reloaded.Items[0].UnitPrice)
	}
}

func TestOrderVisibilityScoping(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	owner := mustCreateTestUser(t, conn)
	stranger := mustCreateTestUser(t, conn)
	product := mustCreateTestProduct(t, conn, "10.00")
	cart := mustCreateTestCart(t, conn, map[uuid.UUID]int{product.ID: 1})

	order, err := svc.ConvertCart(ctx, owner.ID, cart.ID)
	if err != nil {
		t.Fatalf("convert cart: %v", err)
	}

	if _, err := svc.GetOrder(ctx, Caller{UserID: owner.ID}, order.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}

	_, err = svc.GetOrder(ctx, Caller{UserID: stranger.ID}, order.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND for stranger, got %v", err)
	}

	if _, err := svc.GetOrder(ctx, Caller{UserID: stranger.ID, IsStaff: true}, order.ID); err != nil {
		t.Fatalf("staff read: %v", err)
	}

	ownerList, err := svc.ListOrders(ctx, Caller{UserID: owner.ID}, pagination.Params{})
	if err != nil {
		t.Fatalf("owner list: %v", err)
	}
	if len(ownerList.Items) != 1 {
		t.Fatalf("expected 1 order for owner, got %d", len(ownerList.Items))
	}

	strangerList, err := svc.ListOrders(ctx, Caller{UserID: stranger.ID}, pagination.Params{})
	if err != nil {
		t.Fatalf("stranger list: %v", err)
	}
	if len(strangerList.Items) != 0 {
		t.Fatalf("expected no orders for stranger, got %d", len(strangerList.Items))
	}

	staffList, err := svc.ListOrders(ctx, Caller{UserID: stranger.ID, IsStaff: true}, pagination.Params{})
	if err != nil {
		t.Fatalf("staff list: %v", err)
	}
	if len(staffList.Items) != 1 {
		t.Fatalf("expected staff to see all orders, got %d", len(staffList.Items))
	}
}
