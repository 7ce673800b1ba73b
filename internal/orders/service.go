package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/pkg/db"
	"github.com/storefront/backend/pkg/db/models"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"github.com/storefront/backend/pkg/pagination"
)

// Service exposes order workflow operations.
type Service interface {
	ConvertCart(ctx context.Context, userID, cartID uuid.UUID) (*OrderDTO, error)
	GetOrder(ctx context.Context, caller Caller, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, caller Caller, params pagination.Params) (*OrderListResult, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderListResult, error)
}

// Caller identifies the requesting user for ownership scoping.
type Caller struct {
	UserID  uuid.UUID
	IsStaff bool
}

// service implements the order service.
type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs an order service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// ConvertCart turns a cart into an order in a single transaction: the cart
// is loaded and checked, a customer profile is found or created for the
// user, each cart line becomes an order line with the product's current
// price snapshotted, and the cart is deleted. Any failure rolls back the
// whole unit, leaving the cart untouched.
func (s *service) ConvertCart(ctx context.Context, userID, cartID uuid.UUID) (*OrderDTO, error) {
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart_id is required").
			WithDetails(map[string]string{"cart_id": "is required"})
	}

	var orderID uuid.UUID
	if err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindCartWithItems(ctx, cartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
		}
		if len(cart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty").
				WithDetails(map[string]string{"cart_id": "cart has no items"})
		}

		customer, err := txRepo.GetOrCreateCustomer(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: get or create customer")
		}

		order, err := txRepo.CreateOrder(ctx, &models.Order{CustomerID: customer.ID})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order")
		}
		orderID = order.ID

		lines := make([]models.OrderItem, 0, len(cart.Items))
		for _, item := range cart.Items {
			if item.Product == nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, nil,
					fmt.Sprintf("cart line %s has no product row", item.ID))
			}
			lines = append(lines, models.OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				UnitPrice: item.Product.UnitPrice,
			})
		}
		if err := txRepo.CreateOrderItems(ctx, lines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert order items")
		}

		if err := txRepo.DeleteCart(ctx, cartID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete converted cart")
		}
		return nil
	}); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "convert cart to order")
	}

	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load created order")
	}
	return NewOrderDTO(order), nil
}

// GetOrder loads one order, restricted to the owner unless the caller is
// staff.
func (s *service) GetOrder(ctx context.Context, caller Caller, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
	}

	if !caller.IsStaff {
		customer, err := s.repo.FindCustomerByUserID(ctx, caller.UserID)
		if err != nil || customer.ID != order.CustomerID {
			// owner mismatch reads as absence, not denial
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
	}
	return NewOrderDTO(order), nil
}

// ListOrders returns the caller's orders, or every order for staff.
func (s *service) ListOrders(ctx context.Context, caller Caller, params pagination.Params) (*OrderListResult, error) {
	var scope *uuid.UUID
	if !caller.IsStaff {
		customer, err := s.repo.FindCustomerByUserID(ctx, caller.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// no profile yet means no orders yet
				return &OrderListResult{Items: []OrderDTO{}, Meta: pagination.NewMeta(params, 0)}, nil
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load customer")
		}
		scope = &customer.ID
	}
	return s.list(ctx, scope, params)
}

// ListForCustomer returns the order history of one customer.
func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	return s.list(ctx, &customerID, params)
}

func (s *service) list(ctx context.Context, customerID *uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	rows, total, err := s.repo.ListOrders(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
	}

	result := &OrderListResult{
		Items: make([]OrderDTO, 0, len(rows)),
		Meta:  pagination.NewMeta(params, total),
	}
	for i := range rows {
		result.Items = append(result.Items, *NewOrderDTO(&rows[i]))
	}
	return result, nil
}
