package controllers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/storefront/backend/api/middleware"
	ordersvc "github.com/storefront/backend/internal/orders"
	pkgauth "github.com/storefront/backend/pkg/auth"
	"github.com/storefront/backend/pkg/enums"
	"github.com/storefront/backend/pkg/pagination"
)

type stubOrderService struct {
	lastUserID uuid.UUID
	lastCartID uuid.UUID
	lastCaller ordersvc.Caller
	convertRes *ordersvc.OrderDTO
	convertErr error
}

func (s *stubOrderService) ConvertCart(ctx context.Context, userID, cartID uuid.UUID) (*ordersvc.OrderDTO, error) {
	s.lastUserID = userID
	s.lastCartID = cartID
	return s.convertRes, s.convertErr
}

func (s *stubOrderService) GetOrder(ctx context.Context, caller ordersvc.Caller, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	s.lastCaller = caller
	return s.convertRes, s.convertErr
}

func (s *stubOrderService) ListOrders(ctx context.Context, caller ordersvc.Caller, params pagination.Params) (*ordersvc.OrderListResult, error) {
	s.lastCaller = caller
	return &ordersvc.OrderListResult{Items: []ordersvc.OrderDTO{}}, nil
}

func (s *stubOrderService) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ordersvc.OrderListResult, error) {
	return &ordersvc.OrderListResult{Items: []ordersvc.OrderDTO{}}, nil
}

func authedRequest(req *http.Request, userID uuid.UUID, role enums.Role) *http.Request {
	claims := &pkgauth.AccessTokenClaims{UserID: userID, Role: role}
	return req.WithContext(middleware.WithClaims(req.Context(), claims))
}

func TestPlaceOrder(t *testing.T) {
	userID := uuid.New()
	cartID := uuid.New()
	svc := &stubOrderService{convertRes: &ordersvc.OrderDTO{ID: uuid.New()}}
	handler := PlaceOrder(svc, nil)

	body := fmt.Sprintf(`{"cart_id":%q}`, cartID)
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = authedRequest(req, userID, enums.RoleCustomer)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != userID {
		t.Fatalf("expected user %s got %s", userID, svc.lastUserID)
	}
	if svc.lastCartID != cartID {
		t.Fatalf("expected cart %s got %s", cartID, svc.lastCartID)
	}
}

func TestPlaceOrderWithoutUserContext(t *testing.T) {
	svc := &stubOrderService{}
	handler := PlaceOrder(svc, nil)

	body := fmt.Sprintf(`{"cart_id":%q}`, uuid.New())
	req := httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestListOrdersPassesStaffFlag(t *testing.T) {
	svc := &stubOrderService{}
	handler := ListOrders(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req = authedRequest(req, uuid.New(), enums.RoleStaff)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if !svc.lastCaller.IsStaff {
		t.Fatal("expected staff caller")
	}
}
