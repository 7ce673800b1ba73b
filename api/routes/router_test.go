package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	authsvc "github.com/storefront/backend/internal/auth"
	cartsvc "github.com/storefront/backend/internal/cart"
	"github.com/storefront/backend/internal/catalog"
	"github.com/storefront/backend/internal/customers"
	ordersvc "github.com/storefront/backend/internal/orders"
	"github.com/storefront/backend/internal/reviews"
	tagsvc "github.com/storefront/backend/internal/tags"
	pkgauth "github.com/storefront/backend/pkg/auth"
	"github.com/storefront/backend/pkg/auth/session"
	"github.com/storefront/backend/pkg/config"
	"github.com/storefront/backend/pkg/enums"
	"github.com/storefront/backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "new-id", "new-token", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error { return nil }

type stubAuthService struct{}

func (stubAuthService) Register(ctx context.Context, req authsvc.RegisterRequest) (*authsvc.UserDTO, error) {
	return &authsvc.UserDTO{ID: uuid.New(), Email: req.Email}, nil
}

func (stubAuthService) Login(ctx context.Context, req authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	return &authsvc.LoginResponse{AccessToken: "a", RefreshToken: "r"}, nil
}

type stubCatalogService struct{}

func (stubCatalogService) ListProducts(ctx context.Context, query catalog.ProductListQuery) (*catalog.ProductListResult, error) {
	return &catalog.ProductListResult{Items: []catalog.ProductDTO{}}, nil
}

func (stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: id}, nil
}

func (stubCatalogService) CreateProduct(ctx context.Context, input catalog.CreateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: uuid.New(), Title: input.Title}, nil
}

func (stubCatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, input catalog.UpdateProductInput) (*catalog.ProductDTO, error) {
	return &catalog.ProductDTO{ID: id}, nil
}

func (stubCatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error { return nil }

func (stubCatalogService) ListCollections(ctx context.Context, params pagination.Params) (*catalog.CollectionListResult, error) {
	return &catalog.CollectionListResult{Items: []catalog.CollectionDTO{}}, nil
}

func (stubCatalogService) GetCollection(ctx context.Context, id uuid.UUID) (*catalog.CollectionDTO, error) {
	return &catalog.CollectionDTO{ID: id}, nil
}

func (stubCatalogService) CreateCollection(ctx context.Context, input catalog.CollectionInput) (*catalog.CollectionDTO, error) {
	return &catalog.CollectionDTO{ID: uuid.New(), Title: input.Title}, nil
}

func (stubCatalogService) UpdateCollection(ctx context.Context, id uuid.UUID, input catalog.CollectionInput) (*catalog.CollectionDTO, error) {
	return &catalog.CollectionDTO{ID: id}, nil
}

func (stubCatalogService) DeleteCollection(ctx context.Context, id uuid.UUID) error { return nil }

func (stubCatalogService) ListPromotions(ctx context.Context) ([]catalog.PromotionDTO, error) {
	return []catalog.PromotionDTO{}, nil
}

func (stubCatalogService) CreatePromotion(ctx context.Context, input catalog.PromotionInput) (*catalog.PromotionDTO, error) {
	return &catalog.PromotionDTO{ID: uuid.New()}, nil
}

func (stubCatalogService) DeletePromotion(ctx context.Context, id uuid.UUID) error { return nil }

type stubCartRoutesService struct{}

func (stubCartRoutesService) CreateCart(ctx context.Context) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{ID: uuid.New()}, nil
}

func (stubCartRoutesService) GetCart(ctx context.Context, id uuid.UUID) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{ID: id}, nil
}

func (stubCartRoutesService) DeleteCart(ctx context.Context, id uuid.UUID) error { return nil }

func (stubCartRoutesService) AddItem(ctx context.Context, cartID uuid.UUID, input cartsvc.AddItemInput) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{ID: cartID}, nil
}

func (stubCartRoutesService) UpdateItemQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) (*cartsvc.CartDTO, error) {
	return &cartsvc.CartDTO{ID: cartID}, nil
}

func (stubCartRoutesService) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	return nil
}

type stubOrderRoutesService struct{}

func (stubOrderRoutesService) ConvertCart(ctx context.Context, userID, cartID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: uuid.New()}, nil
}

func (stubOrderRoutesService) GetOrder(ctx context.Context, caller ordersvc.Caller, orderID uuid.UUID) (*ordersvc.OrderDTO, error) {
	return &ordersvc.OrderDTO{ID: orderID}, nil
}

func (stubOrderRoutesService) ListOrders(ctx context.Context, caller ordersvc.Caller, params pagination.Params) (*ordersvc.OrderListResult, error) {
	return &ordersvc.OrderListResult{Items: []ordersvc.OrderDTO{}}, nil
}

func (stubOrderRoutesService) ListForCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ordersvc.OrderListResult, error) {
	return &ordersvc.OrderListResult{Items: []ordersvc.OrderDTO{}}, nil
}

type stubCustomerService struct{}

func (stubCustomerService) GetMe(ctx context.Context, userID uuid.UUID) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{ID: uuid.New()}, nil
}

func (stubCustomerService) UpdateMe(ctx context.Context, userID uuid.UUID, input customers.UpdateProfileInput) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{ID: uuid.New()}, nil
}

func (stubCustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{ID: id}, nil
}

func (stubCustomerService) ListCustomers(ctx context.Context, params pagination.Params) (*customers.CustomerListResult, error) {
	return &customers.CustomerListResult{Items: []customers.CustomerDTO{}}, nil
}

func (stubCustomerService) SetMembership(ctx context.Context, id uuid.UUID, membership enums.Membership) (*customers.CustomerDTO, error) {
	return &customers.CustomerDTO{ID: id}, nil
}

func (stubCustomerService) AddAddress(ctx context.Context, userID uuid.UUID, input customers.AddressInput) (*customers.AddressDTO, error) {
	return &customers.AddressDTO{ID: uuid.New()}, nil
}

func (stubCustomerService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]customers.AddressDTO, error) {
	return []customers.AddressDTO{}, nil
}

type stubReviewService struct{}

func (stubReviewService) ListForProduct(ctx context.Context, productID uuid.UUID, params pagination.Params) (*reviews.ReviewListResult, error) {
	return &reviews.ReviewListResult{Items: []reviews.ReviewDTO{}}, nil
}

func (stubReviewService) Create(ctx context.Context, productID uuid.UUID, input reviews.CreateReviewInput) (*reviews.ReviewDTO, error) {
	return &reviews.ReviewDTO{ID: uuid.New(), ProductID: productID}, nil
}

type stubTagService struct{}

func (stubTagService) ListForEntity(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID) ([]tagsvc.TagDTO, error) {
	return []tagsvc.TagDTO{}, nil
}

func (stubTagService) Attach(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID, label string) (*tagsvc.TagDTO, error) {
	return &tagsvc.TagDTO{ID: uuid.New(), Label: label}, nil
}

func (stubTagService) Detach(ctx context.Context, kind enums.EntityKind, entityID uuid.UUID, label string) error {
	return nil
}

func (stubTagService) ListTags(ctx context.Context) ([]tagsvc.TagDTO, error) {
	return []tagsvc.TagDTO{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "8080"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 10},
	}
}

func newTestRouter() http.Handler {
	return NewRouter(Deps{
		Config:          testConfig(),
		Logger:          nil,
		DBPinger:        stubPinger{},
		RedisPinger:     stubPinger{},
		SessionManager:  stubSessionManager{},
		AuthService:     stubAuthService{},
		CatalogService:  stubCatalogService{},
		CartService:     stubCartRoutesService{},
		OrderService:    stubOrderRoutesService{},
		CustomerService: stubCustomerService{},
		ReviewService:   stubReviewService{},
		TagService:      stubTagService{},
	})
}

func mintToken(t *testing.T, role enums.Role, permissions []string) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(testConfig().JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID:      uuid.New(),
		Role:        role,
		Permissions: permissions,
		JTI:         session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func doRequest(t *testing.T, router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCatalogReadsAreAnonymous(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{
		"/api/v1/products/",
		"/api/v1/collections/",
		"/api/v1/promotions/",
		"/api/v1/tags/",
	} {
		if rec := doRequest(t, router, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Fatalf("GET %s: expected 200 got %d", path, rec.Code)
		}
	}
}

func TestCatalogWritesRequireStaff(t *testing.T) {
	router := newTestRouter()
	productID := uuid.NewString()

	// no token at all
	if rec := doRequest(t, router, http.MethodDelete, "/api/v1/products/"+productID, ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	// customer token
	customer := mintToken(t, enums.RoleCustomer, nil)
	if rec := doRequest(t, router, http.MethodDelete, "/api/v1/products/"+productID, customer); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	// staff token
	staff := mintToken(t, enums.RoleStaff, nil)
	if rec := doRequest(t, router, http.MethodDelete, "/api/v1/products/"+productID, staff); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rec.Code)
	}
}

func TestOrdersRequireAuth(t *testing.T) {
	router := newTestRouter()

	if rec := doRequest(t, router, http.MethodGet, "/api/v1/orders/", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}

	customer := mintToken(t, enums.RoleCustomer, nil)
	if rec := doRequest(t, router, http.MethodGet, "/api/v1/orders/", customer); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestCartsAreAnonymous(t *testing.T) {
	router := newTestRouter()

	if rec := doRequest(t, router, http.MethodGet, "/api/v1/carts/"+uuid.NewString(), ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestHistoryRequiresPermission(t *testing.T) {
	router := newTestRouter()
	path := "/api/v1/customers/" + uuid.NewString() + "/history"

	plain := mintToken(t, enums.RoleCustomer, nil)
	if rec := doRequest(t, router, http.MethodGet, path, plain); rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", rec.Code)
	}

	granted := mintToken(t, enums.RoleCustomer, []string{ViewHistoryPermission})
	if rec := doRequest(t, router, http.MethodGet, path, granted); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	staff := mintToken(t, enums.RoleStaff, nil)
	if rec := doRequest(t, router, http.MethodGet, path, staff); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for staff got %d", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	if rec := doRequest(t, router, http.MethodGet, "/health/live", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec := doRequest(t, router, http.MethodGet, "/health/ready", ""); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
