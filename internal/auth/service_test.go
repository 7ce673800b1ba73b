package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"

	pkgauth "github.com/storefront/backend/pkg/auth"
	"github.com/storefront/backend/pkg/config"
	"github.com/storefront/backend/pkg/db"
	"github.com/storefront/backend/pkg/db/models"
	"github.com/storefront/backend/pkg/enums"
	pkgerrors "github.com/storefront/backend/pkg/errors"
	"gorm.io/gorm"
)

type stubSessionManager struct {
	mu     sync.Mutex
	tokens map[string]string
	seq    int
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{tokens: make(map[string]string)}
}

func (s *stubSessionManager) Generate(ctx context.Context, accessID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	token := fmt.Sprintf("refresh-%d", s.seq)
	s.tokens[accessID] = token
	return token, nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-test-secret-test-secret",
		Issuer:                 "storefront-test",
		ExpirationMinutes:      30,
		RefreshTokenTTLMinutes: 60,
	}
}

func testPasswordConfig() config.PasswordConfig {
	// small parameters keep the hash fast in tests
	return config.PasswordConfig{
		ArgonMemoryKB:    8,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     8,
		ArgonKeyLen:      16,
	}
}

func newTestService(t *testing.T) (Service, *gorm.DB, *stubSessionManager) {
	t.Helper()

	conn := openTestDB(t)
	sessions := newStubSessionManager()
	svc, err := NewService(ServiceParams{
		DB:             db.NewFromConn(conn),
		UserRepo:       NewUserRepository(conn),
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: testPasswordConfig(),
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	return svc, conn, sessions
}

func TestRegisterCreatesUserAndProfile(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	dto, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "  Ada@Example.COM ",
		Password:  "correct horse battery",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if dto.Email != "ada@example.com" {
		t.Fatalf("expected normalized email, got %q", dto.Email)
	}
	if dto.Role != enums.RoleCustomer {
		t.Fatalf("expected customer role, got %q", dto.Role)
	}

	var stored models.User
	if err := conn.First(&stored, "email = ?", "ada@example.com").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if stored.PasswordHash == "" || stored.PasswordHash == "correct horse battery" {
		t.Fatalf("password was not hashed: %q", stored.PasswordHash)
	}

	var profile models.Customer
	if err := conn.First(&profile, "user_id = ?", stored.ID).Error; err != nil {
		t.Fatalf("expected a customer profile for the new user: %v", err)
	}
	if profile.Membership != enums.MembershipBronze {
		t.Fatalf("expected bronze membership, got %q", profile.Membership)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, conn, _ := newTestService(t)
	ctx := context.Background()

	req := RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse battery",
	}
	if _, err := svc.Register(ctx, req); err != nil {
		t.Fatalf("first register: %v", err)
	}

	_, err := svc.Register(ctx, req)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected CONFLICT for duplicate email, got %v", err)
	}

	var count int64
	if err := conn.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestLoginReturnsTokensAndClaims(t *testing.T) {
	svc, conn, sessions := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse battery",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	var user models.User
	if err := conn.First(&user, "email = ?", "ada@example.com").Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	if err := conn.Create(&models.UserPermission{
		UserID:   user.ID,
		Codename: "customers:view_history",
	}).Error; err != nil {
		t.Fatalf("grant permission: %v", err)
	}

	resp, err := svc.Login(ctx, LoginRequest{Email: "Ada@example.com", Password: "correct horse battery"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("expected both tokens to be set")
	}

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected user id %s in claims, got %s", user.ID, claims.UserID)
	}
	if !claims.HasPermission("customers:view_history") {
		t.Fatal("expected granted permission in claims")
	}
	if claims.ID == "" {
		t.Fatal("expected session id in claims")
	}
	if _, ok := sessions.tokens[claims.ID]; !ok {
		t.Fatalf("expected a session stored for access id %q", claims.ID)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Password:  "correct horse battery",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "ada@example.com", password: "wrong"},
		{name: "unknown user", email: "nobody@example.com", password: "correct horse battery"},
		{name: "empty email", email: "", password: "correct horse battery"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(ctx, LoginRequest{Email: tc.email, Password: tc.password})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected UNAUTHORIZED, got %v", err)
			}
			if typed.Message() != invalidCredentialsMessage {
				t.Fatalf("expected uniform message, got %q", typed.Message())
			}
		})
	}
}
