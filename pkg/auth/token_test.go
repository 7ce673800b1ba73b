package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/pkg/config"
	"github.com/storefront/backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "unit-test-secret",
		Issuer:            "storefront-test",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID:      userID,
		Role:        enums.RoleStaff,
		Permissions: []string{enums.PermViewHistory},
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	claims, err := ParseAccessToken(testJWTConfig(), token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user %s got %s", userID, claims.UserID)
	}
	if claims.Role != enums.RoleStaff {
		t.Fatalf("expected staff role, got %s", claims.Role)
	}
	if !claims.HasPermission(enums.PermViewHistory) {
		t.Fatal("expected view history permission on claims")
	}
	if claims.HasPermission("orders:cancel") {
		t.Fatal("unexpected permission on claims")
	}
	if claims.ID == "" {
		t.Fatal("expected generated jti")
	}
}

func TestMintRejectsInvalidRole(t *testing.T) {
	_, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.Role("superuser"),
	})
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(testJWTConfig(), past, AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := ParseAccessToken(testJWTConfig(), token); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestParseRejectsWrongIssuer(t *testing.T) {
	otherIssuer := testJWTConfig()
	otherIssuer.Issuer = "someone-else"
	token, err := MintAccessToken(otherIssuer, time.Now(), AccessTokenPayload{
		UserID: uuid.New(),
		Role:   enums.RoleCustomer,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	if _, err := ParseAccessToken(testJWTConfig(), token); err == nil {
		t.Fatal("expected issuer mismatch error")
	}
}
