package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/closingdesk/commission-backend/pkg/config"
	"github.com/closingdesk/commission-backend/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "secret",
		Issuer:            "https://project.supabase.co/auth/v1",
		Audience:          "authenticated",
		ExpirationMinutes: 30,
	}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID:   userID,
		Email:    "dana@brokerage.test",
		FullName: "Dana Broker",
		Role:     enums.UserRoleBroker,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}

	gotID, err := claims.UserID()
	if err != nil || gotID != userID {
		t.Fatalf("expected subject %s, got %s (%v)", userID, gotID, err)
	}
	if claims.Role() != enums.UserRoleBroker {
		t.Fatalf("unexpected role %s", claims.Role())
	}
	if claims.ActorName() != "Dana Broker" {
		t.Fatalf("unexpected actor name %q", claims.ActorName())
	}
	if claims.Issuer != cfg.Issuer {
		t.Fatalf("expected issuer %s, got %s", cfg.Issuer, claims.Issuer)
	}

	exp := now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)
	diff := claims.ExpiresAt.Sub(exp)
	if diff < 0 {
		diff = -diff
	}
	if diff >= time.Second {
		t.Fatalf("expected exp roughly %v, got %v", exp, claims.ExpiresAt.UTC())
	}
}

func TestActorNameFallsBackToEmail(t *testing.T) {
	claims := &AccessTokenClaims{Email: "agent@brokerage.test"}
	claims.Subject = uuid.NewString()
	if claims.ActorName() != "agent@brokerage.test" {
		t.Fatalf("unexpected actor name %q", claims.ActorName())
	}
	if claims.Role() != enums.UserRoleAgent {
		t.Fatalf("missing role should default to agent, got %s", claims.Role())
	}
}

func TestParseAccessTokenInvalidSignature(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	if _, err := ParseAccessToken(cfg, token+"x"); err == nil {
		t.Fatal("expected invalid signature error")
	}
}

func TestParseAccessTokenWrongAudience(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	other := cfg
	other.Audience = "service_role"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected audience error")
	}
}

func TestParseAccessTokenExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleCoordinator})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	_, err = ParseAccessToken(cfg, token)
	if err == nil {
		t.Fatal("expected expiration error")
	}
	if !strings.Contains(err.Error(), "expired") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMintAccessTokenInvalidRole(t *testing.T) {
	cfg := testJWTConfig()
	if _, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: ""}); err == nil {
		t.Fatal("expected invalid role error")
	}
}
