package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/marketplace-gateway/internal/config"
	"github.com/spec-kit/marketplace-gateway/internal/domain"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		AccessSecret:  "access-secret-for-tests",
		RefreshSecret: "refresh-secret-for-tests",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func newTestTokens(t *testing.T) *TokenManager {
	t.Helper()
	tm, err := NewTokenManager(testAuthConfig())
	if err != nil {
		t.Fatalf("new token manager: %v", err)
	}
	return tm
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestIssueAndParseAccess(t *testing.T) {
	tm := newTestTokens(t)
	pair, err := tm.Issue(domain.ActorUser, "user-1", string(domain.UserRoleAdmin))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" || pair.AccessToken == pair.RefreshToken {
		t.Fatalf("unexpected pair %+v", pair)
	}

	claims, err := tm.ParseAccess(domain.ActorUser, pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "ADMIN" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestRefreshTokenCarriesNoRole(t *testing.T) {
	tm := newTestTokens(t)
	pair, err := tm.Issue(domain.ActorUser, "user-1", string(domain.UserRoleAdmin))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := tm.ParseRefresh(domain.ActorUser, pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh: %v", err)
	}
	if claims.Subject != "user-1" {
		t.Fatalf("unexpected subject %q", claims.Subject)
	}

	raw := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(pair.RefreshToken, raw); err != nil {
		t.Fatalf("parse unverified: %v", err)
	}
	if _, ok := raw["role"]; ok {
		t.Fatalf("refresh token must not embed role: %v", raw)
	}
}

func TestSecretsAreIndependent(t *testing.T) {
	tm := newTestTokens(t)
	pair, err := tm.Issue(domain.ActorUser, "user-1", "USER")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := tm.ParseRefresh(domain.ActorUser, pair.AccessToken); err == nil {
		t.Fatal("access token must not verify with the refresh secret")
	}
	if _, err := tm.ParseAccess(domain.ActorUser, pair.RefreshToken); err == nil {
		t.Fatal("refresh token must not verify with the access secret")
	}

	forged := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"user"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	signed, err := forged.SignedString([]byte("refresh-secret-for-tests"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := tm.ParseAccess(domain.ActorUser, signed); err == nil {
		t.Fatal("access token signed with refresh secret must be rejected")
	}
}

func TestExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	tm := newTestTokens(t)
	pair, err := tm.WithClock(fixedClock(issuedAt)).Issue(domain.ActorVendor, "vendor-1", "VENDOR")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	justBefore := tm.WithClock(fixedClock(issuedAt.Add(15*time.Minute - time.Second)))
	if _, err := justBefore.ParseAccess(domain.ActorVendor, pair.AccessToken); err != nil {
		t.Fatalf("expected token valid one second before expiry: %v", err)
	}

	after := tm.WithClock(fixedClock(issuedAt.Add(15*time.Minute + time.Second)))
	_, err = after.ParseAccess(domain.ActorVendor, pair.AccessToken)
	if err == nil {
		t.Fatal("expected expired access token to be rejected")
	}
	if !errors.Is(err, ErrInvalidToken) || !errors.Is(err, jwt.ErrTokenExpired) {
		t.Fatalf("expected expiry error, got %v", err)
	}

	if _, err := after.ParseRefresh(domain.ActorVendor, pair.RefreshToken); err != nil {
		t.Fatalf("refresh token expires independently: %v", err)
	}
	late := tm.WithClock(fixedClock(issuedAt.Add(7*24*time.Hour + time.Second)))
	if _, err := late.ParseRefresh(domain.ActorVendor, pair.RefreshToken); err == nil {
		t.Fatal("expected expired refresh token to be rejected")
	}
}

func TestAudienceSeparatesActorClasses(t *testing.T) {
	tm := newTestTokens(t)
	pair, err := tm.Issue(domain.ActorVendor, "vendor-1", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := tm.ParseAccess(domain.ActorUser, pair.AccessToken); err == nil {
		t.Fatal("vendor token must not verify as a user token")
	}
	if _, err := tm.ParseRefresh(domain.ActorUser, pair.RefreshToken); err == nil {
		t.Fatal("vendor refresh token must not verify as a user refresh token")
	}
}

func TestParseRejectsTamperingAndOtherAlgorithms(t *testing.T) {
	tm := newTestTokens(t)
	pair, err := tm.Issue(domain.ActorUser, "user-1", "USER")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	parts := strings.Split(pair.AccessToken, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := tm.ParseAccess(domain.ActorUser, tampered); err == nil {
		t.Fatal("tampered signature must be rejected")
	}

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &AccessClaims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			Audience:  jwt.ClaimStrings{"user"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := tm.ParseAccess(domain.ActorUser, unsigned); err == nil {
		t.Fatal("alg=none must be rejected")
	}

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		Role:             "USER",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1", Audience: jwt.ClaimStrings{"user"}},
	})
	signed, _ := noExp.SignedString([]byte("access-secret-for-tests"))
	if _, err := tm.ParseAccess(domain.ActorUser, signed); err == nil {
		t.Fatal("token without exp must be rejected")
	}
}

func TestNewTokenManagerValidatesSecrets(t *testing.T) {
	cfg := testAuthConfig()
	cfg.RefreshSecret = ""
	if _, err := NewTokenManager(cfg); !errors.Is(err, ErrMissingSecret) {
		t.Fatalf("expected ErrMissingSecret, got %v", err)
	}

	cfg = testAuthConfig()
	cfg.RefreshSecret = cfg.AccessSecret
	if _, err := NewTokenManager(cfg); !errors.Is(err, ErrSharedSecret) {
		t.Fatalf("expected ErrSharedSecret, got %v", err)
	}

	cfg = testAuthConfig()
	cfg.AccessTTL, cfg.RefreshTTL = 0, 0
	tm, err := NewTokenManager(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if tm.AccessTTL() != 15*time.Minute || tm.RefreshTTL() != 7*24*time.Hour {
		t.Fatalf("unexpected default ttls %s %s", tm.AccessTTL(), tm.RefreshTTL())
	}
}
