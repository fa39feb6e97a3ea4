package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
	apperrors "github.com/spec-kit/marketplace-gateway/pkg/util"
)

// IdentityMiddleware verifies bearer access tokens and attaches the caller's
// identity to the request context. A request without an Authorization header
// passes through untouched; protected handlers must check for an identity
// themselves (see CurrentUser and CurrentVendor).
type IdentityMiddleware struct {
	tokens *TokenManager
}

// NewIdentityMiddleware constructs middleware.
func NewIdentityMiddleware(tokens *TokenManager) *IdentityMiddleware {
	return &IdentityMiddleware{tokens: tokens}
}

// User populates the user identity slot from a user-class access token.
func (m *IdentityMiddleware) User(c *fiber.Ctx) error {
	token, present, err := bearerToken(c)
	if err != nil {
		return err
	}
	if !present {
		return c.Next()
	}

	claims, err := m.tokens.ParseAccess(domain.ActorUser, token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}
	role := domain.UserRole(claims.Role)
	if !role.Valid() {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	c.SetUserContext(WithUserIdentity(c.UserContext(), domain.UserIdentity{ID: claims.Subject, Role: role}))
	return c.Next()
}

// Vendor populates the vendor identity slot from a vendor-class access token.
func (m *IdentityMiddleware) Vendor(c *fiber.Ctx) error {
	token, present, err := bearerToken(c)
	if err != nil {
		return err
	}
	if !present {
		return c.Next()
	}

	claims, err := m.tokens.ParseAccess(domain.ActorVendor, token)
	if err != nil {
		return apperrors.NewUnauthorized("invalid or expired token")
	}
	role := domain.VendorRole(claims.Role)
	if !role.Valid() {
		return apperrors.NewUnauthorized("invalid or expired token")
	}

	c.SetUserContext(WithVendorIdentity(c.UserContext(), domain.VendorIdentity{ID: claims.Subject, Role: role}))
	return c.Next()
}

// bearerToken reports whether an Authorization header was sent and returns its
// token. A header that is present but not a bearer credential is an error.
func bearerToken(c *fiber.Ctx) (string, bool, error) {
	authHeader := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if authHeader == "" {
		return "", false, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", true, apperrors.NewUnauthorized("invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), true, nil
}
