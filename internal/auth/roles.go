package auth

import (
	"slices"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
	apperrors "github.com/spec-kit/marketplace-gateway/pkg/util"
)

// CurrentUser returns the caller on a protected user route, or 401 when no
// identity was attached.
func CurrentUser(c *fiber.Ctx) (domain.UserIdentity, error) {
	id, ok := UserIdentityFrom(c.UserContext())
	if !ok {
		return domain.UserIdentity{}, apperrors.NewUnauthorized("authentication required")
	}
	return id, nil
}

// AuthorizeUser is CurrentUser plus a role check answering 403 on mismatch.
func AuthorizeUser(c *fiber.Ctx, allowed ...domain.UserRole) (domain.UserIdentity, error) {
	id, err := CurrentUser(c)
	if err != nil {
		return id, err
	}
	if len(allowed) > 0 && !slices.Contains(allowed, id.Role) {
		return domain.UserIdentity{}, apperrors.NewForbidden("insufficient role")
	}
	return id, nil
}

// CurrentVendor returns the caller on a protected vendor route, or 401 when no
// identity was attached.
func CurrentVendor(c *fiber.Ctx) (domain.VendorIdentity, error) {
	id, ok := VendorIdentityFrom(c.UserContext())
	if !ok {
		return domain.VendorIdentity{}, apperrors.NewUnauthorized("authentication required")
	}
	return id, nil
}

// AuthorizeVendor is CurrentVendor plus a role check answering 403 on mismatch.
func AuthorizeVendor(c *fiber.Ctx, allowed ...domain.VendorRole) (domain.VendorIdentity, error) {
	id, err := CurrentVendor(c)
	if err != nil {
		return id, err
	}
	if len(allowed) > 0 && !slices.Contains(allowed, id.Role) {
		return domain.VendorIdentity{}, apperrors.NewForbidden("insufficient role")
	}
	return id, nil
}
