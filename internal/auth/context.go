package auth

import (
	"context"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
)

type userIdentityKey struct{}
type vendorIdentityKey struct{}

// WithUserIdentity attaches a verified user identity to ctx.
func WithUserIdentity(ctx context.Context, id domain.UserIdentity) context.Context {
	return context.WithValue(ctx, userIdentityKey{}, id)
}

// UserIdentityFrom returns the user identity attached by the user middleware.
func UserIdentityFrom(ctx context.Context) (domain.UserIdentity, bool) {
	if ctx == nil {
		return domain.UserIdentity{}, false
	}
	id, ok := ctx.Value(userIdentityKey{}).(domain.UserIdentity)
	return id, ok && id.ID != ""
}

// WithVendorIdentity attaches a verified vendor identity to ctx.
func WithVendorIdentity(ctx context.Context, id domain.VendorIdentity) context.Context {
	return context.WithValue(ctx, vendorIdentityKey{}, id)
}

// VendorIdentityFrom returns the vendor identity attached by the vendor middleware.
func VendorIdentityFrom(ctx context.Context) (domain.VendorIdentity, bool) {
	if ctx == nil {
		return domain.VendorIdentity{}, false
	}
	id, ok := ctx.Value(vendorIdentityKey{}).(domain.VendorIdentity)
	return id, ok && id.ID != ""
}
