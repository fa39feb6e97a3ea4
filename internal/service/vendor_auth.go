package service

import (
	"context"
	"errors"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
	"github.com/spec-kit/marketplace-gateway/internal/events"
	"github.com/spec-kit/marketplace-gateway/internal/repository"
	apperrors "github.com/spec-kit/marketplace-gateway/pkg/util"
)

// RegisterVendorInput carries validated vendor registration fields.
type RegisterVendorInput struct {
	Email        string
	Password     string
	BusinessName *string
}

// RegisterVendor creates a VENDOR account and issues its first token pair.
func (s *AuthService) RegisterVendor(ctx context.Context, in RegisterVendorInput) (*domain.Vendor, domain.TokenPair, error) {
	if _, err := s.vendors.GetByEmail(ctx, in.Email); err == nil {
		s.metrics.RecordAuth(string(domain.ActorVendor), "register", "conflict")
		return nil, domain.TokenPair{}, emailTaken()
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	hash, err := s.hashPassword(in.Password)
	if err != nil {
		return nil, domain.TokenPair{}, err
	}

	vendor := &domain.Vendor{
		BusinessName: in.BusinessName,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         domain.VendorRoleVendor,
	}
	if err := s.vendors.Create(ctx, vendor); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.RecordAuth(string(domain.ActorVendor), "register", "conflict")
			return nil, domain.TokenPair{}, emailTaken()
		}
		return nil, domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	pair, err := s.issue(domain.ActorVendor, vendor.ID, string(vendor.Role))
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	s.metrics.RecordAuth(string(domain.ActorVendor), "register", "success")
	s.publish(ctx, events.EventVendorRegistered, vendorActor(vendor), nil)
	return vendor, pair, nil
}

// LoginVendor authenticates a vendor with the same enumeration-safe failure as LoginUser.
func (s *AuthService) LoginVendor(ctx context.Context, email, password string) (*domain.Vendor, domain.TokenPair, error) {
	if err := s.checkThrottle(ctx, domain.ActorVendor, email); err != nil {
		return nil, domain.TokenPair{}, err
	}

	vendor, err := s.vendors.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		s.hasher.Verify(password, s.dummyHash)
		return nil, domain.TokenPair{}, s.loginFailed(ctx, domain.ActorVendor, email, "unknown_email")
	case err != nil:
		return nil, domain.TokenPair{}, apperrors.NewInternalError(err)
	}
	if !s.hasher.Verify(password, vendor.PasswordHash) {
		return nil, domain.TokenPair{}, s.loginFailed(ctx, domain.ActorVendor, email, "bad_password")
	}

	pair, err := s.issue(domain.ActorVendor, vendor.ID, string(vendor.Role))
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	s.loginSucceeded(ctx, domain.ActorVendor, email)
	s.publish(ctx, events.EventVendorLoggedIn, vendorActor(vendor), nil)
	return vendor, pair, nil
}

// GetVendor loads the record behind an authenticated vendor identity.
func (s *AuthService) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	vendor, err := s.vendors.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewNotFound("vendor", nil)
	}
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return vendor, nil
}

// RefreshVendor exchanges a vendor refresh token for a new pair.
func (s *AuthService) RefreshVendor(ctx context.Context, refreshToken string) (*domain.Vendor, domain.TokenPair, error) {
	claims, err := s.tokens.ParseRefresh(domain.ActorVendor, refreshToken)
	if err != nil {
		s.metrics.RecordAuth(string(domain.ActorVendor), "refresh", "failure")
		return nil, domain.TokenPair{}, apperrors.NewUnauthorized("invalid or expired refresh token")
	}

	vendor, err := s.vendors.GetByID(ctx, claims.Subject)
	if errors.Is(err, repository.ErrNotFound) {
		s.metrics.RecordAuth(string(domain.ActorVendor), "refresh", "failure")
		return nil, domain.TokenPair{}, apperrors.NewUnauthorized("invalid or expired refresh token")
	}
	if err != nil {
		return nil, domain.TokenPair{}, apperrors.NewInternalError(err)
	}

	pair, err := s.issue(domain.ActorVendor, vendor.ID, string(vendor.Role))
	if err != nil {
		return nil, domain.TokenPair{}, err
	}
	s.metrics.RecordAuth(string(domain.ActorVendor), "refresh", "success")
	return vendor, pair, nil
}

// ListVendors returns a page of vendors for administrators.
func (s *AuthService) ListVendors(ctx context.Context, limit, offset int) ([]domain.Vendor, error) {
	vendors, err := s.vendors.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return vendors, nil
}
