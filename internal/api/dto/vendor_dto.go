package dto

import (
	"time"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
)

// VendorRegisterRequest payload for new vendors.
type VendorRegisterRequest struct {
	Email        string  `json:"email" form:"email" validate:"required,email,max=254"`
	Password     string  `json:"password" form:"password" validate:"required,min=6,maxbytes=72"`
	BusinessName *string `json:"businessName,omitempty" form:"businessName" validate:"omitempty,min=1,max=160"`
}

// VendorResponse is the client view of a vendor.
type VendorResponse struct {
	ID           string            `json:"id"`
	Email        string            `json:"email"`
	BusinessName *string           `json:"businessName"`
	Role         domain.VendorRole `json:"role"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// NewVendorResponse maps a domain vendor.
func NewVendorResponse(v *domain.Vendor) VendorResponse {
	return VendorResponse{ID: v.ID, Email: v.Email, BusinessName: v.BusinessName, Role: v.Role, CreatedAt: v.CreatedAt}
}

// VendorAuthResponse is returned by vendor register, login and refresh.
type VendorAuthResponse struct {
	Vendor       VendorResponse `json:"vendor"`
	AccessToken  string         `json:"accessToken"`
	RefreshToken string         `json:"refreshToken"`
}
