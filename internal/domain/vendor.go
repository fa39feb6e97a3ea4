package domain

import "time"

// VendorRole enumerates roles for the vendor actor class.
type VendorRole string

const (
	VendorRoleVendor VendorRole = "VENDOR"
	VendorRoleAdmin  VendorRole = "ADMIN"
)

// Valid reports whether r is a known vendor-class role.
func (r VendorRole) Valid() bool {
	return r == VendorRoleVendor || r == VendorRoleAdmin
}

// Vendor is the credential record for sellers.
type Vendor struct {
	ID           string
	BusinessName *string
	Email        string
	PasswordHash string
	Role         VendorRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
