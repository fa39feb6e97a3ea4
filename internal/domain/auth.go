package domain

// ActorClass differentiates the namespaces a token may be used in.
type ActorClass string

const (
	ActorUser   ActorClass = "user"
	ActorVendor ActorClass = "vendor"
)

// UserIdentity is the verified caller on user-class routes.
type UserIdentity struct {
	ID   string
	Role UserRole
}

// VendorIdentity is the verified caller on vendor-class routes.
type VendorIdentity struct {
	ID   string
	Role VendorRole
}

// TokenPair bundles the credentials returned by register, login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
