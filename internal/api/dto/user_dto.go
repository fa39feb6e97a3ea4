package dto

import (
	"time"

	"github.com/spec-kit/marketplace-gateway/internal/domain"
)

// UserRegisterRequest payload for new users.
type UserRegisterRequest struct {
	Email    string  `json:"email" form:"email" validate:"required,email,max=254"`
	Password string  `json:"password" form:"password" validate:"required,min=6,maxbytes=72"`
	Name     *string `json:"name,omitempty" form:"name" validate:"omitempty,min=1,max=120"`
}

// LoginRequest payload for user and vendor login.
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RefreshRequest payload for exchanging a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" form:"refreshToken" validate:"required"`
}

// UserResponse is the client view of a user. It never carries the password hash.
type UserResponse struct {
	ID        string          `json:"id"`
	Email     string          `json:"email"`
	Name      *string         `json:"name"`
	Role      domain.UserRole `json:"role"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, CreatedAt: u.CreatedAt}
}

// UserAuthResponse is returned by register, login and refresh.
type UserAuthResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
}

// PageQuery binds list pagination.
type PageQuery struct {
	Limit  int `query:"limit" validate:"omitempty,min=1,max=100"`
	Offset int `query:"offset" validate:"omitempty,min=0"`
}
