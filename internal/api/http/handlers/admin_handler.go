package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-gateway/internal/api/dto"
	"github.com/spec-kit/marketplace-gateway/internal/auth"
	"github.com/spec-kit/marketplace-gateway/internal/domain"
	"github.com/spec-kit/marketplace-gateway/internal/service"
)

// AdminHandler serves the admin namespaces. Admins are users with role ADMIN.
type AdminHandler struct {
	auth *service.AuthService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService) *AdminHandler {
	return &AdminHandler{auth: authService}
}

// ListUsers handles GET /api/admin/users.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	if _, err := auth.AuthorizeUser(c, domain.UserRoleAdmin); err != nil {
		return err
	}
	var q dto.PageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	users, err := h.auth.ListUsers(c.UserContext(), pageOrDefault(q.Limit), q.Offset)
	if err != nil {
		return err
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}
	return c.JSON(fiber.Map{"users": out})
}

// ListVendors handles GET /api/admin/vendors.
func (h *AdminHandler) ListVendors(c *fiber.Ctx) error {
	if _, err := auth.AuthorizeUser(c, domain.UserRoleAdmin); err != nil {
		return err
	}
	var q dto.PageQuery
	if err := bindQuery(c, &q); err != nil {
		return err
	}

	vendors, err := h.auth.ListVendors(c.UserContext(), pageOrDefault(q.Limit), q.Offset)
	if err != nil {
		return err
	}
	out := make([]dto.VendorResponse, 0, len(vendors))
	for i := range vendors {
		out = append(out, dto.NewVendorResponse(&vendors[i]))
	}
	return c.JSON(fiber.Map{"vendors": out})
}
