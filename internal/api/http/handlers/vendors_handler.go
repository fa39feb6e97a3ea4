package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/marketplace-gateway/internal/api/dto"
	"github.com/spec-kit/marketplace-gateway/internal/auth"
	"github.com/spec-kit/marketplace-gateway/internal/service"
)

// VendorsHandler exposes auth endpoints for vendors.
type VendorsHandler struct {
	auth *service.AuthService
}

// NewVendorsHandler constructs handler.
func NewVendorsHandler(authService *service.AuthService) *VendorsHandler {
	return &VendorsHandler{auth: authService}
}

// Register handles POST /api/vendor/auth/register.
func (h *VendorsHandler) Register(c *fiber.Ctx) error {
	var req dto.VendorRegisterRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	vendor, pair, err := h.auth.RegisterVendor(c.UserContext(), service.RegisterVendorInput{
		Email:        strings.TrimSpace(req.Email),
		Password:     req.Password,
		BusinessName: req.BusinessName,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(dto.VendorAuthResponse{
		Vendor:       dto.NewVendorResponse(vendor),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Login handles POST /api/vendor/auth/login.
func (h *VendorsHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	vendor, pair, err := h.auth.LoginVendor(c.UserContext(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		return err
	}

	return c.JSON(dto.VendorAuthResponse{
		Vendor:       dto.NewVendorResponse(vendor),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Refresh handles POST /api/vendor/auth/refresh.
func (h *VendorsHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}

	vendor, pair, err := h.auth.RefreshVendor(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(dto.VendorAuthResponse{
		Vendor:       dto.NewVendorResponse(vendor),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

// Me handles GET /api/vendor/auth/me.
func (h *VendorsHandler) Me(c *fiber.Ctx) error {
	identity, err := auth.CurrentVendor(c)
	if err != nil {
		return err
	}

	vendor, err := h.auth.GetVendor(c.UserContext(), identity.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"vendor": dto.NewVendorResponse(vendor)})
}
