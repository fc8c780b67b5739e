package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zetsuserv/support-portal/internal/api/dto"
	"github.com/zetsuserv/support-portal/internal/auth"
	"github.com/zetsuserv/support-portal/internal/service"
	apperrors "github.com/zetsuserv/support-portal/pkg/util"
)

// AdminHandler exposes administrator login and self-service endpoints.
type AdminHandler struct {
	auth   *service.AuthService
	admins *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(authService *service.AuthService, adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{auth: authService, admins: adminService}
}

// Login handles POST /auth/admin/login.
func (h *AdminHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required", nil)
	}
	admin, issued, err := h.auth.LoginAdmin(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"admin": fiber.Map{
				"id":    admin.ID,
				"name":  admin.Name,
				"email": admin.Email,
			},
			"auth": dto.AuthResponse{Token: issued.Token, ExpiresAt: issued.ExpiresAt},
		},
	})
}

// SetAvailability handles PUT /admin/availability.
func (h *AdminHandler) SetAvailability(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("administrator required")
	}
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.admins.SetAvailability(c.Context(), principal.Admin.ID, req.Available); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AvailabilityResponse{
		AdminID:   principal.Admin.ID,
		Available: req.Available,
	}})
}

// GetAvailability handles GET /admin/availability.
func (h *AdminHandler) GetAvailability(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("administrator required")
	}
	available, err := h.admins.IsAvailable(c.Context(), principal.Admin.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AvailabilityResponse{
		AdminID:   principal.Admin.ID,
		Available: available,
	}})
}
