package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/zetsuserv/support-portal/internal/api/dto"
	"github.com/zetsuserv/support-portal/internal/auth"
	"github.com/zetsuserv/support-portal/internal/service"
	apperrors "github.com/zetsuserv/support-portal/pkg/util"
)

// BroadcastHandler exposes newsletter signup and admin broadcast endpoints.
type BroadcastHandler struct {
	service *service.BroadcastService
}

// NewBroadcastHandler constructs handler.
func NewBroadcastHandler(broadcastService *service.BroadcastService) *BroadcastHandler {
	return &BroadcastHandler{service: broadcastService}
}

// Subscribe POST /newsletter/subscribe.
func (h *BroadcastHandler) Subscribe(c *fiber.Ctx) error {
	var req dto.SubscribeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	subscriber, err := h.service.Subscribe(c.Context(), req.Email)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{"email": subscriber.Email},
	})
}

// Send POST /admin/broadcasts. The response reports delivery counts for the
// completed run; the request blocks while batches go out.
func (h *BroadcastHandler) Send(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("administrator required")
	}
	var req dto.BroadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	summary, err := h.service.SendNewsletter(c.Context(), principal.Admin.ID, req.Subject, req.Body)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BroadcastResponse{
		Attempted: summary.Attempted,
		Succeeded: summary.Succeeded,
		Failed:    summary.Failed,
	}})
}
