package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/zetsuserv/support-portal/internal/api/dto"
	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/service"
	apperrors "github.com/zetsuserv/support-portal/pkg/util"
)

// KnowledgeHandler exposes FAQ endpoints. Listing is public; mutation is
// admin-only (enforced in the router).
type KnowledgeHandler struct {
	service *service.KnowledgeService
}

// NewKnowledgeHandler constructs handler.
func NewKnowledgeHandler(knowledgeService *service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{service: knowledgeService}
}

// List GET /knowledge.
func (h *KnowledgeHandler) List(c *fiber.Ctx) error {
	entries, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.KnowledgeResponse, 0, len(entries))
	for i := range entries {
		items = append(items, knowledgeResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /admin/knowledge/:id.
func (h *KnowledgeHandler) Get(c *fiber.Ctx) error {
	entry, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": knowledgeResponse(entry)})
}

// Create POST /admin/knowledge.
func (h *KnowledgeHandler) Create(c *fiber.Ctx) error {
	var req dto.KnowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.service.Create(c.Context(), knowledgeInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": knowledgeResponse(entry)})
}

// Update PUT /admin/knowledge/:id.
func (h *KnowledgeHandler) Update(c *fiber.Ctx) error {
	var req dto.KnowledgeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	entry, err := h.service.Update(c.Context(), c.Params("id"), knowledgeInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": knowledgeResponse(entry)})
}

// Delete DELETE /admin/knowledge/:id.
func (h *KnowledgeHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func knowledgeInput(req dto.KnowledgeRequest) service.KnowledgeInput {
	return service.KnowledgeInput{
		Question:     req.Question,
		Answer:       req.Answer,
		Category:     req.Category,
		DisplayOrder: req.DisplayOrder,
	}
}

func knowledgeResponse(entry *domain.KnowledgeEntry) dto.KnowledgeResponse {
	return dto.KnowledgeResponse{
		ID:           entry.ID,
		Question:     entry.Question,
		Answer:       entry.Answer,
		Category:     entry.Category,
		DisplayOrder: entry.DisplayOrder,
		CreatedAt:    entry.CreatedAt,
		UpdatedAt:    entry.UpdatedAt,
	}
}
