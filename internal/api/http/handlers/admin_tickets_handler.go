package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zetsuserv/support-portal/internal/api/dto"
	"github.com/zetsuserv/support-portal/internal/auth"
	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/service"
	apperrors "github.com/zetsuserv/support-portal/pkg/util"
)

// AdminTicketsHandler manages the administrator ticket dashboard.
type AdminTicketsHandler struct {
	service *service.TicketService
}

// NewAdminTicketsHandler constructs handler.
func NewAdminTicketsHandler(ticketService *service.TicketService) *AdminTicketsHandler {
	return &AdminTicketsHandler{service: ticketService}
}

// ListTickets GET /admin/tickets.
func (h *AdminTicketsHandler) ListTickets(c *fiber.Ctx) error {
	tickets, err := h.service.ListTicketsForAdmin(c.Context(), parseAdminTicketQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /admin/tickets/:id.
func (h *AdminTicketsHandler) GetTicket(c *fiber.Ctx) error {
	ticket, replies, err := h.service.GetTicketForAdmin(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, replies)})
}

// Reply POST /admin/tickets/:id/reply.
func (h *AdminTicketsHandler) Reply(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("administrator required")
	}
	var req dto.CreateReplyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	reply, err := h.service.ReplyAsAdmin(c.Context(), principal.Admin.ID, c.Params("id"), req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.TicketReplyResponse{
		ID:         reply.ID,
		AuthorType: reply.AuthorType,
		AuthorID:   reply.AuthorID,
		Body:       reply.Body,
		CreatedAt:  reply.CreatedAt,
	}})
}

// UpdatePriority PATCH /admin/tickets/:id/priority.
func (h *AdminTicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Admin == nil {
		return apperrors.NewUnauthorized("administrator required")
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdatePriority(c.Context(), principal.Admin.ID, c.Params("id"), req.Priority)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parseAdminTicketQuery(c *fiber.Ctx) service.TicketAdminFilter {
	filter := service.TicketAdminFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if issueStr := c.Query("issue_type"); issueStr != "" {
		for _, part := range strings.Split(issueStr, ",") {
			filter.IssueTypes = append(filter.IssueTypes, domain.IssueType(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("q"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	filter.Limit, filter.Offset = parsePagination(c)
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}
