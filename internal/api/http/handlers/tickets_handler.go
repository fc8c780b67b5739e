package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/zetsuserv/support-portal/internal/api/dto"
	"github.com/zetsuserv/support-portal/internal/auth"
	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/service"
	apperrors "github.com/zetsuserv/support-portal/pkg/util"
)

// TicketsHandler manages end-user ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets. The response already carries the AI suggestion
// because enrichment runs synchronously inside the request.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		IssueType:     req.IssueType,
		Message:       req.Message,
		AttachmentRef: req.AttachmentRef,
	}
	ticket, err := h.service.CreateTicket(c.Context(), principal.User.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketDetail(ticket, nil)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	limit, offset := parsePagination(c)
	tickets, err := h.service.ListUserTickets(c.Context(), principal.User.ID, limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, replies, err := h.service.GetTicketForUser(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, replies)})
}

// CloseTicket POST /tickets/:id/close.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return apperrors.NewUnauthorized("user required")
	}
	ticket, err := h.service.CloseTicketAsUser(c.Context(), principal.User.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func parsePagination(c *fiber.Ctx) (limit, offset int) {
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	return pageSize, (page - 1) * pageSize
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:              ticket.ID,
		ExternalKey:     ticket.ExternalKey,
		IssueType:       ticket.IssueType,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		AIAutoResponded: ticket.AIAutoResponded,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, replies []domain.TicketReply) dto.TicketDetailResponse {
	resp := make([]dto.TicketReplyResponse, 0, len(replies))
	for _, reply := range replies {
		resp = append(resp, dto.TicketReplyResponse{
			ID:         reply.ID,
			AuthorType: reply.AuthorType,
			AuthorID:   reply.AuthorID,
			Body:       reply.Body,
			CreatedAt:  reply.CreatedAt,
		})
	}
	return dto.TicketDetailResponse{
		ID:              ticket.ID,
		ExternalKey:     ticket.ExternalKey,
		IssueType:       ticket.IssueType,
		Message:         ticket.Message,
		AttachmentRef:   ticket.AttachmentRef,
		Status:          ticket.Status,
		Priority:        ticket.Priority,
		AISuggestion:    ticket.AISuggestion,
		AIAutoResponded: ticket.AIAutoResponded,
		CreatedAt:       ticket.CreatedAt,
		UpdatedAt:       ticket.UpdatedAt,
		ClosedAt:        ticket.ClosedAt,
		Replies:         resp,
	}
}
