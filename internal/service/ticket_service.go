package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/ai"
	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/events"
	"github.com/zetsuserv/support-portal/internal/notify"
	"github.com/zetsuserv/support-portal/internal/observability"
	"github.com/zetsuserv/support-portal/internal/repository"
	"github.com/zetsuserv/support-portal/internal/storage"
	apperrors "github.com/zetsuserv/support-portal/pkg/util"
)

const maxMessageLength = 2000

// TicketService coordinates ticket workflows, including the creation-time AI
// enrichment pipeline.
type TicketService struct {
	tickets      repository.TicketRepository
	replies      repository.ReplyRepository
	users        repository.UserRepository
	knowledge    repository.KnowledgeRepository
	availability repository.AvailabilityRepository
	images       *storage.ImageStore
	drafter      *ai.Drafter
	sender       notify.Sender
	dispatcher   events.Dispatcher
	metrics      *observability.Metrics
	logger       *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo       repository.TicketRepository
	ReplyRepo        repository.ReplyRepository
	UserRepo         repository.UserRepository
	KnowledgeRepo    repository.KnowledgeRepository
	AvailabilityRepo repository.AvailabilityRepository
	Images           *storage.ImageStore
	Drafter          *ai.Drafter
	Sender           notify.Sender
	Dispatcher       events.Dispatcher
	Metrics          *observability.Metrics
	Logger           *zap.Logger
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	IssueType     domain.IssueType
	Message       string
	AttachmentRef *string
}

// TicketAdminFilter describes admin dashboard listing filters.
type TicketAdminFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	IssueTypes  []domain.IssueType
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:      deps.TicketRepo,
		replies:      deps.ReplyRepo,
		users:        deps.UserRepo,
		knowledge:    deps.KnowledgeRepo,
		availability: deps.AvailabilityRepo,
		images:       deps.Images,
		drafter:      deps.Drafter,
		sender:       deps.Sender,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
	}
}

// CreateTicket creates a ticket and synchronously runs the AI enrichment
// pipeline: urgency classification, knowledge-grounded draft generation and
// the availability-aware dispatch decision. The request waits for the model
// chain; no deferred job is scheduled.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, apperrors.NewValidationError("message required", nil)
	}
	if len(message) > maxMessageLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("message must be at most %d characters", maxMessageLength), nil)
	}
	if !domain.ValidIssueType(input.IssueType) {
		return nil, apperrors.NewValidationError("invalid issue type", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	priority := domain.TicketPriorityMedium
	escalated := false
	if ai.ShouldEscalate(message) {
		priority = ai.EscalatePriority(priority)
		escalated = true
		s.logger.Info("ticket priority escalated by urgency classifier",
			zap.String("user_id", userID))
	}

	ticket := &domain.Ticket{
		ExternalKey:   generateTicketKey(),
		RequesterID:   userID,
		IssueType:     input.IssueType,
		Message:       message,
		AttachmentRef: input.AttachmentRef,
		Status:        domain.TicketStatusOpen,
		Priority:      priority,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}

	suggestion, model := s.generateDraft(ctx, ticket, user)
	autoResponded := s.dispatchDraft(ctx, ticket, user, suggestion, model)

	if err := s.tickets.SetAISuggestion(ctx, ticket.ID, suggestion, autoResponded); err != nil {
		// The draft is already computed; losing the persisted copy is
		// operator-visible but must not fail the submission.
		s.logger.Error("failed to persist AI suggestion",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
	}
	ticket.AISuggestion = suggestion
	ticket.AIAutoResponded = autoResponded

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(userID),
		Payload: events.TicketCreatedPayload{
			IssueType:      ticket.IssueType,
			Priority:       ticket.Priority,
			Escalated:      escalated,
			RequesterName:  user.Name,
			RequesterEmail: user.Email,
			MessagePreview: stringPreview(ticket.Message, 120),
		},
	})
	s.publishEvent(ctx, events.Event{
		Type:     events.EventAIDraftCreated,
		TicketID: ticket.ID,
		Actor:    userActor(userID),
		Payload:  events.AIDraftCreatedPayload{Model: model},
	})

	return ticket, nil
}

// generateDraft runs context building, prompt composition and the model
// fallback chain. It always returns displayable text; model is empty when
// the placeholder was substituted.
func (s *TicketService) generateDraft(ctx context.Context, ticket *domain.Ticket, user *domain.User) (string, string) {
	entries, err := s.knowledge.List(ctx)
	if err != nil {
		// Draft quality degrades without context, ticket creation does not.
		s.logger.Warn("knowledge base read failed, composing without context", zap.Error(err))
		entries = nil
	}

	var image *ai.ImagePayload
	if ticket.AttachmentRef != nil {
		image = s.images.LoadImage(*ticket.AttachmentRef)
	}

	prompt := ai.ComposePrompt(ai.ComposeInput{
		Message:          ticket.Message,
		IssueType:        string(ticket.IssueType),
		RequesterName:    user.Name,
		KnowledgeContext: ai.BuildKnowledgeContext(entries),
		Image:            image,
	})

	suggestion, model := s.drafter.Draft(ctx, prompt)
	if model == "" {
		s.metrics.RecordAIAttempt("placeholder")
	} else {
		s.metrics.RecordAIAttempt("generated")
	}
	return suggestion, model
}

// dispatchDraft applies the availability-aware dispatch policy: when no
// administrator is available the draft is sent directly to the requester.
// The auto-responded flag is set only when delivery actually succeeded.
func (s *TicketService) dispatchDraft(ctx context.Context, ticket *domain.Ticket, user *domain.User, suggestion, model string) bool {
	available, err := s.availability.AnyAvailable(ctx)
	if err != nil {
		// Availability is advisory; on read failure hold the draft for
		// review rather than mailing an unreviewed reply.
		s.logger.Warn("availability read failed, holding draft for review", zap.Error(err))
		return false
	}
	if available {
		return false
	}

	subject := fmt.Sprintf("Re: your support ticket %s", ticket.ExternalKey)
	body := autoReplyBody(user.Name, ticket.ExternalKey, suggestion)
	if err := s.sender.Send(ctx, user.Email, subject, body); err != nil {
		s.logger.Warn("auto-response delivery failed, draft retained",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return false
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventAIAutoResponded,
		TicketID: ticket.ID,
		Actor:    userActor(ticket.RequesterID),
		Payload: events.AIAutoRespondedPayload{
			RequesterEmail: user.Email,
			Model:          model,
		},
	})
	return true
}

// ListUserTickets returns paginated tickets for a requester.
func (s *TicketService) ListUserTickets(ctx context.Context, userID string, limit, offset int) ([]domain.Ticket, error) {
	filter := repository.TicketFilter{
		RequesterID: &userID,
		Limit:       limit,
		Offset:      offset,
	}
	return s.tickets.ListWithFilter(ctx, filter)
}

// GetTicketForUser fetches a ticket ensuring ownership.
func (s *TicketService) GetTicketForUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, []domain.TicketReply, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.RequesterID != userID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	replies, err := s.replies.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, replies, nil
}

// CloseTicketAsUser closes the requester's own ticket.
func (s *TicketService) CloseTicketAsUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket already closed", nil)
	}
	now := time.Now()
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusClosed, &now); err != nil {
		return nil, err
	}
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketClosed,
		TicketID: ticket.ID,
		Actor:    userActor(userID),
		Payload:  events.TicketClosedPayload{ClosedBy: domain.SubjectTypeUser},
	})
	return ticket, nil
}

// ListTicketsForAdmin returns tickets for the dashboard.
func (s *TicketService) ListTicketsForAdmin(ctx context.Context, filter TicketAdminFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		IssueTypes:  filter.IssueTypes,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicketForAdmin fetches any ticket with its replies.
func (s *TicketService) GetTicketForAdmin(ctx context.Context, ticketID string) (*domain.Ticket, []domain.TicketReply, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	replies, err := s.replies.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, replies, nil
}

// ReplyAsAdmin records an admin reply, marks the ticket answered and emits
// the event the notification pipeline mails to the requester.
func (s *TicketService) ReplyAsAdmin(ctx context.Context, adminID, ticketID, body string) (*domain.TicketReply, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperrors.NewValidationError("body required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.Status == domain.TicketStatusClosed {
		return nil, apperrors.NewConflict("ticket is closed", nil)
	}
	user, err := s.users.GetByID(ctx, ticket.RequesterID)
	if err != nil {
		return nil, err
	}

	reply := &domain.TicketReply{
		TicketID:   ticket.ID,
		AuthorType: domain.ReplyAuthorAdmin,
		AuthorID:   &adminID,
		Body:       body,
	}
	if err := s.replies.Create(ctx, reply); err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusAnswered {
		if err := s.tickets.UpdateStatus(ctx, ticket.ID, domain.TicketStatusAnswered, nil); err != nil {
			return nil, err
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketReplied,
		TicketID: ticket.ID,
		Actor:    adminActor(adminID),
		Payload: events.TicketRepliedPayload{
			ReplyID:        reply.ID,
			RequesterEmail: user.Email,
			RequesterName:  user.Name,
			BodyPreview:    stringPreview(body, 120),
		},
	})
	return reply, nil
}

// UpdatePriority changes ticket priority from the dashboard.
func (s *TicketService) UpdatePriority(ctx context.Context, adminID, ticketID string, priority domain.TicketPriority) (*domain.Ticket, error) {
	if !domain.ValidTicketPriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if err := s.tickets.UpdatePriority(ctx, ticket.ID, priority); err != nil {
		return nil, err
	}
	ticket.Priority = priority
	s.logger.Info("ticket priority updated",
		zap.String("ticket_id", ticket.ID),
		zap.String("admin_id", adminID),
		zap.String("priority", string(priority)))
	return ticket, nil
}

func autoReplyBody(name, externalKey, suggestion string) string {
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <p>%s</p>
    <p>Dear %s,</p>
    <p>%s</p>
    <hr>
    <p style="font-size: 12px; color: #666;">Ticket %s &middot; Powered by ZetsuServ AI</p>
</body>
</html>`,
		notify.AutoReplyMarker,
		html.EscapeString(name),
		html.EscapeString(suggestion),
		html.EscapeString(externalKey))
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{
		Type:   domain.SubjectTypeUser,
		UserID: &userID,
	}
}

func adminActor(adminID string) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeAdmin,
		AdminID: &adminID,
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
