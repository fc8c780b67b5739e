package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/ai"
	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/events"
	"github.com/zetsuserv/support-portal/internal/notify"
	"github.com/zetsuserv/support-portal/internal/observability"
	"github.com/zetsuserv/support-portal/internal/repository"
	"github.com/zetsuserv/support-portal/internal/storage"
)

type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
	nextID  int

	suggestionWrites []suggestionWrite
}

type suggestionWrite struct {
	id            string
	suggestion    string
	autoResponded bool
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.nextID++
	ticket.ID = "t-" + strconv.Itoa(r.nextID)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) SetAISuggestion(_ context.Context, id, suggestion string, autoResponded bool) error {
	r.suggestionWrites = append(r.suggestionWrites, suggestionWrite{id, suggestion, autoResponded})
	if ticket, ok := r.tickets[id]; ok && ticket.AISuggestion == "" {
		ticket.AISuggestion = suggestion
		ticket.AIAutoResponded = autoResponded
	}
	return nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id string, status domain.TicketStatus, closedAt *time.Time) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Status = status
	ticket.ClosedAt = closedAt
	return nil
}

func (r *fakeTicketRepo) UpdatePriority(_ context.Context, id string, priority domain.TicketPriority) error {
	ticket, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.Priority = priority
	return nil
}

type fakeReplyRepo struct {
	replies []domain.TicketReply
}

func (r *fakeReplyRepo) Create(_ context.Context, reply *domain.TicketReply) error {
	reply.ID = "r-" + strconv.Itoa(len(r.replies)+1)
	reply.CreatedAt = time.Now()
	r.replies = append(r.replies, *reply)
	return nil
}

func (r *fakeReplyRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.TicketReply, error) {
	var result []domain.TicketReply
	for _, reply := range r.replies {
		if reply.TicketID == ticketID {
			result = append(result, reply)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error { return nil }
func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error { return nil }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeKnowledgeRepo struct {
	entries []domain.KnowledgeEntry
	err     error
}

func (r *fakeKnowledgeRepo) List(context.Context) ([]domain.KnowledgeEntry, error) {
	return r.entries, r.err
}
func (r *fakeKnowledgeRepo) GetByID(context.Context, string) (*domain.KnowledgeEntry, error) {
	return nil, pgx.ErrNoRows
}
func (r *fakeKnowledgeRepo) Create(context.Context, *domain.KnowledgeEntry) error { return nil }
func (r *fakeKnowledgeRepo) Update(context.Context, *domain.KnowledgeEntry) error { return nil }
func (r *fakeKnowledgeRepo) Delete(context.Context, string) error                 { return nil }

type fakeAvailabilityRepo struct {
	anyAvailable bool
	err          error
}

func (r *fakeAvailabilityRepo) Set(context.Context, string, bool) error { return nil }
func (r *fakeAvailabilityRepo) Get(context.Context, string) (bool, error) {
	return r.anyAvailable, nil
}
func (r *fakeAvailabilityRepo) AnyAvailable(context.Context) (bool, error) {
	return r.anyAvailable, r.err
}

type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (s *fakeSender) Send(_ context.Context, to, subject, htmlBody string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentMail{to, subject, htmlBody})
	return nil
}

// scriptedGenerator maps model identifiers to canned outcomes.
type scriptedGenerator struct {
	outcomes map[string]generatorOutcome
	prompts  []ai.Prompt
}

type generatorOutcome struct {
	text string
	err  error
}

func (g *scriptedGenerator) Generate(_ context.Context, model string, prompt ai.Prompt) (string, error) {
	g.prompts = append(g.prompts, prompt)
	outcome, ok := g.outcomes[model]
	if !ok {
		return "", fmt.Errorf("model %s: %w", model, ai.ErrModelNotFound)
	}
	return outcome.text, outcome.err
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(events.EventType, events.EventHandler) {}

func (b *recordingBus) byType(t events.EventType) []events.Event {
	var result []events.Event
	for _, e := range b.published {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

type ticketFixture struct {
	service      *TicketService
	tickets      *fakeTicketRepo
	replies      *fakeReplyRepo
	users        *fakeUserRepo
	knowledge    *fakeKnowledgeRepo
	availability *fakeAvailabilityRepo
	sender       *fakeSender
	generator    *scriptedGenerator
	bus          *recordingBus
}

func newTicketFixture(t *testing.T, models []string) *ticketFixture {
	t.Helper()
	logger := zap.NewNop()
	f := &ticketFixture{
		tickets:      newFakeTicketRepo(),
		replies:      &fakeReplyRepo{},
		users:        &fakeUserRepo{users: map[string]*domain.User{}},
		knowledge:    &fakeKnowledgeRepo{},
		availability: &fakeAvailabilityRepo{anyAvailable: true},
		sender:       &fakeSender{},
		generator:    &scriptedGenerator{outcomes: map[string]generatorOutcome{}},
		bus:          &recordingBus{},
	}
	f.users.users["u-1"] = &domain.User{
		ID:     "u-1",
		Name:   "Dana",
		Email:  "dana@example.com",
		Status: domain.UserStatusActive,
	}

	chain := ai.NewFallbackChain(f.generator, models, logger)
	f.service = NewTicketService(TicketDependencies{
		TicketRepo:       f.tickets,
		ReplyRepo:        f.replies,
		UserRepo:         f.users,
		KnowledgeRepo:    f.knowledge,
		AvailabilityRepo: f.availability,
		Images:           storage.NewImageStore(t.TempDir(), 100, 100, 1<<20, logger),
		Drafter:          ai.NewDrafter(chain, logger),
		Sender:           f.sender,
		Dispatcher:       f.bus,
		Metrics:          observability.NewMetrics(),
		Logger:           logger,
	})
	return f
}

func TestCreateTicketValidation(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})

	_, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueGeneralQuestion,
		Message:   "   ",
	})
	assert.Error(t, err)

	_, err = f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: "Gardening",
		Message:   "hello",
	})
	assert.Error(t, err)

	_, err = f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueGeneralQuestion,
		Message:   strings.Repeat("a", maxMessageLength+1),
	})
	assert.Error(t, err)
}

func TestCreateTicketEscalatesUrgentMessages(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueBillingInquiry,
		Message:   "My payment failed, URGENT please help!!",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)

	created := f.bus.byType(events.EventTicketCreated)
	require.Len(t, created, 1)
	payload := created[0].Payload.(events.TicketCreatedPayload)
	assert.True(t, payload.Escalated)
}

func TestCreateTicketKeepsMediumForCalmMessages(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueGeneralQuestion,
		Message:   "How do I update my billing address?",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
}

func TestCreateTicketAdminAvailableHoldsDraft(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "suggested reply"}
	f.availability.anyAvailable = true

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueTechnicalSupport,
		Message:   "site is slow",
	})

	require.NoError(t, err)
	assert.Equal(t, "suggested reply", ticket.AISuggestion)
	assert.False(t, ticket.AIAutoResponded)
	assert.Empty(t, f.sender.sent)
	assert.Empty(t, f.bus.byType(events.EventAIAutoResponded))
}

func TestCreateTicketNoAdminAutoResponds(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "suggested reply"}
	f.availability.anyAvailable = false

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueTechnicalSupport,
		Message:   "site is slow",
	})

	require.NoError(t, err)
	assert.True(t, ticket.AIAutoResponded)
	require.Len(t, f.sender.sent, 1)
	assert.Equal(t, "dana@example.com", f.sender.sent[0].to)
	assert.Contains(t, f.sender.sent[0].body, notify.AutoReplyMarker)
	assert.Contains(t, f.sender.sent[0].body, "suggested reply")
	assert.Len(t, f.bus.byType(events.EventAIAutoResponded), 1)
}

func TestCreateTicketDeliveryFailureKeepsFlagFalse(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "suggested reply"}
	f.availability.anyAvailable = false
	f.sender.err = errors.New("smtp refused")

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueTechnicalSupport,
		Message:   "site is slow",
	})

	require.NoError(t, err)
	assert.False(t, ticket.AIAutoResponded)
	// The draft is still persisted for admin review.
	assert.Equal(t, "suggested reply", ticket.AISuggestion)
	require.Len(t, f.tickets.suggestionWrites, 1)
	assert.False(t, f.tickets.suggestionWrites[0].autoResponded)
	assert.Empty(t, f.bus.byType(events.EventAIAutoResponded))
}

func TestCreateTicketAvailabilityErrorHoldsDraft(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}
	f.availability.err = errors.New("redis down")

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueGeneralQuestion,
		Message:   "question",
	})

	require.NoError(t, err)
	assert.False(t, ticket.AIAutoResponded)
	assert.Empty(t, f.sender.sent)
}

func TestCreateTicketPlaceholderOnChainFailure(t *testing.T) {
	f := newTicketFixture(t, []string{"primary", "secondary"})
	f.availability.anyAvailable = true

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueBugReport,
		Message:   "something broke",
	})

	require.NoError(t, err)
	assert.Equal(t, ai.FallbackMessage, ticket.AISuggestion)

	drafts := f.bus.byType(events.EventAIDraftCreated)
	require.Len(t, drafts, 1)
	assert.Empty(t, drafts[0].Payload.(events.AIDraftCreatedPayload).Model)
}

func TestCreateTicketKnowledgeFailureDegrades(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}
	f.knowledge.err = errors.New("db timeout")

	_, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueGeneralQuestion,
		Message:   "question",
	})

	require.NoError(t, err)
	require.Len(t, f.generator.prompts, 1)
	assert.NotContains(t, f.generator.prompts[0].User, "Knowledge base:")
}

func TestCreateTicketTraversalAttachmentDegradesToTextOnly(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}
	ref := "../../etc/passwd"

	_, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType:     domain.IssueBugReport,
		Message:       "see attachment",
		AttachmentRef: &ref,
	})

	require.NoError(t, err)
	require.Len(t, f.generator.prompts, 1)
	assert.Nil(t, f.generator.prompts[0].Image)
	assert.NotContains(t, f.generator.prompts[0].System, "screenshot")
}

func TestCreateTicketIncludesKnowledgeContext(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}
	f.knowledge.entries = []domain.KnowledgeEntry{
		{Question: "How to flush DNS?", Answer: "Run ipconfig /flushdns."},
	}

	_, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueTechnicalSupport,
		Message:   "DNS not resolving",
	})

	require.NoError(t, err)
	require.Len(t, f.generator.prompts, 1)
	assert.Contains(t, f.generator.prompts[0].User, "Q: How to flush DNS?")
}

// End-to-end shape of the flagship flow: urgent billing ticket, primary model
// unknown, secondary succeeds, no admin online, so the requester gets the
// secondary model's text directly.
func TestCreateTicketUrgentBillingFallbackAutoRespond(t *testing.T) {
	f := newTicketFixture(t, []string{"primary", "secondary"})
	f.generator.outcomes["secondary"] = generatorOutcome{
		text: "We are sorry about the failed payment. Our billing team is on it.",
	}
	f.availability.anyAvailable = false

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueBillingInquiry,
		Message:   "My payment failed, URGENT please help!!",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, "We are sorry about the failed payment. Our billing team is on it.", ticket.AISuggestion)
	assert.True(t, ticket.AIAutoResponded)

	require.Len(t, f.sender.sent, 1)
	assert.Contains(t, f.sender.sent[0].body, "Our billing team is on it.")

	drafts := f.bus.byType(events.EventAIDraftCreated)
	require.Len(t, drafts, 1)
	assert.Equal(t, "secondary", drafts[0].Payload.(events.AIDraftCreatedPayload).Model)
}

func TestCloseTicketAsUser(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueGeneralQuestion,
		Message:   "question",
	})
	require.NoError(t, err)

	closed, err := f.service.CloseTicketAsUser(context.Background(), "u-1", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)

	// Closing twice conflicts.
	_, err = f.service.CloseTicketAsUser(context.Background(), "u-1", ticket.ID)
	assert.Error(t, err)
}

func TestCloseTicketRejectsForeignUser(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueGeneralQuestion,
		Message:   "question",
	})
	require.NoError(t, err)

	_, err = f.service.CloseTicketAsUser(context.Background(), "u-2", ticket.ID)
	assert.Error(t, err)
}

func TestReplyAsAdminMarksAnswered(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueTechnicalSupport,
		Message:   "help",
	})
	require.NoError(t, err)

	reply, err := f.service.ReplyAsAdmin(context.Background(), "a-1", ticket.ID, "We are on it.")
	require.NoError(t, err)
	assert.Equal(t, domain.ReplyAuthorAdmin, reply.AuthorType)

	updated, _, err := f.service.GetTicketForAdmin(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusAnswered, updated.Status)

	replied := f.bus.byType(events.EventTicketReplied)
	require.Len(t, replied, 1)
	assert.Equal(t, "dana@example.com", replied[0].Payload.(events.TicketRepliedPayload).RequesterEmail)
}

func TestReplyAsAdminRejectsClosedTicket(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueTechnicalSupport,
		Message:   "help",
	})
	require.NoError(t, err)

	_, err = f.service.CloseTicketAsUser(context.Background(), "u-1", ticket.ID)
	require.NoError(t, err)

	_, err = f.service.ReplyAsAdmin(context.Background(), "a-1", ticket.ID, "too late")
	assert.Error(t, err)
}

func TestUpdatePriorityValidation(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}

	ticket, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueFeatureRequest,
		Message:   "please add dark mode",
	})
	require.NoError(t, err)

	_, err = f.service.UpdatePriority(context.Background(), "a-1", ticket.ID, "SEVERE")
	assert.Error(t, err)

	updated, err := f.service.UpdatePriority(context.Background(), "a-1", ticket.ID, domain.TicketPriorityUrgent)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityUrgent, updated.Priority)
}

func TestCreateTicketPersistsSuggestionExactlyOnce(t *testing.T) {
	f := newTicketFixture(t, []string{"primary"})
	f.generator.outcomes["primary"] = generatorOutcome{text: "draft"}

	_, err := f.service.CreateTicket(context.Background(), "u-1", TicketCreateInput{
		IssueType: domain.IssueGeneralQuestion,
		Message:   "question",
	})

	require.NoError(t, err)
	assert.Len(t, f.tickets.suggestionWrites, 1)
}
