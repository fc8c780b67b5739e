package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/domain"
	"github.com/zetsuserv/support-portal/internal/repository"
	apperrors "github.com/zetsuserv/support-portal/pkg/util"
)

// KnowledgeService manages the FAQ entries that double as grounding context
// for AI drafts.
type KnowledgeService struct {
	repo   repository.KnowledgeRepository
	logger *zap.Logger
}

// KnowledgeInput carries create/update payloads.
type KnowledgeInput struct {
	Question     string
	Answer       string
	Category     string
	DisplayOrder int
}

// NewKnowledgeService constructs the service.
func NewKnowledgeService(repo repository.KnowledgeRepository, logger *zap.Logger) *KnowledgeService {
	return &KnowledgeService{repo: repo, logger: logger}
}

// List returns all entries in display order.
func (s *KnowledgeService) List(ctx context.Context) ([]domain.KnowledgeEntry, error) {
	return s.repo.List(ctx)
}

// Get fetches one entry.
func (s *KnowledgeService) Get(ctx context.Context, id string) (*domain.KnowledgeEntry, error) {
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new entry.
func (s *KnowledgeService) Create(ctx context.Context, input KnowledgeInput) (*domain.KnowledgeEntry, error) {
	if err := validateKnowledgeInput(input); err != nil {
		return nil, err
	}
	entry := &domain.KnowledgeEntry{
		Question:     strings.TrimSpace(input.Question),
		Answer:       strings.TrimSpace(input.Answer),
		Category:     strings.TrimSpace(input.Category),
		DisplayOrder: input.DisplayOrder,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info("knowledge entry created", zap.String("entry_id", entry.ID))
	return entry, nil
}

// Update validates and rewrites an entry.
func (s *KnowledgeService) Update(ctx context.Context, id string, input KnowledgeInput) (*domain.KnowledgeEntry, error) {
	if err := validateKnowledgeInput(input); err != nil {
		return nil, err
	}
	entry, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	entry.Question = strings.TrimSpace(input.Question)
	entry.Answer = strings.TrimSpace(input.Answer)
	entry.Category = strings.TrimSpace(input.Category)
	entry.DisplayOrder = input.DisplayOrder
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete removes an entry.
func (s *KnowledgeService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func validateKnowledgeInput(input KnowledgeInput) error {
	if strings.TrimSpace(input.Question) == "" {
		return apperrors.NewValidationError("question required", nil)
	}
	if strings.TrimSpace(input.Answer) == "" {
		return apperrors.NewValidationError("answer required", nil)
	}
	if input.DisplayOrder < 0 {
		return apperrors.NewValidationError("display order must not be negative", nil)
	}
	return nil
}
