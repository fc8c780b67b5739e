package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/zetsuserv/support-portal/internal/repository"
)

// AdminService covers administrator self-service operations, currently the
// availability toggle the dispatch policy consults.
type AdminService struct {
	availability repository.AvailabilityRepository
	logger       *zap.Logger
}

// NewAdminService constructs the service.
func NewAdminService(availability repository.AvailabilityRepository, logger *zap.Logger) *AdminService {
	return &AdminService{availability: availability, logger: logger}
}

// SetAvailability marks the administrator as available or away. The flag is
// advisory and takes effect for tickets created after the write.
func (s *AdminService) SetAvailability(ctx context.Context, adminID string, available bool) error {
	if err := s.availability.Set(ctx, adminID, available); err != nil {
		return err
	}
	s.logger.Info("admin availability updated",
		zap.String("admin_id", adminID), zap.Bool("available", available))
	return nil
}

// IsAvailable returns the administrator's current flag.
func (s *AdminService) IsAvailable(ctx context.Context, adminID string) (bool, error) {
	return s.availability.Get(ctx, adminID)
}
