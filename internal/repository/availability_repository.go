package repository

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const availableAdminsKey = "support:available_admins"

// AvailabilityRepository stores the advisory per-administrator availability
// flag. Reads carry no transactional guarantee; last write wins. AnyAvailable
// is what ticket creation consults: when no administrator is marked
// available, the AI draft is auto-sent to the requester.
type AvailabilityRepository interface {
	Set(ctx context.Context, adminID string, available bool) error
	Get(ctx context.Context, adminID string) (bool, error)
	AnyAvailable(ctx context.Context) (bool, error)
}

type redisAvailabilityRepository struct {
	client *redis.Client
}

// NewAvailabilityRepository returns a Redis-backed implementation keeping a
// set of currently-available administrator IDs.
func NewAvailabilityRepository(client *redis.Client) AvailabilityRepository {
	return &redisAvailabilityRepository{client: client}
}

func (r *redisAvailabilityRepository) Set(ctx context.Context, adminID string, available bool) error {
	if available {
		return r.client.SAdd(ctx, availableAdminsKey, adminID).Err()
	}
	return r.client.SRem(ctx, availableAdminsKey, adminID).Err()
}

func (r *redisAvailabilityRepository) Get(ctx context.Context, adminID string) (bool, error) {
	return r.client.SIsMember(ctx, availableAdminsKey, adminID).Result()
}

func (r *redisAvailabilityRepository) AnyAvailable(ctx context.Context) (bool, error) {
	count, err := r.client.SCard(ctx, availableAdminsKey).Result()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
