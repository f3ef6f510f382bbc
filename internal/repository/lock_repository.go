package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

// GroupLockRepository implements the per-group exclusive lock that serializes
// mutation+recompute for one class+subject+term+year scope.
type GroupLockRepository struct {
	client *redis.Client
}

// NewGroupLockRepository constructs a lock repository.
func NewGroupLockRepository(client *redis.Client) *GroupLockRepository {
	return &GroupLockRepository{client: client}
}

func lockKey(group models.GroupKey) string {
	return fmt.Sprintf("grading:lock:%s:%s:%s:%s", group.ClassID, group.SubjectID, group.TermID, group.AcademicYearID)
}

// TryAcquire attempts to take the group lock once. It returns an owner token
// when the lock was taken and ok=false when another writer holds it. A nil
// client degrades to a no-op lock for single-instance deployments.
func (r *GroupLockRepository) TryAcquire(ctx context.Context, group models.GroupKey, ttl time.Duration) (token string, ok bool, err error) {
	if r.client == nil {
		return "", true, nil
	}
	token = uuid.NewString()
	ok, err = r.client.SetNX(ctx, lockKey(group), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire group lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the lock if the caller still owns it. An expired or stolen
// lock is left alone.
func (r *GroupLockRepository) Release(ctx context.Context, group models.GroupKey, token string) error {
	if r.client == nil || token == "" {
		return nil
	}
	key := lockKey(group)
	current, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil
		}
		return fmt.Errorf("inspect group lock: %w", err)
	}
	if current != token {
		return nil
	}
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release group lock: %w", err)
	}
	return nil
}
