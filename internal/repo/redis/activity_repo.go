package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/matchcore/internal/domain/errs"
)

const activityKeyPrefix = "activity:"

// ActivityRepo throttles LastActive writes: a profile may claim one write
// per window.
type ActivityRepo struct {
	client *goredis.Client
}

func NewActivityRepo(client *goredis.Client) *ActivityRepo {
	return &ActivityRepo{client: client}
}

// Claim reports whether the caller holds the write slot for this window.
func (r *ActivityRepo) Claim(ctx context.Context, profileID string, window time.Duration) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if profileID == "" || window <= 0 {
		return false, errs.Invalid("activity claim: profile id and positive window required")
	}
	ok, err := r.client.SetNX(ctx, activityKeyPrefix+profileID, 1, window).Result()
	if err != nil {
		return false, errs.Store("redis setnx", err)
	}
	return ok, nil
}

// Release drops the slot so the next Touch writes immediately.
func (r *ActivityRepo) Release(ctx context.Context, profileID string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if err := r.client.Del(ctx, activityKeyPrefix+profileID).Err(); err != nil {
		return errs.Store("redis del", err)
	}
	return nil
}
