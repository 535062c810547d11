package identity

import (
	"context"
	"time"

	userRepo "cosecha/database/repository/user"
	"cosecha/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const nameCacheTTL = 15 * time.Minute

// DefaultResolver resolves display names from the user directory, with a
// Redis cache in front. Cache may be nil.
type DefaultResolver struct {
	Users userRepo.UserRepository
	Cache *redis.Client
}

// Resolve returns the best-known display name for a collector.
func (r *DefaultResolver) Resolve(ctx context.Context, userID, denormalized string) string {
	key := "identity:name:" + userID

	if r.Cache != nil {
		if cached, err := r.Cache.Get(ctx, key).Result(); err == nil && cached != "" {
			return cached
		}
	}

	user, err := r.Users.GetByID(ctx, userID)
	if err != nil {
		utils.GetLogger().Debug("identity: directory lookup failed, using fallback",
			zap.String("userId", userID), zap.Error(err))
		return fallback(denormalized)
	}
	if user.DisplayName == "" {
		return fallback(denormalized)
	}

	if r.Cache != nil {
		r.Cache.Set(ctx, key, user.DisplayName, nameCacheTTL)
	}
	return user.DisplayName
}

func fallback(denormalized string) string {
	if denormalized != "" {
		return denormalized
	}
	return UnknownCollector
}
