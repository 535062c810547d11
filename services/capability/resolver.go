package capability

import (
	"context"
	"errors"
	"fmt"
	"time"

	userRepo "cosecha/database/repository/user"
	"cosecha/models"

	"github.com/go-redis/redis/v8"
)

const capabilityCacheTTL = 5 * time.Minute

// DefaultResolver resolves admin capability from the user directory, with a
// short-lived Redis cache in front of per-user checks. Cache may be nil.
type DefaultResolver struct {
	Users userRepo.UserRepository
	Cache *redis.Client
}

// HasAdminCapability reports whether the user holds the admin role.
// An unknown user is simply not an admin.
func (r *DefaultResolver) HasAdminCapability(ctx context.Context, userID string) (bool, error) {
	key := "capability:admin:" + userID

	if r.Cache != nil {
		if cached, err := r.Cache.Get(ctx, key).Result(); err == nil {
			return cached == "1", nil
		}
	}

	user, err := r.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userRepo.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("HasAdminCapability: lookup failed for %s: %w", userID, err)
	}

	isAdmin := user.Role == models.RoleAdmin
	if r.Cache != nil {
		val := "0"
		if isAdmin {
			val = "1"
		}
		r.Cache.Set(ctx, key, val, capabilityCacheTTL)
	}
	return isAdmin, nil
}

// ListAdminIDs returns the identifiers of every admin-capable user. Always
// read fresh from the directory so notification fan-out never targets a
// stale recipient set.
func (r *DefaultResolver) ListAdminIDs(ctx context.Context) ([]string, error) {
	admins, err := r.Users.GetByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("ListAdminIDs: %w", err)
	}
	ids := make([]string, 0, len(admins))
	for _, a := range admins {
		ids = append(ids, a.ID)
	}
	return ids, nil
}
