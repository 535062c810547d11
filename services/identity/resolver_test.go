package identity

import (
	"context"
	"testing"

	userRepo "cosecha/database/repository/user"
	"cosecha/models"
)

type fakeDirectory struct {
	users map[string]models.User
}

func (f *fakeDirectory) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, userRepo.ErrNotFound
	}
	out := user
	return &out, nil
}

func (f *fakeDirectory) GetByRole(context.Context, string) ([]models.User, error) {
	return nil, nil
}

func (f *fakeDirectory) UpdateFCMToken(context.Context, string, string) error { return nil }

func TestResolveFallbackChain(t *testing.T) {
	resolver := &DefaultResolver{Users: &fakeDirectory{users: map[string]models.User{
		"c1": {ID: "c1", DisplayName: "Pedro"},
		"c2": {ID: "c2"}, // directory entry without a display name
	}}}

	cases := []struct {
		name         string
		userID       string
		denormalized string
		want         string
	}{
		{"directory hit", "c1", "Stale Name", "Pedro"},
		{"directory miss, denormalized fallback", "ghost", "Stale Name", "Stale Name"},
		{"directory miss, no fallback", "ghost", "", UnknownCollector},
		{"blank directory name, denormalized fallback", "c2", "Stale Name", "Stale Name"},
		{"blank directory name, no fallback", "c2", "", UnknownCollector},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := resolver.Resolve(context.Background(), tc.userID, tc.denormalized)
			if got != tc.want {
				t.Errorf("Resolve(%s, %q) = %q, want %q", tc.userID, tc.denormalized, got, tc.want)
			}
		})
	}
}
