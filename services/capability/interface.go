package capability

import "context"

// Resolver is the single authority on admin capability. Both the approval
// state machine's initial-state rule and the notification fan-out's
// recipient selection go through it, so the two can never diverge on who
// counts as an admin.
type Resolver interface {
	HasAdminCapability(ctx context.Context, userID string) (bool, error)
	ListAdminIDs(ctx context.Context) ([]string, error)
}
