package identity

import "context"

// UnknownCollector is the display name of last resort.
const UnknownCollector = "unknown collector"

// Resolver maps a collector identifier to a display name. Resolution never
// fails the caller: on a directory miss it falls back to the denormalized
// name captured at record creation, and failing that to UnknownCollector.
type Resolver interface {
	Resolve(ctx context.Context, userID, denormalized string) string
}
