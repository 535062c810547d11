package notification

import (
	"context"

	"cosecha/models"
)

// Service fans out pushes to supervisors when a collection lands in the
// pending queue. Dispatch is fire-and-forget: the submitting request never
// learns about, waits for, or is failed by delivery outcomes.
type Service interface {
	NotifyPendingCollection(notice models.PendingCollectionNotice)
}

// Pusher sends one push to one device token. Implemented by the FCM client;
// replaced by fakes in tests.
type Pusher interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}
