// File: models/user.go
package models

import "time"

const (
	RoleAdmin     = "admin"
	RoleCollector = "collector"
)

// User is a directory entry: display name for identity resolution, role for
// capability checks, FCM token as the push-notification target.
type User struct {
	ID          string    `bson:"id" json:"id"`
	DisplayName string    `bson:"displayName" json:"displayName"`
	Email       string    `bson:"email" json:"email"`
	Role        string    `bson:"role" json:"role"`
	FCMToken    string    `bson:"fcmToken,omitempty" json:"fcmToken,omitempty"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}
