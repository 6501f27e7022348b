package notification

import "time"

// Notification types
const (
	TypeSubscriptionRequest  = "subscription_request"
	TypeSubscriptionAccepted = "subscription_accepted"
	TypeSubscriptionRejected = "subscription_rejected"
	TypeFeeUnpaid            = "fee_unpaid"
	TypeVerificationApproved = "verification_approved"
	TypeVerificationRejected = "verification_rejected"
)

// Notification is an append-only record addressed to the party affected by a
// state transition; only the `read` flag ever changes after creation.
type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"` // UTC
}
