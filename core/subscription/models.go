package subscription

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/tutormaven/backend/core/tutor"
	"github.com/tutormaven/backend/core/user"
)

// Subscription statuses. pending -> active and pending -> rejected are the
// only transitions; there is no way out of active or rejected (cancellation
// and re-subscription are not modeled).
const (
	StatusPending  = "pending"
	StatusActive   = "active"
	StatusRejected = "rejected"
)

// Fee statuses. A fee is a manually toggled label, not a ledger.
const (
	FeePaid   = "paid"
	FeeUnpaid = "unpaid"
)

// Attendance statuses.
const (
	Present = "present"
	Absent  = "absent"
)

// Subscription relates one student to one tutor. At most one row may exist
// per (student, tutor) pair, whatever its status.
type Subscription struct {
	ID         string     `db:"id" json:"id"`
	StudentID  string     `db:"student_id" json:"student_id"`
	TutorID    string     `db:"tutor_id" json:"tutor_id"`
	Status     string     `db:"status" json:"status"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`             // UTC
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"` // UTC
}

// FeeRecord is keyed by (subscription, month, year); at most one row per key.
type FeeRecord struct {
	ID             string    `db:"id" json:"id"`
	SubscriptionID string    `db:"subscription_id" json:"subscription_id"`
	Month          int       `db:"month" json:"month"`
	Year           int       `db:"year" json:"year"`
	Status         string    `db:"status" json:"status"`
	MarkedAt       time.Time `db:"marked_at" json:"marked_at"` // UTC
}

// AttendanceRecord is keyed by (subscription, date); at most one row per key.
type AttendanceRecord struct {
	ID             string    `db:"id" json:"id"`
	SubscriptionID string    `db:"subscription_id" json:"subscription_id"`
	Date           string    `db:"date" json:"date"` // YYYY-MM-DD
	Status         string    `db:"status" json:"status"`
	MarkedAt       time.Time `db:"marked_at" json:"marked_at"` // UTC
}

// NewSubscription contains information needed to request a subscription.
type NewSubscription struct {
	TutorID string `json:"tutor_id" validate:"required"`
}

func (ns *NewSubscription) Validate(validate *validator.Validate) error {
	return validate.Struct(ns)
}

// MarkFee is a tutor's fee toggle for one month.
type MarkFee struct {
	Month  int    `json:"month" validate:"required,min=1,max=12"`
	Year   int    `json:"year" validate:"required,min=2000"`
	Status string `json:"status" validate:"required,oneof=paid unpaid"`
}

func (mf *MarkFee) Validate(validate *validator.Validate) error {
	return validate.Struct(mf)
}

// MarkAttendance is a tutor's attendance toggle for one date.
type MarkAttendance struct {
	Date   string `json:"date" validate:"required,datetime=2006-01-02"`
	Status string `json:"status" validate:"required,oneof=present absent"`
}

func (ma *MarkAttendance) Validate(validate *validator.Validate) error {
	return validate.Struct(ma)
}

type (
	// Detail is a subscription enriched with the counterpart of whoever asked
	// for it: the student when a tutor lists, the tutor (and profile) when a
	// student lists.
	Detail struct {
		Subscription
		Student      *user.User     `json:"student,omitempty"`
		Tutor        *user.User     `json:"tutor,omitempty"`
		TutorProfile *tutor.Profile `json:"tutor_profile,omitempty"`
	}

	// ParentDetail is the parent-portal entry: an active subscription with
	// tutor identity, fee history and attendance history.
	ParentDetail struct {
		Subscription
		Tutor        user.User          `json:"tutor"`
		TutorProfile tutor.Profile      `json:"tutor_profile"`
		Fees         []FeeRecord        `json:"fees"`
		Attendance   []AttendanceRecord `json:"attendance"`
	}

	// AdminDetail is the admin-stats entry: an active subscription with both
	// parties and the child records.
	AdminDetail struct {
		Subscription
		Student    user.User          `json:"student"`
		Tutor      user.User          `json:"tutor"`
		Fees       []FeeRecord        `json:"fees"`
		Attendance []AttendanceRecord `json:"attendance"`
	}
)
