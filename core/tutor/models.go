package tutor

import (
	"github.com/go-playground/validator/v10"

	"github.com/tutormaven/backend/core"
	"github.com/tutormaven/backend/core/review"
	"github.com/tutormaven/backend/core/user"
)

// Verification statuses. Admin may flip between approved and rejected
// repeatedly; there is no terminal state.
const (
	VerificationPending  = "pending"
	VerificationApproved = "approved"
	VerificationRejected = "rejected"
)

// Profile carries a tutor's teaching metadata and the verification machine
// state. ReachCount and SubscriberCount are denormalized counters updated
// only by their specific transitions, never recomputed from source of truth.
// Invariant: IsVerified implies VerificationStatus == approved at the moment
// of approval; a later rejection flips the status but deliberately leaves the
// badge (see Service.RejectVerification).
type Profile struct {
	ID                 string   `db:"id" json:"id"`
	UserID             string   `db:"user_id" json:"user_id"`
	Bio                string   `db:"bio" json:"bio,omitempty"`
	Subjects           []string `db:"subjects" json:"subjects"`
	MonthlyFee         float64  `db:"monthly_fee" json:"monthly_fee"`
	Education          string   `db:"education" json:"education,omitempty"`
	CoachingAddress    string   `db:"coaching_address" json:"coaching_address,omitempty"`
	ContactNumber      string   `db:"contact_number" json:"contact_number,omitempty"`
	CoachingPhoto      string   `db:"coaching_photo" json:"coaching_photo,omitempty"`
	TeachingDays       []string `db:"teaching_days" json:"teaching_days"`
	HoursPerDay        int      `db:"hours_per_day" json:"hours_per_day"`
	Boards             []string `db:"boards" json:"boards"` // CBSE, ICSE, STATE BOARD
	IsVerified         bool     `db:"is_verified" json:"is_verified"`
	VerificationProof  string   `db:"verification_proof" json:"verification_proof,omitempty"`
	VerificationPhone  string   `db:"verification_phone" json:"verification_phone,omitempty"`
	VerificationStatus string   `db:"verification_status" json:"verification_status"`
	VerificationBanner string   `db:"verification_banner" json:"verification_banner,omitempty"`
	ReachCount         int      `db:"reach_count" json:"reach_count"`
	SubscriberCount    int      `db:"subscriber_count" json:"subscriber_count"`
}

// ClassTaught is a simple tutor-owned list item, no lifecycle.
type ClassTaught struct {
	ID         string   `db:"id" json:"id"`
	TutorID    string   `db:"tutor_id" json:"tutor_id"`
	ClassRange string   `db:"class_range" json:"class_range"` // e.g. "7-8" or "1-5"
	Subjects   []string `db:"subjects" json:"subjects"`
}

// UpdateProfile defines what a tutor may change on their profile.
// Nil fields are left untouched. Name and ProfilePicture route to the
// owning User record, not the profile.
type UpdateProfile struct {
	Bio             *string   `json:"bio"`
	Subjects        *[]string `json:"subjects"`
	MonthlyFee      *float64  `json:"monthly_fee" validate:"omitempty,min=0"`
	Education       *string   `json:"education"`
	CoachingAddress *string   `json:"coaching_address"`
	ContactNumber   *string   `json:"contact_number"`
	CoachingPhoto   *string   `json:"coaching_photo"`
	TeachingDays    *[]string `json:"teaching_days"`
	HoursPerDay     *int      `json:"hours_per_day" validate:"omitempty,min=0,max=24"`
	Boards          *[]string `json:"boards"`
	Name            *string   `json:"name"`
	ProfilePicture  *string   `json:"profile_picture"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}

// VerificationProof is a tutor's verification submission.
// The proof image is optional; the phone number is not.
type VerificationProof struct {
	ProofImage  string `json:"proof_image"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

func (vp *VerificationProof) Validate(validate *validator.Validate) error {
	vp.PhoneNumber = core.CleanString(vp.PhoneNumber)
	return validate.Struct(vp)
}

// NewClass contains information needed to add a ClassTaught.
type NewClass struct {
	ClassRange string   `json:"class_range" validate:"required"`
	Subjects   []string `json:"subjects" validate:"required,min=1"`
}

func (nc *NewClass) Validate(validate *validator.Validate) error {
	nc.ClassRange = core.CleanString(nc.ClassRange)
	return validate.Struct(nc)
}

type (
	// Summary is the public listing entry: profile joined with its user,
	// classes and reviews.
	Summary struct {
		Profile
		User          user.User       `json:"user"`
		ClassesTaught []ClassTaught   `json:"classes_taught"`
		Reviews       []review.Review `json:"reviews"`
		AvgRating     float64         `json:"avg_rating"`
	}

	// ReviewDetail is a review with the reviewing student attached.
	ReviewDetail struct {
		review.Review
		Student user.User `json:"student"`
	}

	// Detail is the single-tutor view. Serving it bumps ReachCount by one:
	// an observable side effect of a read, intentional.
	Detail struct {
		Profile
		User          user.User      `json:"user"`
		ClassesTaught []ClassTaught  `json:"classes_taught"`
		Reviews       []ReviewDetail `json:"reviews"`
		AvgRating     float64        `json:"avg_rating"`
	}

	// ProfileWithUser is the admin verification-queue entry.
	ProfileWithUser struct {
		Profile
		User user.User `json:"user"`
	}

	// Banner is a public banner feed entry; only verified tutors appear.
	Banner struct {
		Banner    string `json:"banner"`
		TutorName string `json:"tutor_name"`
		TutorID   string `json:"tutor_id"`
	}

	// Stats is a tutor's own dashboard. TotalIncome is a point-in-time
	// estimate (active subscriptions x monthly fee), not a reconciled total.
	Stats struct {
		ReachCount      int     `json:"reach_count"`
		SubscriberCount int     `json:"subscriber_count"`
		TotalIncome     float64 `json:"total_income"`
	}
)
