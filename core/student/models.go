package student

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/user"
)

// Profile is owned 1:1 by a student User. ParentCode is a capability token:
// possession alone grants a parent read access to the student's data, with
// no expiry or revocation. It is unique across all student profiles.
type Profile struct {
	ID                 string   `db:"id" json:"id"`
	UserID             string   `db:"user_id" json:"user_id"`
	SchoolName         string   `db:"school_name" json:"school_name,omitempty"`
	Board              string   `db:"board" json:"board,omitempty"` // CBSE, ICSE, STATE BOARD
	SubjectsInterested []string `db:"subjects_interested" json:"subjects_interested"`
	ParentCode         string   `db:"parent_code" json:"parent_code"`
}

// NewParentCode derives a short shareable code from a fresh uuid.
func NewParentCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// UpdateProfile defines what a student may change. Nil fields are left
// untouched; Name and ProfilePicture route to the User record.
type UpdateProfile struct {
	ProfilePicture     *string   `json:"profile_picture"`
	Name               *string   `json:"name"`
	SchoolName         *string   `json:"school_name"`
	Board              *string   `json:"board"`
	SubjectsInterested *[]string `json:"subjects_interested"`
}

func (up *UpdateProfile) Validate(validate *validator.Validate) error {
	return validate.Struct(up)
}

// ParentLogin is the capability-code credential.
type ParentLogin struct {
	ParentCode string `json:"parent_code" validate:"required"`
}

func (pl *ParentLogin) Validate(validate *validator.Validate) error {
	pl.ParentCode = strings.ToUpper(strings.TrimSpace(pl.ParentCode))
	return validate.Struct(pl)
}

// ParentView is the read-only aggregate a parent gets for the code.
type ParentView struct {
	Student       user.User                   `json:"student"`
	Profile       Profile                     `json:"student_profile"`
	Subscriptions []subscription.ParentDetail `json:"subscriptions"`
}
