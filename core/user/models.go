package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/tutormaven/backend/core"
)

// Roles
const (
	RoleTutor   = "tutor"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

var AllRoles = []string{RoleTutor, RoleStudent, RoleAdmin}

// Principal is the authenticated caller performing an operation.
type Principal struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// Authorize reports whether a principal holds the required role.
// Every lifecycle operation consults this before mutating state.
func Authorize(p Principal, required string) bool {
	return p.Role == required
}

type User struct {
	ID             string    `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	Name           string    `db:"name" json:"name"`
	Role           string    `db:"role" json:"role"`
	ProfilePicture string    `db:"profile_picture" json:"profile_picture,omitempty"`
	PasswordHash   []byte    `db:"password_hash" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"` // UTC
}

func (u User) Principal() Principal { return Principal{ID: u.ID, Role: u.Role} }

func (u User) IsTutor() bool   { return u.Role == RoleTutor }
func (u User) IsStudent() bool { return u.Role == RoleStudent }
func (u User) IsAdmin() bool   { return u.Role == RoleAdmin }

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

// NewUser contains information needed to register a new User.
// The role is fixed at registration and immutable thereafter.
type NewUser struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required"`
	Name           string `json:"name" validate:"required"`
	Role           string `json:"role" validate:"required,oneof=tutor student admin"`
	ProfilePicture string `json:"profile_picture"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Name = core.CleanString(nu.Name)
	return validate.Struct(nu)
}
