package user

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tutormaven/backend/core"
)

var (
	// errors
	ErrNotFound         = errors.New("user not found")
	ErrEmailExists      = errors.New("a user with this email already exists")
	ErrPermissionDenied = errors.New("permission denied")

	// AdminEmail is the single admin account; it is bootstrapped, never
	// registered.
	AdminEmail = "admin@tutormaven.com"

	adminName = "Admin"
)

type (
	Repository interface {
		CreateUser(usr User) (User, error)
		GetUserByID(id string) (User, error)
		GetUserByEmail(email string) (User, error)
		GetAdminUser() (User, error)
		QueryAllUsers() ([]User, error)
		// CountUsers counts users holding `role`; all users when role is empty.
		CountUsers(role string) (int, error)
		SetNameAndPicture(id, name, picture string) error
		// DeleteUserCascade removes the user and everything keyed to it:
		// profiles, subscriptions where it is either party, reviews where it
		// is either party, its notifications and its classes taught.
		// Fee/attendance rows of orphaned subscriptions are left behind.
		DeleteUserCascade(id string) error
	}

	// ProfileCreator seeds the role-specific profile at registration time.
	ProfileCreator interface {
		CreateDefaultProfile(userID string) error
	}

	Service struct {
		repo     Repository
		tutors   ProfileCreator
		students ProfileCreator
		conf     *core.Config
	}
)

func NewService(repo Repository, conf *core.Config) *Service {
	return &Service{repo: repo, conf: conf}
}

// SetProfileCreators wires the role profile factories. They are set after
// construction because the profile services also read users.
func (svc *Service) SetProfileCreators(tutors, students ProfileCreator) {
	svc.tutors = tutors
	svc.students = students
}

// Register creates a User and, for tutors and students, the matching
// default profile.
func (svc *Service) Register(nu NewUser) (User, error) {
	if _, err := svc.repo.GetUserByEmail(nu.Email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if err != ErrNotFound {
		return User{}, err
	}

	usr := User{
		ID:             uuid.NewString(),
		Email:          nu.Email,
		Name:           nu.Name,
		Role:           nu.Role,
		ProfilePicture: nu.ProfilePicture,
		CreatedAt:      time.Now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, err
	}

	switch usr.Role {
	case RoleTutor:
		err = svc.tutors.CreateDefaultProfile(usr.ID)
	case RoleStudent:
		err = svc.students.CreateDefaultProfile(usr.ID)
	}
	if err != nil {
		return User{}, err
	}
	return usr, nil
}

// Authenticate resolves an email/password pair to a User.
func (svc *Service) Authenticate(email, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
	if err != nil {
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrNotFound
	}
	return usr, nil
}

// EnsureAdmin returns the admin User, creating it on first admin login.
func (svc *Service) EnsureAdmin() (User, error) {
	usr, err := svc.repo.GetAdminUser()
	if err == nil {
		return usr, nil
	}
	if err != ErrNotFound {
		return User{}, err
	}

	usr = User{
		ID:        uuid.NewString(),
		Email:     AdminEmail,
		Name:      adminName,
		Role:      RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if err = usr.SetPassword(svc.conf.AdminPassword); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(usr)
}

func (svc *Service) GetByID(id string) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *Service) QueryAll(caller User) ([]User, error) {
	if !Authorize(caller.Principal(), RoleAdmin) {
		return nil, ErrPermissionDenied
	}
	return svc.repo.QueryAllUsers()
}

// UpdateBasics updates the User-owned display fields (name, picture);
// empty values are left untouched.
func (svc *Service) UpdateBasics(id, name, picture string) error {
	usr, err := svc.repo.GetUserByID(id)
	if err != nil {
		return err
	}
	if name == "" {
		name = usr.Name
	}
	if picture == "" {
		picture = usr.ProfilePicture
	}
	return svc.repo.SetNameAndPicture(id, name, picture)
}

// Delete cascades per Repository.DeleteUserCascade. Irreversible; admin only.
// Counterparties are not notified.
func (svc *Service) Delete(caller User, id string) error {
	if !Authorize(caller.Principal(), RoleAdmin) {
		return ErrPermissionDenied
	}
	if _, err := svc.repo.GetUserByID(id); err != nil {
		return err
	}
	return svc.repo.DeleteUserCascade(id)
}

func (svc *Service) Count(role string) (int, error) {
	return svc.repo.CountUsers(role)
}
