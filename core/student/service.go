package student

import (
	"errors"

	"github.com/google/uuid"

	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("student profile not found")
	ErrInvalidParentCode = errors.New("invalid parent code")
)

type (
	Repository interface {
		CreateProfile(p Profile) (Profile, error)
		GetProfileByUserID(userID string) (Profile, error)
		GetProfileByParentCode(code string) (Profile, error)
		// UpdateProfileFields persists the non-nil profile fields of `up`.
		UpdateProfileFields(userID string, up UpdateProfile) (Profile, error)
	}

	// UserGetter resolves the student half of the parent view.
	UserGetter interface {
		GetByID(id string) (user.User, error)
	}

	// UserUpdater routes name/profile-picture profile edits to the User record.
	UserUpdater interface {
		UpdateBasics(id, name, picture string) error
	}

	// ParentAggregator assembles the per-subscription history a parent sees.
	ParentAggregator interface {
		ParentDetailsForStudent(studentID string) ([]subscription.ParentDetail, error)
	}

	Service struct {
		repo   Repository
		users  UserGetter
		basics UserUpdater
		subs   ParentAggregator
	}
)

func NewService(repo Repository, users UserGetter, basics UserUpdater, subs ParentAggregator) *Service {
	return &Service{repo: repo, users: users, basics: basics, subs: subs}
}

// CreateDefaultProfile seeds the profile at registration, minting the parent
// code once. The code never rotates afterwards.
func (svc *Service) CreateDefaultProfile(userID string) error {
	_, err := svc.repo.CreateProfile(Profile{
		ID:                 uuid.NewString(),
		UserID:             userID,
		SubjectsInterested: []string{},
		ParentCode:         NewParentCode(),
	})
	return err
}

func (svc *Service) GetProfile(userID string) (Profile, error) {
	return svc.repo.GetProfileByUserID(userID)
}

// UpdateProfile applies a student's own profile edits. Name and picture are
// User fields and are routed there.
func (svc *Service) UpdateProfile(caller user.User, up UpdateProfile) (Profile, error) {
	if !user.Authorize(caller.Principal(), user.RoleStudent) {
		return Profile{}, user.ErrPermissionDenied
	}

	var name, picture string
	if up.Name != nil {
		name = *up.Name
	}
	if up.ProfilePicture != nil {
		picture = *up.ProfilePicture
	}
	if name != "" || picture != "" {
		if err := svc.basics.UpdateBasics(caller.ID, name, picture); err != nil {
			return Profile{}, err
		}
	}
	return svc.repo.UpdateProfileFields(caller.ID, up)
}

// ParentPortal resolves a parent code to the student's full read-only view.
// The code is the whole credential; an unknown one is indistinguishable from
// a revoked one and surfaces as ErrInvalidParentCode.
func (svc *Service) ParentPortal(code string) (ParentView, error) {
	p, err := svc.repo.GetProfileByParentCode(code)
	if err != nil {
		if err == ErrNotFound {
			return ParentView{}, ErrInvalidParentCode
		}
		return ParentView{}, err
	}
	usr, err := svc.users.GetByID(p.UserID)
	if err != nil {
		return ParentView{}, ErrInvalidParentCode
	}
	details, err := svc.subs.ParentDetailsForStudent(p.UserID)
	if err != nil {
		return ParentView{}, err
	}
	return ParentView{Student: usr, Profile: p, Subscriptions: details}, nil
}
