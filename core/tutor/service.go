package tutor

import (
	"errors"

	"github.com/google/uuid"

	"github.com/tutormaven/backend/core/notification"
	"github.com/tutormaven/backend/core/review"
	"github.com/tutormaven/backend/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("tutor not found")
	ErrClassNotFound = errors.New("class not found")
	ErrNotVerified   = errors.New("only verified tutors can upload a banner")
)

type (
	Repository interface {
		CreateProfile(p Profile) (Profile, error)
		GetProfileByUserID(userID string) (Profile, error)
		// QueryProfiles lists profiles teaching `subject`; all when empty.
		QueryProfiles(subject string) ([]Profile, error)
		QueryPendingVerifications() ([]Profile, error)
		CountPendingVerifications() (int, error)
		// UpdateProfileFields persists the non-nil profile fields of `up`.
		UpdateProfileFields(userID string, up UpdateProfile) (Profile, error)
		// SetVerificationSubmission stores proof+phone and forces the
		// verification status back to pending.
		SetVerificationSubmission(userID, proof, phone string) error
		// ApproveVerification sets is_verified and status=approved.
		ApproveVerification(userID string) error
		SetVerificationStatus(userID, status string) error
		SetBanner(userID, banner string) error
		// QueryBanners returns verified profiles with a non-empty banner.
		QueryBanners() ([]Profile, error)
		// Counter updates must be atomic in the store (x = x + 1), never
		// read-modify-write in handler code.
		IncrementReachCount(userID string) error
		IncrementSubscriberCount(userID string) error

		CreateClass(c ClassTaught) (ClassTaught, error)
		QueryClassesByTutor(tutorID string) ([]ClassTaught, error)
		DeleteClass(id, tutorID string) error
	}

	// UserGetter resolves the user half of tutor aggregates.
	UserGetter interface {
		GetByID(id string) (user.User, error)
	}

	// UserUpdater routes name/profile-picture profile edits to the User record.
	UserUpdater interface {
		UpdateBasics(id, name, picture string) error
	}

	// ReviewLister supplies reviews for aggregate views.
	ReviewLister interface {
		QueryByTutor(tutorID string) ([]review.Review, error)
	}

	// ActiveSubscriptionCounter counts a tutor's active subscriptions for the
	// stats view; the cached SubscriberCount is display-only there.
	ActiveSubscriptionCounter interface {
		CountActiveByTutor(tutorID string) (int, error)
	}

	// Notifier is the best-effort notification fan-out.
	Notifier interface {
		Notify(userID, typ, message string)
	}

	Service struct {
		repo     Repository
		users    UserGetter
		basics   UserUpdater
		reviews  ReviewLister
		subs     ActiveSubscriptionCounter
		notifier Notifier
	}
)

func NewService(repo Repository, users UserGetter, basics UserUpdater, reviews ReviewLister, subs ActiveSubscriptionCounter, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, basics: basics, reviews: reviews, subs: subs, notifier: notifier}
}

// CreateDefaultProfile seeds the profile at registration.
// The verification status starts out rejected so the portal shows the
// "get verified" call to action.
func (svc *Service) CreateDefaultProfile(userID string) error {
	_, err := svc.repo.CreateProfile(Profile{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Subjects:           []string{},
		TeachingDays:       []string{},
		Boards:             []string{},
		VerificationStatus: VerificationRejected,
	})
	return err
}

func (svc *Service) GetProfile(userID string) (Profile, error) {
	return svc.repo.GetProfileByUserID(userID)
}

// UpdateProfile applies a tutor's own profile edits. Name and picture are
// User fields and are routed there.
func (svc *Service) UpdateProfile(caller user.User, up UpdateProfile) (Profile, error) {
	if !user.Authorize(caller.Principal(), user.RoleTutor) {
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

// SubmitVerification stores the proof and forces the status back to pending,
// whatever it was before. IsVerified is untouched here; only approval ever
// sets it.
func (svc *Service) SubmitVerification(caller user.User, proof VerificationProof) error {
	if !user.Authorize(caller.Principal(), user.RoleTutor) {
		return user.ErrPermissionDenied
	}
	if _, err := svc.repo.GetProfileByUserID(caller.ID); err != nil {
		return err
	}
	return svc.repo.SetVerificationSubmission(caller.ID, proof.ProofImage, proof.PhoneNumber)
}

// ApproveVerification grants the verified badge. Re-approving an approved
// tutor is a state-wise no-op.
func (svc *Service) ApproveVerification(caller user.User, userID string) error {
	if !user.Authorize(caller.Principal(), user.RoleAdmin) {
		return user.ErrPermissionDenied
	}
	if _, err := svc.repo.GetProfileByUserID(userID); err != nil {
		return err
	}
	if err := svc.repo.ApproveVerification(userID); err != nil {
		return err
	}
	svc.notifier.Notify(userID, notification.TypeVerificationApproved,
		"Your verification has been approved! You now have a verified badge.")
	return nil
}

// RejectVerification flips the status to rejected. A previously granted
// verified badge is NOT revoked: a verified-then-re-rejected tutor keeps it.
func (svc *Service) RejectVerification(caller user.User, userID string) error {
	if !user.Authorize(caller.Principal(), user.RoleAdmin) {
		return user.ErrPermissionDenied
	}
	if _, err := svc.repo.GetProfileByUserID(userID); err != nil {
		return err
	}
	if err := svc.repo.SetVerificationStatus(userID, VerificationRejected); err != nil {
		return err
	}
	svc.notifier.Notify(userID, notification.TypeVerificationRejected,
		"Your verification has been rejected. Please try again with valid proof.")
	return nil
}

// PendingVerifications is the admin review queue.
func (svc *Service) PendingVerifications(caller user.User) ([]ProfileWithUser, error) {
	if !user.Authorize(caller.Principal(), user.RoleAdmin) {
		return nil, user.ErrPermissionDenied
	}
	profiles, err := svc.repo.QueryPendingVerifications()
	if err != nil {
		return nil, err
	}
	out := make([]ProfileWithUser, 0, len(profiles))
	for _, p := range profiles {
		usr, err := svc.users.GetByID(p.UserID)
		if err != nil {
			continue // user gone; skip the orphan profile
		}
		out = append(out, ProfileWithUser{Profile: p, User: usr})
	}
	return out, nil
}

// CountPending is the size of the admin review queue, for dashboards.
func (svc *Service) CountPending() (int, error) {
	return svc.repo.CountPendingVerifications()
}

// SetBanner uploads a promo banner; gated on the verified badge.
func (svc *Service) SetBanner(caller user.User, banner string) error {
	if !user.Authorize(caller.Principal(), user.RoleTutor) {
		return user.ErrPermissionDenied
	}
	p, err := svc.repo.GetProfileByUserID(caller.ID)
	if err != nil {
		return err
	}
	if !p.IsVerified {
		return ErrNotVerified
	}
	return svc.repo.SetBanner(caller.ID, banner)
}

// Banners is the public banner feed; verified tutors only.
func (svc *Service) Banners() ([]Banner, error) {
	profiles, err := svc.repo.QueryBanners()
	if err != nil {
		return nil, err
	}
	out := make([]Banner, 0, len(profiles))
	for _, p := range profiles {
		usr, err := svc.users.GetByID(p.UserID)
		if err != nil {
			continue
		}
		out = append(out, Banner{Banner: p.VerificationBanner, TutorName: usr.Name, TutorID: p.UserID})
	}
	return out, nil
}

// Query lists tutors (optionally by subject), each joined with its user,
// classes, reviews and average rating.
func (svc *Service) Query(subject string) ([]Summary, error) {
	profiles, err := svc.repo.QueryProfiles(subject)
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(profiles))
	for _, p := range profiles {
		usr, err := svc.users.GetByID(p.UserID)
		if err != nil {
			continue
		}
		classes, err := svc.repo.QueryClassesByTutor(p.UserID)
		if err != nil {
			return nil, err
		}
		reviews, err := svc.reviews.QueryByTutor(p.UserID)
		if err != nil {
			return nil, err
		}
		out = append(out, Summary{
			Profile:       p,
			User:          usr,
			ClassesTaught: classes,
			Reviews:       reviews,
			AvgRating:     review.AvgRating(reviews),
		})
	}
	return out, nil
}

// Detail assembles the single-tutor view and bumps the reach counter by
// exactly one. The bump is intentional: reach is "how often was this profile
// opened", so this read is not pure.
func (svc *Service) Detail(tutorID string) (Detail, error) {
	p, err := svc.repo.GetProfileByUserID(tutorID)
	if err != nil {
		return Detail{}, err
	}
	usr, err := svc.users.GetByID(tutorID)
	if err != nil {
		return Detail{}, ErrNotFound
	}
	classes, err := svc.repo.QueryClassesByTutor(tutorID)
	if err != nil {
		return Detail{}, err
	}
	reviews, err := svc.reviews.QueryByTutor(tutorID)
	if err != nil {
		return Detail{}, err
	}

	details := make([]ReviewDetail, 0, len(reviews))
	for _, r := range reviews {
		student, err := svc.users.GetByID(r.StudentID)
		if err != nil && err != user.ErrNotFound {
			return Detail{}, err
		}
		details = append(details, ReviewDetail{Review: r, Student: student})
	}

	if err = svc.repo.IncrementReachCount(tutorID); err != nil {
		return Detail{}, err
	}

	return Detail{
		Profile:       p,
		User:          usr,
		ClassesTaught: classes,
		Reviews:       details,
		AvgRating:     review.AvgRating(reviews),
	}, nil
}

// Stats is the tutor's own dashboard. The subscriber total is recomputed
// from active subscriptions rather than read from the cached counter.
func (svc *Service) Stats(caller user.User) (Stats, error) {
	if !user.Authorize(caller.Principal(), user.RoleTutor) {
		return Stats{}, user.ErrPermissionDenied
	}
	p, err := svc.repo.GetProfileByUserID(caller.ID)
	if err != nil {
		return Stats{}, err
	}
	active, err := svc.subs.CountActiveByTutor(caller.ID)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		ReachCount:      p.ReachCount,
		SubscriberCount: active,
		TotalIncome:     float64(active) * p.MonthlyFee,
	}, nil
}

// AddClass appends a ClassTaught row for the calling tutor.
func (svc *Service) AddClass(caller user.User, nc NewClass) (ClassTaught, error) {
	if !user.Authorize(caller.Principal(), user.RoleTutor) {
		return ClassTaught{}, user.ErrPermissionDenied
	}
	return svc.repo.CreateClass(ClassTaught{
		ID:         uuid.NewString(),
		TutorID:    caller.ID,
		ClassRange: nc.ClassRange,
		Subjects:   nc.Subjects,
	})
}

func (svc *Service) QueryClasses(tutorID string) ([]ClassTaught, error) {
	return svc.repo.QueryClassesByTutor(tutorID)
}

// DeleteClass removes a class row; scoped to the calling tutor's own rows.
func (svc *Service) DeleteClass(caller user.User, id string) error {
	if !user.Authorize(caller.Principal(), user.RoleTutor) {
		return user.ErrPermissionDenied
	}
	return svc.repo.DeleteClass(id, caller.ID)
}
