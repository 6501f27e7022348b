package review

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/tutormaven/backend/core/user"
)

var ErrNotFound = errors.New("review not found")

type (
	Repository interface {
		CreateReview(r Review) (Review, error)
		GetReviewByID(id string) (Review, error)
		QueryReviewsByTutor(tutorID string) ([]Review, error)
		DeleteReview(id string) error
	}

	// SubscriptionChecker reports whether a student currently holds an
	// active subscription with a tutor.
	SubscriptionChecker interface {
		HasActiveSubscription(studentID, tutorID string) (bool, error)
	}

	Service struct {
		repo Repository
		subs SubscriptionChecker
	}
)

func NewService(repo Repository, subs SubscriptionChecker) *Service {
	return &Service{repo: repo, subs: subs}
}

// Create posts a review. The author must be a student holding an active
// subscription with the tutor at call time; this is not re-checked afterward.
func (svc *Service) Create(caller user.User, nr NewReview) (Review, error) {
	if !user.Authorize(caller.Principal(), user.RoleStudent) {
		return Review{}, user.ErrPermissionDenied
	}
	active, err := svc.subs.HasActiveSubscription(caller.ID, nr.TutorID)
	if err != nil {
		return Review{}, err
	}
	if !active {
		return Review{}, user.ErrPermissionDenied
	}

	r := Review{
		ID:        uuid.NewString(),
		StudentID: caller.ID,
		TutorID:   nr.TutorID,
		Rating:    nr.Rating,
		Comment:   nr.Comment,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateReview(r)
}

// Delete removes a review; only the authoring student may do so.
func (svc *Service) Delete(caller user.User, id string) error {
	r, err := svc.repo.GetReviewByID(id)
	if err != nil {
		return err
	}
	if r.StudentID != caller.ID {
		return user.ErrPermissionDenied
	}
	return svc.repo.DeleteReview(id)
}

func (svc *Service) QueryByTutor(tutorID string) ([]Review, error) {
	return svc.repo.QueryReviewsByTutor(tutorID)
}
