package subscription

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tutormaven/backend/core/notification"
	"github.com/tutormaven/backend/core/tutor"
	"github.com/tutormaven/backend/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("subscription not found")
	ErrAlreadySubscribed = errors.New("already subscribed or pending")
)

type (
	Repository interface {
		CreateSubscription(s Subscription) (Subscription, error)
		GetSubscriptionByID(id string) (Subscription, error)
		// ExistsForPair reports whether ANY subscription exists for the pair,
		// regardless of status.
		ExistsForPair(studentID, tutorID string) (bool, error)
		HasActiveSubscription(studentID, tutorID string) (bool, error)
		// ActivateSubscription sets status=active and stamps approved_at.
		ActivateSubscription(id string, approvedAt time.Time) error
		SetSubscriptionStatus(id, status string) error
		QuerySubscriptionsByStudent(studentID string) ([]Subscription, error)
		QuerySubscriptionsByTutor(tutorID string) ([]Subscription, error)
		QueryActiveByStudent(studentID string) ([]Subscription, error)
		QueryActiveSubscriptions() ([]Subscription, error)
		CountActiveSubscriptions() (int, error)
		CountActiveByTutor(tutorID string) (int, error)

		GetFeeRecord(subscriptionID string, month, year int) (FeeRecord, error)
		CreateFeeRecord(f FeeRecord) (FeeRecord, error)
		SetFeeStatus(id, status string, markedAt time.Time) error
		QueryFeeRecords(subscriptionID string) ([]FeeRecord, error)

		GetAttendanceRecord(subscriptionID, date string) (AttendanceRecord, error)
		CreateAttendanceRecord(a AttendanceRecord) (AttendanceRecord, error)
		SetAttendanceStatus(id, status string, markedAt time.Time) error
		QueryAttendanceRecords(subscriptionID string) ([]AttendanceRecord, error)
	}

	// ErrFeeNotFound / ErrAttendanceNotFound sentinels live on the repo side
	// of the natural-key upsert; see errors below.

	UserGetter interface {
		GetByID(id string) (user.User, error)
	}

	// ProfileGetter supplies tutor profiles for enriched listings.
	ProfileGetter interface {
		GetProfile(userID string) (tutor.Profile, error)
	}

	// SubscriberCounter bumps the tutor's cached subscriber counter.
	SubscriberCounter interface {
		IncrementSubscriberCount(userID string) error
	}

	Notifier interface {
		Notify(userID, typ, message string)
	}

	Service struct {
		repo     Repository
		users    UserGetter
		profiles ProfileGetter
		counters SubscriberCounter
		notifier Notifier
	}
)

var (
	ErrFeeNotFound        = errors.New("fee record not found")
	ErrAttendanceNotFound = errors.New("attendance record not found")
)

func NewService(repo Repository, users UserGetter, profiles ProfileGetter, counters SubscriberCounter, notifier Notifier) *Service {
	return &Service{repo: repo, users: users, profiles: profiles, counters: counters, notifier: notifier}
}

// Create requests a subscription to a tutor. Any existing subscription for
// the pair, whatever its status, blocks the request: re-subscription after a
// rejection is not supported.
//
// The existence check and the insert are two store operations; the race
// window between them is closed by the store's unique index on the pair
// where the backend supports one.
func (svc *Service) Create(caller user.User, ns NewSubscription) (Subscription, error) {
	if !user.Authorize(caller.Principal(), user.RoleStudent) {
		return Subscription{}, user.ErrPermissionDenied
	}

	exists, err := svc.repo.ExistsForPair(caller.ID, ns.TutorID)
	if err != nil {
		return Subscription{}, err
	}
	if exists {
		return Subscription{}, ErrAlreadySubscribed
	}

	sub, err := svc.repo.CreateSubscription(Subscription{
		ID:        uuid.NewString(),
		StudentID: caller.ID,
		TutorID:   ns.TutorID,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Subscription{}, err
	}

	svc.notifier.Notify(ns.TutorID, notification.TypeSubscriptionRequest,
		fmt.Sprintf("%s has requested to subscribe", caller.Name))
	return sub, nil
}

// Accept transitions pending -> active, stamps approved_at and bumps the
// tutor's subscriber counter. The bump is unconditional: accepting an
// already-active subscription double-increments the counter. A correct
// client never does that, but the behavior is load-bearing for the cached
// counter's semantics and is covered by a regression test.
func (svc *Service) Accept(caller user.User, id string) error {
	sub, err := svc.authorizeTutorTransition(caller, id)
	if err != nil {
		return err
	}

	if err = svc.repo.ActivateSubscription(sub.ID, time.Now().UTC()); err != nil {
		return err
	}
	if err = svc.counters.IncrementSubscriberCount(caller.ID); err != nil {
		return err
	}

	svc.notifier.Notify(sub.StudentID, notification.TypeSubscriptionAccepted,
		fmt.Sprintf("Your subscription request has been accepted by %s", caller.Name))
	return nil
}

// Reject transitions pending -> rejected. No counter change.
func (svc *Service) Reject(caller user.User, id string) error {
	sub, err := svc.authorizeTutorTransition(caller, id)
	if err != nil {
		return err
	}

	if err = svc.repo.SetSubscriptionStatus(sub.ID, StatusRejected); err != nil {
		return err
	}

	svc.notifier.Notify(sub.StudentID, notification.TypeSubscriptionRejected,
		fmt.Sprintf("Your subscription request has been rejected by %s", caller.Name))
	return nil
}

// authorizeTutorTransition loads the subscription and checks the caller is
// its tutor. A tutor mismatch surfaces as NotFound, not Forbidden, so a
// tutor cannot probe for other tutors' subscription ids.
func (svc *Service) authorizeTutorTransition(caller user.User, id string) (Subscription, error) {
	if !user.Authorize(caller.Principal(), user.RoleTutor) {
		return Subscription{}, user.ErrPermissionDenied
	}
	sub, err := svc.repo.GetSubscriptionByID(id)
	if err != nil {
		return Subscription{}, err
	}
	if sub.TutorID != caller.ID {
		return Subscription{}, ErrNotFound
	}
	return sub, nil
}

// ListFor returns the caller's subscriptions, each enriched with the
// counterpart party. A join, not a transition.
func (svc *Service) ListFor(caller user.User) ([]Detail, error) {
	if caller.IsTutor() {
		subs, err := svc.repo.QuerySubscriptionsByTutor(caller.ID)
		if err != nil {
			return nil, err
		}
		out := make([]Detail, 0, len(subs))
		for _, s := range subs {
			d := Detail{Subscription: s}
			if student, err := svc.users.GetByID(s.StudentID); err == nil {
				d.Student = &student
			}
			out = append(out, d)
		}
		return out, nil
	}

	subs, err := svc.repo.QuerySubscriptionsByStudent(caller.ID)
	if err != nil {
		return nil, err
	}
	out := make([]Detail, 0, len(subs))
	for _, s := range subs {
		d := Detail{Subscription: s}
		if tut, err := svc.users.GetByID(s.TutorID); err == nil {
			d.Tutor = &tut
		}
		if p, err := svc.profiles.GetProfile(s.TutorID); err == nil {
			d.TutorProfile = &p
		}
		out = append(out, d)
	}
	return out, nil
}

// MarkFee upserts the fee record for (subscription, month, year): the latest
// mark wins and re-stamps marked_at. Only an unpaid result notifies the
// student.
func (svc *Service) MarkFee(caller user.User, subscriptionID string, mf MarkFee) (FeeRecord, error) {
	sub, err := svc.authorizeTutorTransition(caller, subscriptionID)
	if err != nil {
		return FeeRecord{}, err
	}

	now := time.Now().UTC()
	rec, err := svc.repo.GetFeeRecord(sub.ID, mf.Month, mf.Year)
	switch err {
	case nil:
		if err = svc.repo.SetFeeStatus(rec.ID, mf.Status, now); err != nil {
			return FeeRecord{}, err
		}
		rec.Status = mf.Status
		rec.MarkedAt = now
	case ErrFeeNotFound:
		rec, err = svc.repo.CreateFeeRecord(FeeRecord{
			ID:             uuid.NewString(),
			SubscriptionID: sub.ID,
			Month:          mf.Month,
			Year:           mf.Year,
			Status:         mf.Status,
			MarkedAt:       now,
		})
		if err != nil {
			return FeeRecord{}, err
		}
	default:
		return FeeRecord{}, err
	}

	if mf.Status == FeeUnpaid {
		svc.notifier.Notify(sub.StudentID, notification.TypeFeeUnpaid,
			fmt.Sprintf("Your fee for %d/%d has been marked as unpaid by %s", mf.Month, mf.Year, caller.Name))
	}
	return rec, nil
}

// MarkAttendance upserts the attendance record for (subscription, date).
// No notification either way.
func (svc *Service) MarkAttendance(caller user.User, subscriptionID string, ma MarkAttendance) (AttendanceRecord, error) {
	sub, err := svc.authorizeTutorTransition(caller, subscriptionID)
	if err != nil {
		return AttendanceRecord{}, err
	}

	now := time.Now().UTC()
	rec, err := svc.repo.GetAttendanceRecord(sub.ID, ma.Date)
	switch err {
	case nil:
		if err = svc.repo.SetAttendanceStatus(rec.ID, ma.Status, now); err != nil {
			return AttendanceRecord{}, err
		}
		rec.Status = ma.Status
		rec.MarkedAt = now
	case ErrAttendanceNotFound:
		rec, err = svc.repo.CreateAttendanceRecord(AttendanceRecord{
			ID:             uuid.NewString(),
			SubscriptionID: sub.ID,
			Date:           ma.Date,
			Status:         ma.Status,
			MarkedAt:       now,
		})
		if err != nil {
			return AttendanceRecord{}, err
		}
	default:
		return AttendanceRecord{}, err
	}
	return rec, nil
}

// Fees returns a subscription's fee history; only its own student or tutor
// may read it (admins pass).
func (svc *Service) Fees(caller user.User, subscriptionID string) ([]FeeRecord, error) {
	sub, err := svc.authorizeRead(caller, subscriptionID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryFeeRecords(sub.ID)
}

// Attendance returns a subscription's attendance history; same scoping as Fees.
func (svc *Service) Attendance(caller user.User, subscriptionID string) ([]AttendanceRecord, error) {
	sub, err := svc.authorizeRead(caller, subscriptionID)
	if err != nil {
		return nil, err
	}
	return svc.repo.QueryAttendanceRecords(sub.ID)
}

func (svc *Service) authorizeRead(caller user.User, subscriptionID string) (Subscription, error) {
	sub, err := svc.repo.GetSubscriptionByID(subscriptionID)
	if err != nil {
		return Subscription{}, err
	}
	if caller.IsStudent() && sub.StudentID != caller.ID {
		return Subscription{}, user.ErrPermissionDenied
	}
	if caller.IsTutor() && sub.TutorID != caller.ID {
		return Subscription{}, user.ErrPermissionDenied
	}
	return sub, nil
}

// ParentDetailsForStudent assembles the parent-portal view: the student's
// active subscriptions, each with tutor identity, fees and attendance.
func (svc *Service) ParentDetailsForStudent(studentID string) ([]ParentDetail, error) {
	subs, err := svc.repo.QueryActiveByStudent(studentID)
	if err != nil {
		return nil, err
	}
	out := make([]ParentDetail, 0, len(subs))
	for _, s := range subs {
		d := ParentDetail{Subscription: s}
		if tut, err := svc.users.GetByID(s.TutorID); err == nil {
			d.Tutor = tut
		}
		if p, err := svc.profiles.GetProfile(s.TutorID); err == nil {
			d.TutorProfile = p
		}
		if d.Fees, err = svc.repo.QueryFeeRecords(s.ID); err != nil {
			return nil, err
		}
		if d.Attendance, err = svc.repo.QueryAttendanceRecords(s.ID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// AdminDetails assembles the admin-stats join over all active subscriptions.
func (svc *Service) AdminDetails(caller user.User) ([]AdminDetail, error) {
	if !user.Authorize(caller.Principal(), user.RoleAdmin) {
		return nil, user.ErrPermissionDenied
	}
	subs, err := svc.repo.QueryActiveSubscriptions()
	if err != nil {
		return nil, err
	}
	out := make([]AdminDetail, 0, len(subs))
	for _, s := range subs {
		d := AdminDetail{Subscription: s}
		if student, err := svc.users.GetByID(s.StudentID); err == nil {
			d.Student = student
		}
		if tut, err := svc.users.GetByID(s.TutorID); err == nil {
			d.Tutor = tut
		}
		if d.Fees, err = svc.repo.QueryFeeRecords(s.ID); err != nil {
			return nil, err
		}
		if d.Attendance, err = svc.repo.QueryAttendanceRecords(s.ID); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// CountActive is the active-subscription total for admin stats.
func (svc *Service) CountActive() (int, error) {
	return svc.repo.CountActiveSubscriptions()
}
