package subscription_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutormaven/backend/core/notification"
	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/user"
	testutil "github.com/tutormaven/backend/tests"
)

func Test_subscriptionService_Create(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)

	// tutors cannot subscribe
	_, err := s.Subscriptions.Create(tut, subscription.NewSubscription{TutorID: tut.ID})
	assert.Equal(t, user.ErrPermissionDenied, err)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusPending, sub.Status)
	assert.Equal(t, std.ID, sub.StudentID)
	assert.Equal(t, tut.ID, sub.TutorID)
	assert.Nil(t, sub.ApprovedAt)

	// the tutor is notified of the request
	notifs := testutil.NotificationsOfType(t, s.Notifications, tut, notification.TypeSubscriptionRequest)
	require.Len(t, notifs, 1)
	assert.Contains(t, notifs[0].Message, std.Name)

	// a second request for the same pair conflicts while the first is pending
	_, err = s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	assert.Equal(t, subscription.ErrAlreadySubscribed, err)

	// ... and still conflicts once rejected: no re-subscription
	require.NoError(t, s.Subscriptions.Reject(tut, sub.ID))
	_, err = s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	assert.Equal(t, subscription.ErrAlreadySubscribed, err)
}

func Test_subscriptionService_Accept(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)

	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))

	refreshed, err := s.SubscriptionRepo.GetSubscriptionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, refreshed.Status)
	require.NotNil(t, refreshed.ApprovedAt)

	profile, err := s.Tutors.GetProfile(tut.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.SubscriberCount)

	notifs := testutil.NotificationsOfType(t, s.Notifications, std, notification.TypeSubscriptionAccepted)
	require.Len(t, notifs, 1)
	assert.Contains(t, notifs[0].Message, tut.Name)
}

// Accepting an already-active subscription bumps the cached counter again:
// the bump is unconditional and the counter is never recomputed.
func Test_subscriptionService_Accept_repeatBumpsCounterAgain(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)

	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))
	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))

	refreshed, err := s.SubscriptionRepo.GetSubscriptionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusActive, refreshed.Status)

	profile, err := s.Tutors.GetProfile(tut.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, profile.SubscriberCount)
}

func Test_subscriptionService_Reject(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)

	require.NoError(t, s.Subscriptions.Reject(tut, sub.ID))

	refreshed, err := s.SubscriptionRepo.GetSubscriptionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusRejected, refreshed.Status)
	assert.Nil(t, refreshed.ApprovedAt)

	// no counter change on rejection
	profile, err := s.Tutors.GetProfile(tut.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, profile.SubscriberCount)

	notifs := testutil.NotificationsOfType(t, s.Notifications, std, notification.TypeSubscriptionRejected)
	assert.Len(t, notifs, 1)
}

func Test_subscriptionService_transitionAuthorization(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	other := testutil.CreateUser(t, s.Users, "Other Tutor", "other@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)

	tests := []struct {
		name    string
		caller  user.User
		id      string
		wantErr error
	}{
		{name: "student cannot accept", caller: std, id: sub.ID, wantErr: user.ErrPermissionDenied},
		{name: "unknown subscription", caller: tut, id: "nope", wantErr: subscription.ErrNotFound},
		// another tutor probing the id gets NotFound, not Forbidden
		{name: "other tutor cannot accept", caller: other, id: sub.ID, wantErr: subscription.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Subscriptions.Accept(tt.caller, tt.id); err != tt.wantErr {
				t.Errorf("Accept() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err := s.Subscriptions.Reject(tt.caller, tt.id); err != tt.wantErr {
				t.Errorf("Reject() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	// nothing changed
	refreshed, err := s.SubscriptionRepo.GetSubscriptionByID(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusPending, refreshed.Status)
}

func Test_subscriptionService_MarkFee(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)
	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))

	rec, err := s.Subscriptions.MarkFee(tut, sub.ID, subscription.MarkFee{Month: 3, Year: 2025, Status: subscription.FeeUnpaid})
	require.NoError(t, err)
	assert.Equal(t, subscription.FeeUnpaid, rec.Status)

	// unpaid is the actionable outcome; the student hears about it
	notifs := testutil.NotificationsOfType(t, s.Notifications, std, notification.TypeFeeUnpaid)
	require.Len(t, notifs, 1)

	// re-marking the same month updates the row in place
	rec2, err := s.Subscriptions.MarkFee(tut, sub.ID, subscription.MarkFee{Month: 3, Year: 2025, Status: subscription.FeePaid})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, rec2.ID)
	assert.Equal(t, subscription.FeePaid, rec2.Status)
	assert.True(t, rec2.MarkedAt.After(rec.MarkedAt) || rec2.MarkedAt.Equal(rec.MarkedAt))

	// paid does not notify
	notifs = testutil.NotificationsOfType(t, s.Notifications, std, notification.TypeFeeUnpaid)
	assert.Len(t, notifs, 1)

	// a different month is a new row
	_, err = s.Subscriptions.MarkFee(tut, sub.ID, subscription.MarkFee{Month: 4, Year: 2025, Status: subscription.FeePaid})
	require.NoError(t, err)

	fees, err := s.Subscriptions.Fees(std, sub.ID)
	require.NoError(t, err)
	assert.Len(t, fees, 2)
}

func Test_subscriptionService_MarkAttendance(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)
	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))

	before, err := s.Notifications.QueryForUser(std)
	require.NoError(t, err)

	rec, err := s.Subscriptions.MarkAttendance(tut, sub.ID, subscription.MarkAttendance{Date: "2025-03-10", Status: subscription.Present})
	require.NoError(t, err)
	assert.Equal(t, subscription.Present, rec.Status)

	// correcting the same date updates the row in place
	rec2, err := s.Subscriptions.MarkAttendance(tut, sub.ID, subscription.MarkAttendance{Date: "2025-03-10", Status: subscription.Absent})
	require.NoError(t, err)
	assert.Equal(t, rec.ID, rec2.ID)
	assert.Equal(t, subscription.Absent, rec2.Status)

	_, err = s.Subscriptions.MarkAttendance(tut, sub.ID, subscription.MarkAttendance{Date: "2025-03-11", Status: subscription.Present})
	require.NoError(t, err)

	records, err := s.Subscriptions.Attendance(tut, sub.ID)
	require.NoError(t, err)
	assert.Len(t, records, 2)

	// attendance marks never notify
	after, err := s.Notifications.QueryForUser(std)
	require.NoError(t, err)
	assert.Len(t, after, len(before))
}

func Test_subscriptionService_readScoping(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)
	otherStd := testutil.CreateUser(t, s.Users, "Nosy Student", "nosy@test.cd", user.RoleStudent)
	otherTut := testutil.CreateUser(t, s.Users, "Nosy Tutor", "nosytutor@test.cd", user.RoleTutor)
	admin, err := s.Users.EnsureAdmin()
	require.NoError(t, err)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)
	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))
	_, err = s.Subscriptions.MarkFee(tut, sub.ID, subscription.MarkFee{Month: 1, Year: 2025, Status: subscription.FeePaid})
	require.NoError(t, err)

	tests := []struct {
		name    string
		caller  user.User
		wantErr error
	}{
		{name: "own student", caller: std},
		{name: "own tutor", caller: tut},
		{name: "admin", caller: admin},
		{name: "other student", caller: otherStd, wantErr: user.ErrPermissionDenied},
		{name: "other tutor", caller: otherTut, wantErr: user.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Subscriptions.Fees(tt.caller, sub.ID); err != tt.wantErr {
				t.Errorf("Fees() error = %v, wantErr %v", err, tt.wantErr)
			}
			if _, err := s.Subscriptions.Attendance(tt.caller, sub.ID); err != tt.wantErr {
				t.Errorf("Attendance() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_subscriptionService_ListFor(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)
	std2 := testutil.CreateUser(t, s.Users, "Student 2", "student2@test.cd", user.RoleStudent)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)
	_, err = s.Subscriptions.Create(std2, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)
	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))

	// a tutor sees the student party
	details, err := s.Subscriptions.ListFor(tut)
	require.NoError(t, err)
	require.Len(t, details, 2)
	for _, d := range details {
		require.NotNil(t, d.Student)
		assert.Nil(t, d.Tutor)
	}

	// a student sees the tutor party with its profile
	details, err = s.Subscriptions.ListFor(std)
	require.NoError(t, err)
	require.Len(t, details, 1)
	require.NotNil(t, details[0].Tutor)
	require.NotNil(t, details[0].TutorProfile)
	assert.Equal(t, tut.ID, details[0].Tutor.ID)
	assert.Nil(t, details[0].Student)
}
