package tutor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutormaven/backend/core/notification"
	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/tutor"
	"github.com/tutormaven/backend/core/user"
	testutil "github.com/tutormaven/backend/tests"
)

func Test_tutorService_CreateDefaultProfile(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)

	p, err := s.Tutors.GetProfile(tut.ID)
	require.NoError(t, err)
	assert.Equal(t, tut.ID, p.UserID)
	assert.False(t, p.IsVerified)
	// a fresh profile starts out rejected so the portal shows the
	// verification call to action
	assert.Equal(t, tutor.VerificationRejected, p.VerificationStatus)
}

func Test_tutorService_UpdateProfile(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)

	bio := "10 years teaching maths"
	fee := 1500.0
	subjects := []string{"Maths", "Physics"}
	name := "Mr. Tutor"
	p, err := s.Tutors.UpdateProfile(tut, tutor.UpdateProfile{
		Bio:        &bio,
		MonthlyFee: &fee,
		Subjects:   &subjects,
		Name:       &name,
	})
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)
	assert.Equal(t, fee, p.MonthlyFee)
	assert.Equal(t, subjects, p.Subjects)

	// name routes to the User record
	refreshed, err := s.Users.GetByID(tut.ID)
	require.NoError(t, err)
	assert.Equal(t, name, refreshed.Name)

	// nil fields stay untouched
	p, err = s.Tutors.UpdateProfile(tut, tutor.UpdateProfile{})
	require.NoError(t, err)
	assert.Equal(t, bio, p.Bio)
	assert.Equal(t, fee, p.MonthlyFee)
}

func Test_tutorService_verificationLifecycle(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	admin, err := s.Users.EnsureAdmin()
	require.NoError(t, err)

	// submission forces the status back to pending, badge untouched
	err = s.Tutors.SubmitVerification(tut, tutor.VerificationProof{ProofImage: "proof.jpg", PhoneNumber: "+243123456"})
	require.NoError(t, err)
	p, err := s.Tutors.GetProfile(tut.ID)
	require.NoError(t, err)
	assert.Equal(t, tutor.VerificationPending, p.VerificationStatus)
	assert.False(t, p.IsVerified)
	assert.Equal(t, "proof.jpg", p.VerificationProof)
	assert.Equal(t, "+243123456", p.VerificationPhone)

	// only admins judge submissions
	assert.Equal(t, user.ErrPermissionDenied, s.Tutors.ApproveVerification(tut, tut.ID))
	assert.Equal(t, user.ErrPermissionDenied, s.Tutors.RejectVerification(tut, tut.ID))

	// approval grants the badge and notifies
	require.NoError(t, s.Tutors.ApproveVerification(admin, tut.ID))
	p, err = s.Tutors.GetProfile(tut.ID)
	require.NoError(t, err)
	assert.True(t, p.IsVerified)
	assert.Equal(t, tutor.VerificationApproved, p.VerificationStatus)
	assert.Len(t, testutil.NotificationsOfType(t, s.Notifications, tut, notification.TypeVerificationApproved), 1)

	// a later rejection flips the status but the badge stays
	require.NoError(t, s.Tutors.RejectVerification(admin, tut.ID))
	p, err = s.Tutors.GetProfile(tut.ID)
	require.NoError(t, err)
	assert.True(t, p.IsVerified)
	assert.Equal(t, tutor.VerificationRejected, p.VerificationStatus)
	assert.Len(t, testutil.NotificationsOfType(t, s.Notifications, tut, notification.TypeVerificationRejected), 1)

	// re-submission goes back in the queue, badge still on
	require.NoError(t, s.Tutors.SubmitVerification(tut, tutor.VerificationProof{PhoneNumber: "+243123456"}))
	p, err = s.Tutors.GetProfile(tut.ID)
	require.NoError(t, err)
	assert.True(t, p.IsVerified)
	assert.Equal(t, tutor.VerificationPending, p.VerificationStatus)

	pending, err := s.Tutors.PendingVerifications(admin)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, tut.ID, pending[0].UserID)

	count, err := s.Tutors.CountPending()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func Test_tutorService_banners(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	admin, err := s.Users.EnsureAdmin()
	require.NoError(t, err)

	// unverified tutors cannot upload a banner
	err = s.Tutors.SetBanner(tut, "promo.png")
	assert.Equal(t, tutor.ErrNotVerified, err)

	require.NoError(t, s.Tutors.ApproveVerification(admin, tut.ID))
	require.NoError(t, s.Tutors.SetBanner(tut, "promo.png"))

	banners, err := s.Tutors.Banners()
	require.NoError(t, err)
	require.Len(t, banners, 1)
	assert.Equal(t, "promo.png", banners[0].Banner)
	assert.Equal(t, tut.ID, banners[0].TutorID)
	assert.Equal(t, tut.Name, banners[0].TutorName)
}

func Test_tutorService_Query(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Maths Tutor", "maths@test.cd", user.RoleTutor)
	tut2 := testutil.CreateUser(t, s.Users, "Bio Tutor", "bio@test.cd", user.RoleTutor)

	subjects := []string{"Maths"}
	_, err := s.Tutors.UpdateProfile(tut, tutor.UpdateProfile{Subjects: &subjects})
	require.NoError(t, err)
	subjects2 := []string{"Biology"}
	_, err = s.Tutors.UpdateProfile(tut2, tutor.UpdateProfile{Subjects: &subjects2})
	require.NoError(t, err)

	all, err := s.Tutors.Query("")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	maths, err := s.Tutors.Query("Maths")
	require.NoError(t, err)
	require.Len(t, maths, 1)
	assert.Equal(t, tut.ID, maths[0].UserID)
	assert.Equal(t, tut.Email, maths[0].User.Email)
}

// Serving the detail view bumps the reach counter by exactly one per call.
func Test_tutorService_Detail_bumpsReach(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)

	d, err := s.Tutors.Detail(tut.ID)
	require.NoError(t, err)
	// the returned snapshot predates its own bump
	assert.Equal(t, 0, d.ReachCount)

	d, err = s.Tutors.Detail(tut.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.ReachCount)

	p, err := s.Tutors.GetProfile(tut.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, p.ReachCount)
}

// The dashboard recomputes subscribers from active subscriptions; the cached
// counter (double-bumpable) is not consulted.
func Test_tutorService_Stats(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)

	fee := 1000.0
	_, err := s.Tutors.UpdateProfile(tut, tutor.UpdateProfile{MonthlyFee: &fee})
	require.NoError(t, err)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)
	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))
	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID)) // cached counter now reads 2

	stats, err := s.Tutors.Stats(tut)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.SubscriberCount)
	assert.Equal(t, 1000.0, stats.TotalIncome)

	_, err = s.Tutors.Stats(std)
	assert.Equal(t, user.ErrPermissionDenied, err)
}

func Test_tutorService_classes(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	other := testutil.CreateUser(t, s.Users, "Other", "other@test.cd", user.RoleTutor)

	c, err := s.Tutors.AddClass(tut, tutor.NewClass{ClassRange: "7-8", Subjects: []string{"Maths"}})
	require.NoError(t, err)
	assert.Equal(t, tut.ID, c.TutorID)

	classes, err := s.Tutors.QueryClasses(tut.ID)
	require.NoError(t, err)
	assert.Len(t, classes, 1)

	// deletion is scoped to the owning tutor
	assert.Equal(t, tutor.ErrClassNotFound, s.Tutors.DeleteClass(other, c.ID))
	require.NoError(t, s.Tutors.DeleteClass(tut, c.ID))

	classes, err = s.Tutors.QueryClasses(tut.ID)
	require.NoError(t, err)
	assert.Len(t, classes, 0)
}
