package review_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutormaven/backend/core/review"
	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/user"
	testutil "github.com/tutormaven/backend/tests"
)

func Test_reviewService_Create(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)
	stranger := testutil.CreateUser(t, s.Users, "Stranger", "stranger@test.cd", user.RoleStudent)

	// no active subscription yet
	_, err := s.Reviews.Create(std, review.NewReview{TutorID: tut.ID, Rating: 5})
	assert.Equal(t, user.ErrPermissionDenied, err)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)

	// pending is not enough
	_, err = s.Reviews.Create(std, review.NewReview{TutorID: tut.ID, Rating: 5})
	assert.Equal(t, user.ErrPermissionDenied, err)

	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))

	r, err := s.Reviews.Create(std, review.NewReview{TutorID: tut.ID, Rating: 4, Comment: "solid"})
	require.NoError(t, err)
	assert.Equal(t, std.ID, r.StudentID)
	assert.Equal(t, 4, r.Rating)

	// tutors never review, subscribed strangers neither
	_, err = s.Reviews.Create(tut, review.NewReview{TutorID: tut.ID, Rating: 1})
	assert.Equal(t, user.ErrPermissionDenied, err)
	_, err = s.Reviews.Create(stranger, review.NewReview{TutorID: tut.ID, Rating: 1})
	assert.Equal(t, user.ErrPermissionDenied, err)

	reviews, err := s.Reviews.QueryByTutor(tut.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func Test_reviewService_Delete(t *testing.T) {
	s := testutil.NewServices(t)
	tut := testutil.CreateUser(t, s.Users, "Tutor", "tutor@test.cd", user.RoleTutor)
	std := testutil.CreateUser(t, s.Users, "Student", "student@test.cd", user.RoleStudent)
	other := testutil.CreateUser(t, s.Users, "Other", "other@test.cd", user.RoleStudent)

	sub, err := s.Subscriptions.Create(std, subscription.NewSubscription{TutorID: tut.ID})
	require.NoError(t, err)
	require.NoError(t, s.Subscriptions.Accept(tut, sub.ID))
	r, err := s.Reviews.Create(std, review.NewReview{TutorID: tut.ID, Rating: 4})
	require.NoError(t, err)

	assert.Equal(t, review.ErrNotFound, s.Reviews.Delete(std, "nope"))
	// only the author deletes
	assert.Equal(t, user.ErrPermissionDenied, s.Reviews.Delete(other, r.ID))
	assert.Equal(t, user.ErrPermissionDenied, s.Reviews.Delete(tut, r.ID))

	require.NoError(t, s.Reviews.Delete(std, r.ID))
	reviews, err := s.Reviews.QueryByTutor(tut.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 0)
}

func TestAvgRating(t *testing.T) {
	tests := []struct {
		name    string
		ratings []int
		want    float64
	}{
		{name: "none", want: 0},
		{name: "one", ratings: []int{4}, want: 4},
		{name: "mean", ratings: []int{5, 4}, want: 4.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := make([]review.Review, 0, len(tt.ratings))
			for _, r := range tt.ratings {
				reviews = append(reviews, review.Review{Rating: r})
			}
			if got := review.AvgRating(reviews); got != tt.want {
				t.Errorf("AvgRating() = %v, want %v", got, tt.want)
			}
		})
	}
}
