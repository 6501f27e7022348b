// Package testutil provides shared fixtures for service and API tests: a
// fully wired service graph over the in-memory store, with email and error
// reporting stubbed out.
package testutil

import (
	"io"
	"log"
	"testing"

	"github.com/tutormaven/backend/core"
	"github.com/tutormaven/backend/core/notification"
	"github.com/tutormaven/backend/core/review"
	"github.com/tutormaven/backend/core/student"
	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/tutor"
	"github.com/tutormaven/backend/core/user"
	emailsvc "github.com/tutormaven/backend/services/email"
	logsvc "github.com/tutormaven/backend/services/logger"
	inmemdb "github.com/tutormaven/backend/storage/database/inmem"
)

type Services struct {
	Conf   *core.Config
	Logger core.Logger

	UserRepo         user.Repository
	TutorRepo        tutor.Repository
	StudentRepo      student.Repository
	SubscriptionRepo subscription.Repository
	ReviewRepo       review.Repository
	NotificationRepo notification.Repository

	Users         *user.Service
	Tutors        *tutor.Service
	Students      *student.Service
	Subscriptions *subscription.Service
	Reviews       *review.Service
	Notifications *notification.Service
}

// NewServices wires the whole service graph the way apps/api does, backed by
// a fresh in-memory store per test.
func NewServices(t *testing.T) *Services {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}

	conf := core.NewTestConfig()
	logger := logsvc.NewTestLogger(log.New(io.Discard, "TEST : ", log.LstdFlags))
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	s := &Services{
		Conf:             conf,
		Logger:           logger,
		UserRepo:         inmemdb.NewUserRepository(db),
		TutorRepo:        inmemdb.NewTutorRepository(db),
		StudentRepo:      inmemdb.NewStudentRepository(db),
		SubscriptionRepo: inmemdb.NewSubscriptionRepository(db),
		ReviewRepo:       inmemdb.NewReviewRepository(db),
		NotificationRepo: inmemdb.NewNotificationRepository(db),
	}

	s.Users = user.NewService(s.UserRepo, conf)
	s.Notifications = notification.NewService(s.NotificationRepo, s.Users, mailSvc, logger, conf)
	s.Reviews = review.NewService(s.ReviewRepo, s.SubscriptionRepo)
	s.Tutors = tutor.NewService(s.TutorRepo, s.Users, s.Users, s.Reviews, s.SubscriptionRepo, s.Notifications)
	s.Subscriptions = subscription.NewService(s.SubscriptionRepo, s.Users, s.Tutors, s.TutorRepo, s.Notifications)
	s.Students = student.NewService(s.StudentRepo, s.Users, s.Users, s.Subscriptions)
	s.Users.SetProfileCreators(s.Tutors, s.Students)
	return s
}

// CreateUser registers a user through the service so the role profile is
// seeded too. The password is always "pwd".
func CreateUser(t *testing.T, svc *user.Service, name, email, role string) user.User {
	t.Helper()
	usr, err := svc.Register(user.NewUser{
		Email:    email,
		Password: "pwd",
		Name:     name,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// NotificationsOfType filters a user's notifications down to one type.
func NotificationsOfType(t *testing.T, svc *notification.Service, usr user.User, typ string) []notification.Notification {
	t.Helper()
	all, err := svc.QueryForUser(usr)
	if err != nil {
		t.Fatalf("QueryForUser() failed: %v", err)
	}
	out := make([]notification.Notification, 0, len(all))
	for _, n := range all {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}
