// Package inmemdb is a map-backed store used by tests and local development.
// A single lock guards all tables so cross-table operations (the user
// cascade delete) stay consistent.
package inmemdb

import (
	"sync"

	"github.com/tutormaven/backend/core/notification"
	"github.com/tutormaven/backend/core/review"
	"github.com/tutormaven/backend/core/student"
	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/tutor"
	"github.com/tutormaven/backend/core/user"
)

type DB struct {
	mu sync.RWMutex

	users           map[string]*user.User
	tutorProfiles   map[string]*tutor.Profile   // keyed by user id
	studentProfiles map[string]*student.Profile // keyed by user id
	classes         map[string]*tutor.ClassTaught
	subscriptions   map[string]*subscription.Subscription
	fees            map[string]*subscription.FeeRecord
	attendance      map[string]*subscription.AttendanceRecord
	reviews         map[string]*review.Review
	notifications   map[string]*notification.Notification
}

func Open() (*DB, error) {
	db := &DB{
		users:           make(map[string]*user.User),
		tutorProfiles:   make(map[string]*tutor.Profile),
		studentProfiles: make(map[string]*student.Profile),
		classes:         make(map[string]*tutor.ClassTaught),
		subscriptions:   make(map[string]*subscription.Subscription),
		fees:            make(map[string]*subscription.FeeRecord),
		attendance:      make(map[string]*subscription.AttendanceRecord),
		reviews:         make(map[string]*review.Review),
		notifications:   make(map[string]*notification.Notification),
	}
	return db, nil
}
