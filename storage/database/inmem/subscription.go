package inmemdb

import (
	"sort"
	"time"

	"github.com/tutormaven/backend/core/subscription"
)

type subscriptionRepository struct {
	db *DB
}

var _ subscription.Repository = (*subscriptionRepository)(nil) // interface compliance check

func NewSubscriptionRepository(db *DB) subscription.Repository {
	return &subscriptionRepository{db: db}
}

func (repo *subscriptionRepository) CreateSubscription(s subscription.Subscription) (subscription.Subscription, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, existing := range repo.db.subscriptions {
		if existing.StudentID == s.StudentID && existing.TutorID == s.TutorID {
			return subscription.Subscription{}, subscription.ErrAlreadySubscribed
		}
	}
	repo.db.subscriptions[s.ID] = &s
	return s, nil
}

func (repo *subscriptionRepository) GetSubscriptionByID(id string) (subscription.Subscription, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.subscriptions[id]; ok {
		return *s, nil
	}
	return subscription.Subscription{}, subscription.ErrNotFound
}

func (repo *subscriptionRepository) ExistsForPair(studentID, tutorID string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.subscriptions {
		if s.StudentID == studentID && s.TutorID == tutorID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *subscriptionRepository) HasActiveSubscription(studentID, tutorID string) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, s := range repo.db.subscriptions {
		if s.StudentID == studentID && s.TutorID == tutorID && s.Status == subscription.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (repo *subscriptionRepository) ActivateSubscription(id string, approvedAt time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s, ok := repo.db.subscriptions[id]
	if !ok {
		return subscription.ErrNotFound
	}
	s.Status = subscription.StatusActive
	s.ApprovedAt = &approvedAt
	return nil
}

func (repo *subscriptionRepository) SetSubscriptionStatus(id, status string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	s, ok := repo.db.subscriptions[id]
	if !ok {
		return subscription.ErrNotFound
	}
	s.Status = status
	return nil
}

func (repo *subscriptionRepository) query(match func(*subscription.Subscription) bool) []subscription.Subscription {
	var subs []subscription.Subscription
	for _, s := range repo.db.subscriptions {
		if match(s) {
			subs = append(subs, *s)
		}
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].CreatedAt.After(subs[j].CreatedAt) })
	return subs
}

func (repo *subscriptionRepository) QuerySubscriptionsByStudent(studentID string) ([]subscription.Subscription, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(func(s *subscription.Subscription) bool { return s.StudentID == studentID }), nil
}

func (repo *subscriptionRepository) QuerySubscriptionsByTutor(tutorID string) ([]subscription.Subscription, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(func(s *subscription.Subscription) bool { return s.TutorID == tutorID }), nil
}

func (repo *subscriptionRepository) QueryActiveByStudent(studentID string) ([]subscription.Subscription, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(func(s *subscription.Subscription) bool {
		return s.StudentID == studentID && s.Status == subscription.StatusActive
	}), nil
}

func (repo *subscriptionRepository) QueryActiveSubscriptions() ([]subscription.Subscription, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(func(s *subscription.Subscription) bool { return s.Status == subscription.StatusActive }), nil
}

func (repo *subscriptionRepository) CountActiveSubscriptions() (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var n int
	for _, s := range repo.db.subscriptions {
		if s.Status == subscription.StatusActive {
			n++
		}
	}
	return n, nil
}

func (repo *subscriptionRepository) CountActiveByTutor(tutorID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var n int
	for _, s := range repo.db.subscriptions {
		if s.TutorID == tutorID && s.Status == subscription.StatusActive {
			n++
		}
	}
	return n, nil
}

func (repo *subscriptionRepository) GetFeeRecord(subscriptionID string, month, year int) (subscription.FeeRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, f := range repo.db.fees {
		if f.SubscriptionID == subscriptionID && f.Month == month && f.Year == year {
			return *f, nil
		}
	}
	return subscription.FeeRecord{}, subscription.ErrFeeNotFound
}

func (repo *subscriptionRepository) CreateFeeRecord(f subscription.FeeRecord) (subscription.FeeRecord, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.fees[f.ID] = &f
	return f, nil
}

func (repo *subscriptionRepository) SetFeeStatus(id, status string, markedAt time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	f, ok := repo.db.fees[id]
	if !ok {
		return subscription.ErrFeeNotFound
	}
	f.Status = status
	f.MarkedAt = markedAt
	return nil
}

func (repo *subscriptionRepository) QueryFeeRecords(subscriptionID string) ([]subscription.FeeRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	fees := make([]subscription.FeeRecord, 0)
	for _, f := range repo.db.fees {
		if f.SubscriptionID == subscriptionID {
			fees = append(fees, *f)
		}
	}
	sort.Slice(fees, func(i, j int) bool {
		if fees[i].Year != fees[j].Year {
			return fees[i].Year < fees[j].Year
		}
		return fees[i].Month < fees[j].Month
	})
	return fees, nil
}

func (repo *subscriptionRepository) GetAttendanceRecord(subscriptionID, date string) (subscription.AttendanceRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, a := range repo.db.attendance {
		if a.SubscriptionID == subscriptionID && a.Date == date {
			return *a, nil
		}
	}
	return subscription.AttendanceRecord{}, subscription.ErrAttendanceNotFound
}

func (repo *subscriptionRepository) CreateAttendanceRecord(a subscription.AttendanceRecord) (subscription.AttendanceRecord, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.attendance[a.ID] = &a
	return a, nil
}

func (repo *subscriptionRepository) SetAttendanceStatus(id, status string, markedAt time.Time) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	a, ok := repo.db.attendance[id]
	if !ok {
		return subscription.ErrAttendanceNotFound
	}
	a.Status = status
	a.MarkedAt = markedAt
	return nil
}

func (repo *subscriptionRepository) QueryAttendanceRecords(subscriptionID string) ([]subscription.AttendanceRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := make([]subscription.AttendanceRecord, 0)
	for _, a := range repo.db.attendance {
		if a.SubscriptionID == subscriptionID {
			records = append(records, *a)
		}
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records, nil
}
