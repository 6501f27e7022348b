package sqlxrepos

import (
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/subscription"
)

const (
	subscriptionTable = "subscription"
	feeRecordTable    = "fee_record"
	attendanceTable   = "attendance_record"
)

var (
	subscriptionColumns = []string{"id", "student_id", "tutor_id", "status", "created_at", "approved_at"}
	feeRecordColumns    = []string{"id", "subscription_id", "month", "year", "status", "marked_at"}
	attendanceColumns   = []string{"id", "subscription_id", "date", "status", "marked_at"}
)

type subscriptionRepository struct {
	db *sqlx.DB
}

var _ subscription.Repository = (*subscriptionRepository)(nil) // interface compliance check

func NewSubscriptionRepository(db *sqlx.DB) subscription.Repository {
	return &subscriptionRepository{db: db}
}

func (repo *subscriptionRepository) CreateSubscription(s subscription.Subscription) (subscription.Subscription, error) {
	q, args, err := psql.Insert(subscriptionTable).
		Columns(subscriptionColumns...).
		Values(s.ID, s.StudentID, s.TutorID, s.Status, s.CreatedAt, s.ApprovedAt).
		ToSql()
	if err != nil {
		return subscription.Subscription{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		// unique (student_id, tutor_id) closes the check-then-insert race
		if pqErr, ok := errors.Cause(err).(interface{ SQLState() string }); ok && pqErr.SQLState() == "23505" {
			return subscription.Subscription{}, subscription.ErrAlreadySubscribed
		}
		return subscription.Subscription{}, errors.Wrap(err, "creating subscription")
	}
	return s, nil
}

func (repo *subscriptionRepository) GetSubscriptionByID(id string) (subscription.Subscription, error) {
	q, args, err := psql.Select(subscriptionColumns...).From(subscriptionTable).Where("id = ?", id).ToSql()
	if err != nil {
		return subscription.Subscription{}, errors.Wrap(err, "building query")
	}
	var s subscription.Subscription
	if err = repo.db.Get(&s, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return subscription.Subscription{}, subscription.ErrNotFound
		}
		return subscription.Subscription{}, errors.Wrap(err, "getting subscription")
	}
	return s, nil
}

func (repo *subscriptionRepository) exists(pred interface{}, args ...interface{}) (bool, error) {
	q, qargs, err := psql.Select("COUNT(*)").From(subscriptionTable).Where(pred, args...).ToSql()
	if err != nil {
		return false, errors.Wrap(err, "building query")
	}
	var n int
	if err = repo.db.Get(&n, q, qargs...); err != nil {
		return false, errors.Wrap(err, "checking subscription")
	}
	return n > 0, nil
}

func (repo *subscriptionRepository) ExistsForPair(studentID, tutorID string) (bool, error) {
	return repo.exists(sq.Eq{"student_id": studentID, "tutor_id": tutorID})
}

func (repo *subscriptionRepository) HasActiveSubscription(studentID, tutorID string) (bool, error) {
	return repo.exists(sq.Eq{"student_id": studentID, "tutor_id": tutorID, "status": subscription.StatusActive})
}

func (repo *subscriptionRepository) ActivateSubscription(id string, approvedAt time.Time) error {
	q, args, err := psql.Update(subscriptionTable).
		Set("status", subscription.StatusActive).
		Set("approved_at", approvedAt).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return errors.Wrap(err, "activating subscription")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subscription.ErrNotFound
	}
	return nil
}

func (repo *subscriptionRepository) SetSubscriptionStatus(id, status string) error {
	q, args, err := psql.Update(subscriptionTable).Set("status", status).Where("id = ?", id).ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return errors.Wrap(err, "updating subscription")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subscription.ErrNotFound
	}
	return nil
}

func (repo *subscriptionRepository) selectSubscriptions(pred interface{}, args ...interface{}) ([]subscription.Subscription, error) {
	builder := psql.Select(subscriptionColumns...).From(subscriptionTable).OrderBy("created_at DESC")
	if pred != nil {
		builder = builder.Where(pred, args...)
	}
	q, qargs, err := builder.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	subs := make([]subscription.Subscription, 0)
	if err = repo.db.Select(&subs, q, qargs...); err != nil {
		return nil, errors.Wrap(err, "querying subscriptions")
	}
	return subs, nil
}

func (repo *subscriptionRepository) QuerySubscriptionsByStudent(studentID string) ([]subscription.Subscription, error) {
	return repo.selectSubscriptions("student_id = ?", studentID)
}

func (repo *subscriptionRepository) QuerySubscriptionsByTutor(tutorID string) ([]subscription.Subscription, error) {
	return repo.selectSubscriptions("tutor_id = ?", tutorID)
}

func (repo *subscriptionRepository) QueryActiveByStudent(studentID string) ([]subscription.Subscription, error) {
	return repo.selectSubscriptions(sq.Eq{"student_id": studentID, "status": subscription.StatusActive})
}

func (repo *subscriptionRepository) QueryActiveSubscriptions() ([]subscription.Subscription, error) {
	return repo.selectSubscriptions(sq.Eq{"status": subscription.StatusActive})
}

func (repo *subscriptionRepository) count(pred interface{}, args ...interface{}) (int, error) {
	q, qargs, err := psql.Select("COUNT(*)").From(subscriptionTable).Where(pred, args...).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var n int
	if err = repo.db.Get(&n, q, qargs...); err != nil {
		return 0, errors.Wrap(err, "counting subscriptions")
	}
	return n, nil
}

func (repo *subscriptionRepository) CountActiveSubscriptions() (int, error) {
	return repo.count(sq.Eq{"status": subscription.StatusActive})
}

func (repo *subscriptionRepository) CountActiveByTutor(tutorID string) (int, error) {
	return repo.count(sq.Eq{"tutor_id": tutorID, "status": subscription.StatusActive})
}

func (repo *subscriptionRepository) GetFeeRecord(subscriptionID string, month, year int) (subscription.FeeRecord, error) {
	q, args, err := psql.Select(feeRecordColumns...).From(feeRecordTable).
		Where(sq.Eq{"subscription_id": subscriptionID, "month": month, "year": year}).
		ToSql()
	if err != nil {
		return subscription.FeeRecord{}, errors.Wrap(err, "building query")
	}
	var f subscription.FeeRecord
	if err = repo.db.Get(&f, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return subscription.FeeRecord{}, subscription.ErrFeeNotFound
		}
		return subscription.FeeRecord{}, errors.Wrap(err, "getting fee record")
	}
	return f, nil
}

func (repo *subscriptionRepository) CreateFeeRecord(f subscription.FeeRecord) (subscription.FeeRecord, error) {
	q, args, err := psql.Insert(feeRecordTable).
		Columns(feeRecordColumns...).
		Values(f.ID, f.SubscriptionID, f.Month, f.Year, f.Status, f.MarkedAt).
		ToSql()
	if err != nil {
		return subscription.FeeRecord{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return subscription.FeeRecord{}, errors.Wrap(err, "creating fee record")
	}
	return f, nil
}

func (repo *subscriptionRepository) SetFeeStatus(id, status string, markedAt time.Time) error {
	q, args, err := psql.Update(feeRecordTable).
		Set("status", status).
		Set("marked_at", markedAt).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return errors.Wrap(err, "updating fee record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subscription.ErrFeeNotFound
	}
	return nil
}

func (repo *subscriptionRepository) QueryFeeRecords(subscriptionID string) ([]subscription.FeeRecord, error) {
	q, args, err := psql.Select(feeRecordColumns...).From(feeRecordTable).
		Where("subscription_id = ?", subscriptionID).
		OrderBy("year", "month").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	fees := make([]subscription.FeeRecord, 0)
	if err = repo.db.Select(&fees, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying fee records")
	}
	return fees, nil
}

func (repo *subscriptionRepository) GetAttendanceRecord(subscriptionID, date string) (subscription.AttendanceRecord, error) {
	q, args, err := psql.Select(attendanceColumns...).From(attendanceTable).
		Where(sq.Eq{"subscription_id": subscriptionID, "date": date}).
		ToSql()
	if err != nil {
		return subscription.AttendanceRecord{}, errors.Wrap(err, "building query")
	}
	var a subscription.AttendanceRecord
	if err = repo.db.Get(&a, q, args...); err != nil {
		if err == sql.ErrNoRows {
			return subscription.AttendanceRecord{}, subscription.ErrAttendanceNotFound
		}
		return subscription.AttendanceRecord{}, errors.Wrap(err, "getting attendance record")
	}
	return a, nil
}

func (repo *subscriptionRepository) CreateAttendanceRecord(a subscription.AttendanceRecord) (subscription.AttendanceRecord, error) {
	q, args, err := psql.Insert(attendanceTable).
		Columns(attendanceColumns...).
		Values(a.ID, a.SubscriptionID, a.Date, a.Status, a.MarkedAt).
		ToSql()
	if err != nil {
		return subscription.AttendanceRecord{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return subscription.AttendanceRecord{}, errors.Wrap(err, "creating attendance record")
	}
	return a, nil
}

func (repo *subscriptionRepository) SetAttendanceStatus(id, status string, markedAt time.Time) error {
	q, args, err := psql.Update(attendanceTable).
		Set("status", status).
		Set("marked_at", markedAt).
		Where("id = ?", id).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return errors.Wrap(err, "updating attendance record")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return subscription.ErrAttendanceNotFound
	}
	return nil
}

func (repo *subscriptionRepository) QueryAttendanceRecords(subscriptionID string) ([]subscription.AttendanceRecord, error) {
	q, args, err := psql.Select(attendanceColumns...).From(attendanceTable).
		Where("subscription_id = ?", subscriptionID).
		OrderBy("date").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	records := make([]subscription.AttendanceRecord, 0)
	if err = repo.db.Select(&records, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	return records, nil
}
