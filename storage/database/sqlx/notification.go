package sqlxrepos

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/notification"
)

const notificationTable = "notification"

var notificationColumns = []string{"id", "user_id", "type", "message", "read", "created_at"}

type notificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*notificationRepository)(nil) // interface compliance check

func NewNotificationRepository(db *sqlx.DB) notification.Repository {
	return &notificationRepository{db: db}
}

func (repo *notificationRepository) CreateNotification(n notification.Notification) (notification.Notification, error) {
	q, args, err := psql.Insert(notificationTable).
		Columns(notificationColumns...).
		Values(n.ID, n.UserID, n.Type, n.Message, n.Read, n.CreatedAt).
		ToSql()
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.Exec(q, args...); err != nil {
		return notification.Notification{}, errors.Wrap(err, "creating notification")
	}
	return n, nil
}

func (repo *notificationRepository) QueryNotificationsByUser(userID string) ([]notification.Notification, error) {
	q, args, err := psql.Select(notificationColumns...).From(notificationTable).
		Where("user_id = ?", userID).
		OrderBy("created_at DESC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	notifs := make([]notification.Notification, 0)
	if err = repo.db.Select(&notifs, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	return notifs, nil
}

func (repo *notificationRepository) MarkNotificationRead(id, userID string) error {
	q, args, err := psql.Update(notificationTable).
		Set("read", true).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	res, err := repo.db.Exec(q, args...)
	if err != nil {
		return errors.Wrap(err, "marking notification read")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notification.ErrNotFound
	}
	return nil
}

func (repo *notificationRepository) CountUnreadNotifications(userID string) (int, error) {
	q, args, err := psql.Select("COUNT(*)").From(notificationTable).
		Where(sq.Eq{"user_id": userID, "read": false}).
		ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var n int
	if err = repo.db.Get(&n, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting unread notifications")
	}
	return n, nil
}
