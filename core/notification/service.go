package notification

import (
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/tutormaven/backend/core"
	"github.com/tutormaven/backend/core/user"
)

var ErrNotFound = errors.New("notification not found")

type (
	Repository interface {
		CreateNotification(n Notification) (Notification, error)
		// QueryNotificationsByUser returns the user's notifications, newest first.
		QueryNotificationsByUser(userID string) ([]Notification, error)
		MarkNotificationRead(id, userID string) error
		CountUnreadNotifications(userID string) (int, error)
	}

	// UserGetter resolves a recipient for the optional email mirror.
	UserGetter interface {
		GetByID(id string) (user.User, error)
	}

	Service struct {
		repo    Repository
		users   UserGetter
		mailSvc core.EmailService
		logger  core.Logger
		conf    *core.Config
	}
)

func NewService(repo Repository, users UserGetter, mailSvc core.EmailService, logger core.Logger, conf *core.Config) *Service {
	return &Service{repo: repo, users: users, mailSvc: mailSvc, logger: logger, conf: conf}
}

// Notify appends a Notification for userID. Fan-out is best-effort: a failed
// emission never fails the transition that caused it, but it is logged as a
// degraded outcome.
func (svc *Service) Notify(userID, typ, message string) {
	n := Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := svc.repo.CreateNotification(n); err != nil {
		svc.logger.Error(fmt.Sprintf("notification fan-out degraded: %v", err), err)
		return
	}

	if svc.conf.NotifyByEmail && svc.mailSvc != nil {
		svc.mirrorToEmail(n)
	}
}

func (svc *Service) mirrorToEmail(n Notification) {
	usr, err := svc.users.GetByID(n.UserID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("notification email mirror skipped: %v", err))
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: n.Type,
		Body:    n.Message,
	})
}

func (svc *Service) QueryForUser(usr user.User) ([]Notification, error) {
	return svc.repo.QueryNotificationsByUser(usr.ID)
}

func (svc *Service) MarkRead(usr user.User, id string) error {
	return svc.repo.MarkNotificationRead(id, usr.ID)
}

func (svc *Service) UnreadCount(usr user.User) (int, error) {
	return svc.repo.CountUnreadNotifications(usr.ID)
}
