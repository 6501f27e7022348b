package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	echoapi "github.com/tutormaven/backend/apps/api/echo"
	"github.com/tutormaven/backend/core"
	"github.com/tutormaven/backend/core/notification"
	"github.com/tutormaven/backend/core/review"
	"github.com/tutormaven/backend/core/student"
	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/tutor"
	"github.com/tutormaven/backend/core/user"
	emailsvc "github.com/tutormaven/backend/services/email"
	logsvc "github.com/tutormaven/backend/services/logger"
	"github.com/tutormaven/backend/storage/database"
	sqlxrepos "github.com/tutormaven/backend/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close DB", err)
		}
	}()

	// set up repositories
	usrRepo := sqlxrepos.NewUserRepository(db)
	tutorRepo := sqlxrepos.NewTutorRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)
	subRepo := sqlxrepos.NewSubscriptionRepository(db)
	reviewRepo := sqlxrepos.NewReviewRepository(db)
	notifRepo := sqlxrepos.NewNotificationRepository(db)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(logger, conf)
	}

	usrSvc := user.NewService(usrRepo, conf)
	notifSvc := notification.NewService(notifRepo, usrSvc, mailSvc, logger, conf)
	reviewSvc := review.NewService(reviewRepo, subRepo)
	tutorSvc := tutor.NewService(tutorRepo, usrSvc, usrSvc, reviewSvc, subRepo, notifSvc)
	subSvc := subscription.NewService(subRepo, usrSvc, tutorSvc, tutorRepo, notifSvc)
	studentSvc := student.NewService(studentRepo, usrSvc, usrSvc, subSvc)
	usrSvc.SetProfileCreators(tutorSvc, studentSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err = http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			UserSvc:         usrSvc,
			TutorSvc:        tutorSvc,
			StudentSvc:      studentSvc,
			SubscriptionSvc: subSvc,
			ReviewSvc:       reviewSvc,
			NotificationSvc: notifSvc,
			Validate:        validate,
			Translator:      translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
