package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/user"
)

type subscriptionApi struct {
	svc      *subscription.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerSubscriptionAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := subscriptionApi{svc: s.deps.SubscriptionSvc, userSvc: s.deps.UserSvc, validate: s.deps.Validate}

	sg := g.Group("/subscriptions", jwt)
	sg.POST("", api.create, roleMiddleware(user.RoleStudent))
	sg.GET("/my", api.listMine)
	sg.PUT("/accept/:id", api.accept, roleMiddleware(user.RoleTutor))
	sg.PUT("/reject/:id", api.reject, roleMiddleware(user.RoleTutor))

	// fee and attendance records are keyed by subscription id
	fg := g.Group("/fees", jwt)
	fg.GET("/:id", api.fees)
	fg.PUT("/:id", api.markFee, roleMiddleware(user.RoleTutor))

	ag := g.Group("/attendance", jwt)
	ag.GET("/:id", api.attendance)
	ag.POST("/:id", api.markAttendance, roleMiddleware(user.RoleTutor))
}

// Handlers

func (api *subscriptionApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data subscription.NewSubscription
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubscription")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Create(usr, data)
	if err != nil {
		return errors.Wrap(err, "creating subscription")
	}
	return ctx.JSON(http.StatusCreated, sub)
}

func (api *subscriptionApi) listMine(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	subs, err := api.svc.ListFor(usr)
	if err != nil {
		return errors.Wrap(err, "listing subscriptions")
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *subscriptionApi) accept(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.Accept(usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "accepting subscription")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Subscription accepted."})
}

func (api *subscriptionApi) reject(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.Reject(usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "rejecting subscription")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Subscription rejected."})
}

func (api *subscriptionApi) fees(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	fees, err := api.svc.Fees(usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying fee records")
	}
	return ctx.JSON(http.StatusOK, fees)
}

func (api *subscriptionApi) markFee(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data subscription.MarkFee
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkFee")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.MarkFee(usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "marking fee")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *subscriptionApi) attendance(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	records, err := api.svc.Attendance(usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance records")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *subscriptionApi) markAttendance(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data subscription.MarkAttendance
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAttendance")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	rec, err := api.svc.MarkAttendance(usr, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	return ctx.JSON(http.StatusOK, rec)
}
