package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/subscription"
	"github.com/tutormaven/backend/core/tutor"
	"github.com/tutormaven/backend/core/user"
)

type adminApi struct {
	userSvc  *user.Service
	tutorSvc *tutor.Service
	subSvc   *subscription.Service
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := adminApi{userSvc: s.deps.UserSvc, tutorSvc: s.deps.TutorSvc, subSvc: s.deps.SubscriptionSvc}

	ag := g.Group("/admin", jwt, adminMiddleware())
	ag.GET("/verifications", api.verifications)
	ag.PUT("/verifications/:id/approve", api.approveVerification)
	ag.PUT("/verifications/:id/reject", api.rejectVerification)
	ag.GET("/users", api.users)
	ag.DELETE("/users/:id", api.deleteUser)
	ag.GET("/stats", api.stats)
	ag.GET("/subscriptions", api.subscriptions)
}

// Handlers

func (api *adminApi) verifications(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	pending, err := api.tutorSvc.PendingVerifications(usr)
	if err != nil {
		return errors.Wrap(err, "querying pending verifications")
	}
	return ctx.JSON(http.StatusOK, pending)
}

func (api *adminApi) approveVerification(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.tutorSvc.ApproveVerification(usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "approving verification")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Verification approved."})
}

func (api *adminApi) rejectVerification(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.tutorSvc.RejectVerification(usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "rejecting verification")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Verification rejected."})
}

func (api *adminApi) users(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	users, err := api.userSvc.QueryAll(usr)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *adminApi) deleteUser(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	// Say No to Suicide! ctxUser cannot delete themselves
	if ctx.Param("id") == usr.ID {
		return errHttpForbidden
	}
	if err = api.userSvc.Delete(usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *adminApi) stats(ctx echo.Context) error {
	totalStudents, err := api.userSvc.Count(user.RoleStudent)
	if err != nil {
		return errors.Wrap(err, "counting students")
	}
	totalTutors, err := api.userSvc.Count(user.RoleTutor)
	if err != nil {
		return errors.Wrap(err, "counting tutors")
	}
	pending, err := api.tutorSvc.CountPending()
	if err != nil {
		return errors.Wrap(err, "counting pending verifications")
	}
	active, err := api.subSvc.CountActive()
	if err != nil {
		return errors.Wrap(err, "counting active subscriptions")
	}
	return ctx.JSON(http.StatusOK, AdminStatsResponse{
		TotalStudents:        totalStudents,
		TotalTutors:          totalTutors,
		PendingVerifications: pending,
		ActiveSubscriptions:  active,
	})
}

func (api *adminApi) subscriptions(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	details, err := api.subSvc.AdminDetails(usr)
	if err != nil {
		return errors.Wrap(err, "querying admin subscription details")
	}
	return ctx.JSON(http.StatusOK, details)
}

type AdminStatsResponse struct {
	TotalStudents        int `json:"total_students"`
	TotalTutors          int `json:"total_tutors"`
	PendingVerifications int `json:"pending_verifications"`
	ActiveSubscriptions  int `json:"active_subscriptions"`
}
