package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/student"
	"github.com/tutormaven/backend/core/user"
)

type studentApi struct {
	svc      *student.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := studentApi{svc: s.deps.StudentSvc, userSvc: s.deps.UserSvc, validate: s.deps.Validate}

	sg := g.Group("/students/profile")
	sg.GET("", api.myProfile, jwt, roleMiddleware(user.RoleStudent))
	sg.PUT("", api.updateProfile, jwt, roleMiddleware(user.RoleStudent))
	sg.GET("/:id", api.profile)
}

// Handlers

func (api *studentApi) myProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	p, err := api.svc.GetProfile(usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting student profile")
	}
	return ctx.JSON(http.StatusOK, StudentProfileResponse{Profile: p, User: usr})
}

func (api *studentApi) updateProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data student.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.UpdateProfile(usr, data)
	if err != nil {
		return errors.Wrap(err, "updating student profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

// profile is public. A missing profile yields an empty object, not a 404.
func (api *studentApi) profile(ctx echo.Context) error {
	p, err := api.svc.GetProfile(ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return ctx.JSON(http.StatusOK, echo.Map{})
		}
		return errors.Wrap(err, "getting student profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

type StudentProfileResponse struct {
	student.Profile
	User user.User `json:"user"`
}
