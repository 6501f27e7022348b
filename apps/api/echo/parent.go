package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/student"
)

type parentApi struct {
	svc      *student.Service
	validate *validator.Validate
}

// The parent portal is code-based: no account, no JWT. The parent code is
// the whole credential.
func registerParentAPI(g *echo.Group, s *server) {
	api := parentApi{svc: s.deps.StudentSvc, validate: s.deps.Validate}

	g.POST("/parents/login", api.login)
}

func (api *parentApi) login(ctx echo.Context) error {
	var data student.ParentLogin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ParentLogin")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	view, err := api.svc.ParentPortal(data.ParentCode)
	if err != nil {
		if errors.Cause(err) == student.ErrInvalidParentCode {
			return errInvalidParCode
		}
		return errors.Wrap(err, "resolving parent code")
	}
	return ctx.JSON(http.StatusOK, view)
}
