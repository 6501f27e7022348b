package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/review"
	"github.com/tutormaven/backend/core/user"
)

type reviewApi struct {
	svc      *review.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerReviewAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := reviewApi{svc: s.deps.ReviewSvc, userSvc: s.deps.UserSvc, validate: s.deps.Validate}

	rg := g.Group("/reviews", jwt)
	rg.POST("", api.create, roleMiddleware(user.RoleStudent))
	rg.DELETE("/:id", api.destroy)
}

// Handlers

func (api *reviewApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data review.NewReview
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewReview")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	r, err := api.svc.Create(usr, data)
	if err != nil {
		return errors.Wrap(err, "creating review")
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *reviewApi) destroy(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.Delete(usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting review")
	}
	return ctx.NoContent(http.StatusNoContent)
}
