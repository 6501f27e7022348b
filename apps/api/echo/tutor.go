package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tutormaven/backend/core/tutor"
	"github.com/tutormaven/backend/core/user"
)

type tutorApi struct {
	svc      *tutor.Service
	userSvc  *user.Service
	validate *validator.Validate
}

func registerTutorAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := tutorApi{svc: s.deps.TutorSvc, userSvc: s.deps.UserSvc, validate: s.deps.Validate}

	tg := g.Group("/tutors")

	// public endpoints
	tg.GET("", api.query)
	g.GET("/banners", api.banners)

	// authed tutor portal; the static segments shadow /:id
	mg := tg.Group("", jwt, roleMiddleware(user.RoleTutor))
	mg.GET("/profile", api.myProfile)
	mg.PUT("/profile", api.updateProfile)
	mg.POST("/verification", api.submitVerification)
	mg.POST("/banner", api.uploadBanner)
	mg.GET("/stats/me", api.stats)

	tg.GET("/:id", api.retrieve)

	cg := g.Group("/classes")
	cg.GET("/:id", api.classes)
	cg.POST("", api.addClass, jwt, roleMiddleware(user.RoleTutor))
	cg.DELETE("/:id", api.deleteClass, jwt, roleMiddleware(user.RoleTutor))
}

// Handlers

func (api *tutorApi) query(ctx echo.Context) error {
	tutors, err := api.svc.Query(ctx.QueryParam("subject"))
	if err != nil {
		return errors.Wrap(err, "querying tutors")
	}
	return ctx.JSON(http.StatusOK, tutors)
}

func (api *tutorApi) retrieve(ctx echo.Context) error {
	detail, err := api.svc.Detail(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting tutor detail")
	}
	return ctx.JSON(http.StatusOK, detail)
}

func (api *tutorApi) banners(ctx echo.Context) error {
	banners, err := api.svc.Banners()
	if err != nil {
		return errors.Wrap(err, "querying banners")
	}
	return ctx.JSON(http.StatusOK, banners)
}

func (api *tutorApi) myProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	p, err := api.svc.GetProfile(usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting tutor profile")
	}
	return ctx.JSON(http.StatusOK, tutor.ProfileWithUser{Profile: p, User: usr})
}

func (api *tutorApi) updateProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data tutor.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.UpdateProfile(usr, data)
	if err != nil {
		return errors.Wrap(err, "updating tutor profile")
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *tutorApi) submitVerification(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data tutor.VerificationProof
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerificationProof")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if err = api.svc.SubmitVerification(usr, data); err != nil {
		return errors.Wrap(err, "submitting verification")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Verification submitted. You will be notified once reviewed."})
}

func (api *tutorApi) uploadBanner(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data BannerRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BannerRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	if err = api.svc.SetBanner(usr, data.Banner); err != nil {
		return errors.Wrap(err, "setting banner")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Banner uploaded."})
}

func (api *tutorApi) stats(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	stats, err := api.svc.Stats(usr)
	if err != nil {
		return errors.Wrap(err, "getting tutor stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}

// classes lists the classes taught by the tutor in the path. Public.
func (api *tutorApi) classes(ctx echo.Context) error {
	classes, err := api.svc.QueryClasses(ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *tutorApi) addClass(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data tutor.NewClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	class, err := api.svc.AddClass(usr, data)
	if err != nil {
		return errors.Wrap(err, "adding class")
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *tutorApi) deleteClass(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if err = api.svc.DeleteClass(usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type BannerRequest struct {
	Banner string `json:"banner" validate:"required"`
}

func (br *BannerRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(br)
}
