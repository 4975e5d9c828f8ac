package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/subject"
)

type subjectApi struct {
	svc *subject.Service
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *subject.Service) {
	api := subjectApi{svc: svc}

	sg := g.Group("/subjects")

	// un-authed endpoints
	sg.GET("/published", api.published)

	// authed endpoints
	ag := sg.Group("", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create, roleMiddleware(credential.RoleAdmin))
	ag.POST("/reset", api.reset, roleMiddleware(credential.RoleAdmin))
	ag.POST("/publish", api.publish, roleMiddleware(credential.RoleAdmin))
	ag.DELETE("/:id", api.destroy, roleMiddleware(credential.RoleAdmin))
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	subj, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subj)
}

func (api *subjectApi) query(ctx echo.Context) error {
	filter := new(subject.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []subject.Subject{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx, subject.OrderingFields)

	subjects, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subjects == nil {
		subjects = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *subjectApi) reset(ctx echo.Context) error {
	if err := api.svc.Reset(ctx.Request().Context()); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "All subjects have been deleted."})
}

func (api *subjectApi) publish(ctx echo.Context) error {
	if err := api.svc.Publish(ctx.Request().Context()); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"published": true})
}

func (api *subjectApi) published(ctx echo.Context) error {
	published, err := api.svc.IsPublished(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "reading published flag")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"published": published})
}
