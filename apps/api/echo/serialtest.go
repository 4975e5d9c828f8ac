package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/serialtest"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "not found")

type serialTestApi struct {
	svc *serialtest.Service
}

func registerSerialTestAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *serialtest.Service) {
	api := serialTestApi{svc: svc}

	tg := g.Group("/serialtests", jwt)
	tg.GET("", api.query)
	tg.POST("", api.create, roleMiddleware(credential.RoleFaculty, credential.RoleAdmin))
	tg.DELETE("/:id", api.destroy, roleMiddleware(credential.RoleFaculty, credential.RoleAdmin))
}

func (api *serialTestApi) create(ctx echo.Context) error {
	var data serialtest.NewTest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTest")
	}
	t, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating test")
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *serialTestApi) query(ctx echo.Context) error {
	filter := new(serialtest.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []serialtest.Test{})
	}
	tests, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying tests")
	}
	if tests == nil {
		tests = []serialtest.Test{}
	}
	return ctx.JSON(http.StatusOK, tests)
}

func (api *serialTestApi) destroy(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting test")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// idParam parses a positive integer path parameter; anything else is a 404.
func idParam(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
