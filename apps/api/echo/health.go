package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/storage/database"
)

type healthApi struct {
	store core.Pinger
}

func registerHealthAPI(g *echo.Group, store core.Pinger) {
	api := healthApi{store: store}
	g.GET("/health", api.check)
}

func (api *healthApi) check(ctx echo.Context) error {
	if api.store != nil {
		if err := database.StatusCheck(ctx.Request().Context(), api.store); err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
