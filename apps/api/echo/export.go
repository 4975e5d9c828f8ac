package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/sheet"
	"github.com/trezcool/adrap/services/spreadsheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type exportApi struct {
	svc *sheet.Service
}

func registerExportAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *sheet.Service) {
	api := exportApi{svc: svc}

	eg := g.Group("/export", jwt, roleMiddleware(credential.RoleFaculty, credential.RoleAdmin))
	eg.GET("/:id/export", api.export)
	eg.GET("/:id/export.xlsx", api.download)
}

func (api *exportApi) load(ctx echo.Context) (sheet.Export, error) {
	id, err := idParam(ctx, "id")
	if err != nil {
		return sheet.Export{}, err
	}
	e, err := api.svc.Export(ctx.Request().Context(), id)
	if err != nil {
		return sheet.Export{}, errors.Wrap(err, "exporting test")
	}
	return e, nil
}

func (api *exportApi) export(ctx echo.Context) error {
	e, err := api.load(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *exportApi) download(ctx echo.Context) error {
	e, err := api.load(ctx)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err = spreadsheet.WriteXLSX(&buf, sheet.Build(e)); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	ctx.Response().Header().Set("Content-Disposition", `attachment; filename="`+sheet.FileName(e)+`"`)
	return ctx.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
