package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/services/spreadsheet"
)

const rosterFileField = "file"

type (
	RosterRequest struct {
		TestID       int64             `json:"testId"`
		StudentMarks []marks.RosterRow `json:"studentMarks"`
	}

	RecordResponse struct {
		Message string       `json:"message"`
		Student marks.Record `json:"student"`
	}

	marksApi struct {
		svc *marks.Service
	}
)

func registerMarksAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *marks.Service) {
	api := marksApi{svc: svc}

	mg := g.Group("/studentmarks", jwt)
	mg.POST("", api.ingest, roleMiddleware(credential.RoleFaculty, credential.RoleAdmin))
	mg.POST("/upload", api.upload, roleMiddleware(credential.RoleFaculty, credential.RoleAdmin))
	mg.PUT("/update", api.submit, roleMiddleware(credential.RoleStudent, credential.RoleFaculty))
	mg.POST("/:testId/:rollNumber/reset", api.reset, roleMiddleware(credential.RoleFaculty, credential.RoleAdmin))

	g.GET("/studentTest", api.entry, jwt)
}

func (api *marksApi) ingest(ctx echo.Context) error {
	var data RosterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RosterRequest")
	}
	recs, err := api.svc.IngestRoster(ctx.Request().Context(), data.TestID, data.StudentMarks)
	if err != nil {
		return errors.Wrap(err, "ingesting roster")
	}
	return ctx.JSON(http.StatusCreated, recs)
}

// upload ingests the roster of a multipart xlsx file (fields: testId, file).
func (api *marksApi) upload(ctx echo.Context) error {
	testID, err := strconv.ParseInt(ctx.FormValue("testId"), 10, 64)
	if err != nil || testID <= 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "testId", Error: "must be a positive whole number"})
	}
	fh, err := ctx.FormFile(rosterFileField)
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: rosterFileField, Error: "this field is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer f.Close()

	rows, err := spreadsheet.ReadRoster(f)
	if err != nil {
		return errors.Wrap(err, "reading roster")
	}
	recs, err := api.svc.IngestRoster(ctx.Request().Context(), testID, rows)
	if err != nil {
		return errors.Wrap(err, "ingesting roster")
	}
	return ctx.JSON(http.StatusCreated, recs)
}

func (api *marksApi) submit(ctx echo.Context) error {
	var data marks.Submission
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Submission")
	}
	rec, err := api.svc.RecordMarks(ctx.Request().Context(), data.TestID, data.RollNumber, data.QuestionMarks)
	if err != nil {
		return errors.Wrap(err, "recording marks")
	}
	return ctx.JSON(http.StatusOK, RecordResponse{Message: "Student marks updated successfully", Student: rec})
}

func (api *marksApi) reset(ctx echo.Context) error {
	testID, err := idParam(ctx, "testId")
	if err != nil {
		return err
	}
	roll, err := idParam(ctx, "rollNumber")
	if err != nil {
		return err
	}
	rec, err := api.svc.ResetMarks(ctx.Request().Context(), testID, roll)
	if err != nil {
		return errors.Wrap(err, "resetting marks")
	}
	return ctx.JSON(http.StatusOK, RecordResponse{Message: "Student marks reset successfully", Student: rec})
}

func (api *marksApi) entry(ctx echo.Context) error {
	var q marks.EntryQuery
	if err := ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to EntryQuery")
	}
	entry, err := api.svc.Entry(ctx.Request().Context(), q)
	if err != nil {
		return errors.Wrap(err, "loading student entry")
	}
	return ctx.JSON(http.StatusOK, entry)
}
