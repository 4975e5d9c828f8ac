package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/serialtest"
)

type (
	AttachQuestionsRequest struct {
		TestID    int64                    `json:"testId"`
		Questions []serialtest.NewQuestion `json:"questions"`
	}

	questionApi struct {
		svc *serialtest.Service
	}
)

func registerQuestionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *serialtest.Service) {
	api := questionApi{svc: svc}

	qg := g.Group("/questions", jwt)
	qg.GET("/part-a", api.partA)
	qg.GET("/:testId", api.query)
	qg.POST("", api.attach, roleMiddleware(credential.RoleFaculty, credential.RoleAdmin))
}

func (api *questionApi) partA(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, serialtest.DefaultPartA())
}

func (api *questionApi) attach(ctx echo.Context) error {
	var data AttachQuestionsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AttachQuestionsRequest")
	}
	qs, err := api.svc.AttachQuestions(ctx.Request().Context(), data.TestID, data.Questions)
	if err != nil {
		return errors.Wrap(err, "attaching questions")
	}
	return ctx.JSON(http.StatusCreated, qs)
}

func (api *questionApi) query(ctx echo.Context) error {
	testID, err := idParam(ctx, "testId")
	if err != nil {
		return err
	}
	qs, err := api.svc.Questions(ctx.Request().Context(), testID)
	if err != nil {
		return errors.Wrap(err, "querying questions")
	}
	if qs == nil {
		qs = []serialtest.Question{}
	}
	return ctx.JSON(http.StatusOK, qs)
}
