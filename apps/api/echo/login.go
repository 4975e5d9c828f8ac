package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
)

type (
	LoginRequest struct {
		Role     string `json:"role" validate:"required"`
		Username string `json:"username"`
		Password string `json:"password"`
	}

	LoginResponse struct {
		IsValid bool   `json:"isValid"`
		Token   string `json:"token,omitempty"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Role = core.CleanString(lr.Role, true /* lower */)
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return validate.Struct(lr)
}

type authApi struct {
	conf     *core.Config
	svc      *credential.Service
	validate *validator.Validate
}

func registerAuthAPI(g *echo.Group, conf *core.Config, svc *credential.Service, validate *validator.Validate) {
	api := authApi{conf: conf, svc: svc, validate: validate}

	ag := g.Group("/auth")
	ag.POST("/login", api.login)
}

// login answers 200 with isValid=false on bad credentials, like the portal front-end expects.
func (api *authApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	ok, err := api.svc.Verify(ctx.Request().Context(), data.Role, data.Username, data.Password)
	if err != nil {
		return errors.Wrap(err, "verifying credentials")
	}
	if !ok {
		return ctx.JSON(http.StatusOK, LoginResponse{IsValid: false})
	}

	token, err := GenerateToken(api.conf, NewClaims(api.conf, data.Role, data.Username))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{IsValid: true, Token: token})
}
