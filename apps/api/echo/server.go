package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/sheet"
	"github.com/trezcool/adrap/core/subject"
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Store      core.Pinger
		Validate   *validator.Validate
		Translator ut.Translator

		CredentialSvc *credential.Service
		SubjectSvc    *subject.Service
		TestSvc       *serialtest.Service
		MarksSvc      *marks.Service
		SheetSvc      *sheet.Service
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Server.ReadTimeout = conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = conf.Server.WriteTimeout

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	g := s.app.Group("/api")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))

	registerHealthAPI(g, s.deps.Store)
	registerAuthAPI(g, conf, s.deps.CredentialSvc, s.deps.Validate)
	registerSubjectAPI(g, jwt, s.deps.SubjectSvc)
	registerSerialTestAPI(g, jwt, s.deps.TestSvc)
	registerQuestionAPI(g, jwt, s.deps.TestSvc)
	registerMarksAPI(g, jwt, s.deps.MarksSvc)
	registerExportAPI(g, jwt, s.deps.SheetSvc)
}

// Start listens until the server is shut down. Listener errors are sent on Errors().
func (s *server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errors
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
