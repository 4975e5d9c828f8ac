package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	echoapi "github.com/trezcool/adrap/apps/api/echo"
	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/sheet"
	"github.com/trezcool/adrap/core/subject"
	logsvc "github.com/trezcool/adrap/services/logger"
	"github.com/trezcool/adrap/storage/database"
	inmemdb "github.com/trezcool/adrap/storage/database/inmem"
	sqlxrepos "github.com/trezcool/adrap/storage/database/sqlx"
)

type repositories struct {
	store       core.Pinger
	credentials credential.Repository
	subjects    subject.Repository
	tests       serialtest.Repository
	marks       marks.Repository
	close       func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up store
	repos, err := setUpRepositories(conf)
	if err != nil {
		dbLogger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Store, err), err)
	}
	defer func() {
		if err = repos.close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up services
	validate, translator := newValidator()
	credSvc := credential.NewService(repos.credentials, validate)
	subjSvc := subject.NewService(repos.subjects, credSvc, validate, translator)
	testSvc := serialtest.NewService(repos.tests, subjSvc, validate, translator)
	marksSvc := marks.NewService(repos.marks, testSvc, subjSvc, validate, translator)
	sheetSvc := sheet.NewService(testSvc, subjSvc, marksSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q, store %q", conf.Build, conf.Store))
	defer logger.Info("Application stopped")

	if err = bootstrapAdmin(context.Background(), conf, credSvc); err != nil {
		logger.Fatal(fmt.Sprintf("bootstrapping admin: %v", err), err)
	}

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(conf.Store)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:          conf,
			Logger:        logger,
			Store:         repos.store,
			Validate:      validate,
			Translator:    translator,
			CredentialSvc: credSvc,
			SubjectSvc:    subjSvc,
			TestSvc:       testSvc,
			MarksSvc:      marksSvc,
			SheetSvc:      sheetSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpRepositories(conf *core.Config) (*repositories, error) {
	switch conf.Store {
	case core.StoreMemory:
		db := inmemdb.Open()
		return &repositories{
			store:       db,
			credentials: inmemdb.NewCredentialRepository(db),
			subjects:    inmemdb.NewSubjectRepository(db),
			tests:       inmemdb.NewSerialTestRepository(db),
			marks:       inmemdb.NewMarksRepository(db),
			close:       func() error { return nil },
		}, nil
	case core.StorePostgres:
		db, err := setUpDB(conf)
		if err != nil {
			return nil, err
		}
		return &repositories{
			store:       db,
			credentials: sqlxrepos.NewCredentialRepository(db),
			subjects:    sqlxrepos.NewSubjectRepository(db),
			tests:       sqlxrepos.NewSerialTestRepository(db),
			marks:       sqlxrepos.NewMarksRepository(db),
			close:       db.Close,
		}, nil
	}
	return nil, errors.Errorf("unknown store %q", conf.Store)
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Ping(ctx, db); err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}

// bootstrapAdmin upserts the configured admin credential, if any.
func bootstrapAdmin(ctx context.Context, conf *core.Config, svc *credential.Service) error {
	if conf.Admin.Username == "" && conf.Admin.Password == "" {
		return nil
	}
	_, err := svc.SetAdmin(ctx, conf.Admin.Username, conf.Admin.Password)
	return err
}

func newValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	credential.InitValidators(validate, translator)
	marks.InitValidators(validate, translator)
	return validate, translator
}
