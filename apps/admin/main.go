package main

import (
	"context"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/sheet"
	"github.com/trezcool/adrap/core/subject"
	logsvc "github.com/trezcool/adrap/services/logger"
	"github.com/trezcool/adrap/storage/database"
	sqlxrepos "github.com/trezcool/adrap/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(false)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}
	if err = database.Ping(context.Background(), db); err != nil {
		logger.Fatal("pinging database", err)
	}

	// set up services
	validate, translator := core.NewValidator()
	credential.InitValidators(validate, translator)
	marks.InitValidators(validate, translator)

	credSvc := credential.NewService(sqlxrepos.NewCredentialRepository(db), validate)
	subjSvc := subject.NewService(sqlxrepos.NewSubjectRepository(db), credSvc, validate, translator)
	testSvc := serialtest.NewService(sqlxrepos.NewSerialTestRepository(db), subjSvc, validate, translator)
	marksSvc := marks.NewService(sqlxrepos.NewMarksRepository(db), testSvc, subjSvc, validate, translator)

	// start CLI
	cli := commandLine{
		db:       db.DB,
		out:      os.Stdout,
		credSvc:  credSvc,
		marksSvc: marksSvc,
		sheetSvc: sheet.NewService(testSvc, subjSvc, marksSvc),
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("command failed", errors.WithStack(err))
		}
		os.Exit(1)
	}
}
