package testutil

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/sheet"
	"github.com/trezcool/adrap/core/subject"
	"github.com/trezcool/adrap/storage/database"
	inmemdb "github.com/trezcool/adrap/storage/database/inmem"
)

// Services bundles every domain service over one store.
type Services struct {
	Store      core.Pinger
	Validate   *validator.Validate
	Translator ut.Translator

	Credential *credential.Service
	Subject    *subject.Service
	Test       *serialtest.Service
	Marks      *marks.Service
	Sheet      *sheet.Service
}

type Repositories struct {
	Credentials credential.Repository
	Subjects    subject.Repository
	Tests       serialtest.Repository
	Marks       marks.Repository
}

// NewValidator returns a validator with every package's validators registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate, translator := core.NewValidator()
	credential.InitValidators(validate, translator)
	marks.InitValidators(validate, translator)
	return validate, translator
}

// NewServices wires the services on top of repos.
func NewServices(store core.Pinger, repos Repositories) *Services {
	validate, translator := NewValidator()
	credSvc := credential.NewService(repos.Credentials, validate)
	subjSvc := subject.NewService(repos.Subjects, credSvc, validate, translator)
	testSvc := serialtest.NewService(repos.Tests, subjSvc, validate, translator)
	marksSvc := marks.NewService(repos.Marks, testSvc, subjSvc, validate, translator)
	return &Services{
		Store:      store,
		Validate:   validate,
		Translator: translator,
		Credential: credSvc,
		Subject:    subjSvc,
		Test:       testSvc,
		Marks:      marksSvc,
		Sheet:      sheet.NewService(testSvc, subjSvc, marksSvc),
	}
}

// NewInMemServices wires the services on a fresh in-memory store.
func NewInMemServices() *Services {
	db := inmemdb.Open()
	return NewServices(db, Repositories{
		Credentials: inmemdb.NewCredentialRepository(db),
		Subjects:    inmemdb.NewSubjectRepository(db),
		Tests:       inmemdb.NewSerialTestRepository(db),
		Marks:       inmemdb.NewMarksRepository(db),
	})
}

// TestConfig is the configuration used by handler tests.
func TestConfig() *core.Config {
	return &core.Config{
		AppName:   "ADRAP",
		Env:       "TEST",
		TestMode:  true,
		SecretKey: "test-secret",
		Store:     core.StoreMemory,
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
	}
}

// CreateSubject registers a subject with faculty "<code>_fac" and student "<code>_stu" credentials;
// both passwords are Passw0rd!.
func CreateSubject(t *testing.T, svc *subject.Service, code, name, batch, section string) subject.Subject {
	t.Helper()
	subj, err := svc.Create(context.Background(), subject.NewSubject{
		Code:            code,
		Name:            name,
		Semester:        3,
		Batch:           batch,
		Section:         section,
		AcademicYear:    "2024-2025",
		StaffName:       "Dr. Rao",
		FacultyUsername: code + "_fac",
		FacultyPassword: "Passw0rd!",
		StudentUsername: code + "_stu",
		StudentPassword: "Passw0rd!",
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateTest(t *testing.T, svc *serialtest.Service, subjectID string, n int, batch, section string) serialtest.Test {
	t.Helper()
	tst, err := svc.Create(context.Background(), serialtest.NewTest{
		SubjectID:        subjectID,
		SerialTestNumber: n,
		Batch:            batch,
		Section:          section,
	})
	if err != nil {
		t.Fatalf("CreateTest() failed: %v", err)
	}
	return tst
}

// Question builds a NewQuestion; part defaults to A when number <= 10 and B otherwise.
func Question(number string, outcome int, maxScore float64) serialtest.NewQuestion {
	part := serialtest.PartB
	if n, err := strconv.Atoi(number); err == nil && n <= 10 {
		part = serialtest.PartA
	}
	return serialtest.NewQuestion{QuestionNumber: number, Part: part, Outcome: outcome, MaxScore: &maxScore}
}

func AttachQuestions(t *testing.T, svc *serialtest.Service, testID int64, nqs ...serialtest.NewQuestion) []serialtest.Question {
	t.Helper()
	qs, err := svc.AttachQuestions(context.Background(), testID, nqs)
	if err != nil {
		t.Fatalf("AttachQuestions() failed: %v", err)
	}
	return qs
}

// Roster builds roster rows from alternating roll numbers and names.
func Roster(rollsAndNames ...interface{}) []marks.RosterRow {
	rows := make([]marks.RosterRow, 0, len(rollsAndNames)/2)
	for i := 0; i+1 < len(rollsAndNames); i += 2 {
		rows = append(rows, marks.RosterRow{
			RollNumber: json.Number(strconv.FormatInt(int64(rollsAndNames[i].(int)), 10)),
			Name:       rollsAndNames[i+1].(string),
		})
	}
	return rows
}

func IngestRoster(t *testing.T, svc *marks.Service, testID int64, rows []marks.RosterRow) []marks.Record {
	t.Helper()
	recs, err := svc.IngestRoster(context.Background(), testID, rows)
	if err != nil {
		t.Fatalf("IngestRoster() failed: %v", err)
	}
	return recs
}

// PrepareDB opens and migrates the postgres test database, and empties every table.
// The test is skipped when TEST_DATABASE_HOST is not set.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	host := os.Getenv("TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("TEST_DATABASE_HOST not set")
	}

	conf := core.NewConfig()
	conf.Database.Host = host
	if name := os.Getenv("TEST_DATABASE_NAME"); name != "" {
		conf.Database.Name = name
	}

	ctx := context.Background()
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	ResetDB(t, db)
	return db
}

func ResetDB(t *testing.T, db *sqlx.DB) {
	t.Helper()
	const q = "TRUNCATE student_marks, questions, serial_tests, credentials, subjects, app_settings RESTART IDENTITY CASCADE"
	if _, err := db.Exec(q); err != nil {
		t.Fatalf("ResetDB() failed: %v", err)
	}
}
