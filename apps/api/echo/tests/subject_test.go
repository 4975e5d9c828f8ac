package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/adrap/apps/api/echo"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/subject"
	"github.com/trezcool/adrap/tests"
)

var errForbidden = httpErr{Error: "permission denied"}

func newSubject(code, name string) subject.NewSubject {
	return subject.NewSubject{
		Code:            code,
		Name:            name,
		Semester:        3,
		Batch:           "2022",
		Section:         "A",
		AcademicYear:    "2024-2025",
		StaffName:       "Dr. Rao",
		FacultyUsername: code + "_fac",
		FacultyPassword: "Passw0rd!",
		StudentUsername: code + "_stu",
		StudentPassword: "Passw0rd!",
	}
}

func Test_subjectApi_create(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)

	weak := newSubject("cs102", "Algorithms")
	weak.FacultyPassword = "cs102_fac"

	runTests(t, a, []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "admin only", token: tokens[credential.RoleFaculty], body: marchallObj(t, newSubject("cs101", "Data Structures")),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "required fields", token: tokens[credential.RoleAdmin], body: []byte(`{"code": "cs101"}`), wantCode: http.StatusBadRequest, wantData: []byte(`{
			"name": "this field is required",
			"semester": "this field is required",
			"batch": "this field is required",
			"section": "this field is required",
			"academicYear": "this field is required",
			"staffName": "this field is required",
			"facultyUsername": "this field is required",
			"facultyPassword": "this field is required",
			"studentUsername": "this field is required",
			"studentPassword": "this field is required"
		}`)},
		{name: "weak password", token: tokens[credential.RoleAdmin], body: marchallObj(t, weak), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"facultyPassword": "password cannot be similar to the username"}`)},
		{name: "created", token: tokens[credential.RoleAdmin], body: marchallObj(t, newSubject("cs101", "Data Structures")), wantCode: http.StatusCreated},
		{name: "duplicate", token: tokens[credential.RoleAdmin], body: marchallObj(t, newSubject("cs101", "Data Structures")), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: subject.ErrSubjectExists.Error()})},
	}, http.MethodPost, "/api/subjects")
}

func Test_subjectApi_query(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)

	ds := testutil.CreateSubject(t, a.svc.Subject, "cs101", "Data Structures", "2022", "A")
	algo := testutil.CreateSubject(t, a.svc.Subject, "cs102", "Algorithms", "2022", "B")

	runTests(t, a, []httpTest{
		{name: "auth required", path: "/api/subjects", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "all", path: "/api/subjects", token: tokens[credential.RoleStudent], wantData: marchallObj(t, []subject.Subject{ds, algo})},
		{name: "by section", path: "/api/subjects?section=B", token: tokens[credential.RoleFaculty], wantData: marchallObj(t, []subject.Subject{algo})},
		{name: "by faculty", path: "/api/subjects?faculty=CS101_FAC", token: tokens[credential.RoleFaculty], wantData: marchallObj(t, []subject.Subject{ds})},
		{name: "no match", path: "/api/subjects?semester=8", token: tokens[credential.RoleAdmin], wantData: []byte(`[]`)},
		{name: "ordering", path: "/api/subjects?ordering=-code,lol", token: tokens[credential.RoleAdmin], wantData: marchallObj(t, []subject.Subject{algo, ds})},
	}, http.MethodGet, "")
}

func Test_subjectApi_destroy(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)

	subj := testutil.CreateSubject(t, a.svc.Subject, "cs101", "Data Structures", "2022", "A")
	tst := testutil.CreateTest(t, a.svc.Test, subj.ID, 1, "2022", "A")

	runTests(t, a, []httpTest{
		{name: "admin only", path: "/api/subjects/" + subj.ID, token: tokens[credential.RoleFaculty], wantCode: http.StatusForbidden},
		{name: "not found", path: "/api/subjects/lol", token: tokens[credential.RoleAdmin], wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "subject not found"})},
		{name: "deleted", path: "/api/subjects/" + subj.ID, token: tokens[credential.RoleAdmin], wantCode: http.StatusNoContent},
		{name: "already deleted", path: "/api/subjects/" + subj.ID, token: tokens[credential.RoleAdmin], wantCode: http.StatusNotFound},
	}, http.MethodDelete, "")

	_, err := a.svc.Test.GetByID(context.Background(), tst.ID)
	assert.Error(t, err)
}

func Test_subjectApi_publishAndReset(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	testutil.CreateSubject(t, a.svc.Subject, "cs101", "Data Structures", "2022", "A")

	runTests(t, a, []httpTest{
		{name: "published is public", method: http.MethodGet, path: "/api/subjects/published", wantData: []byte(`{"published": false}`)},
		{name: "publish: admin only", method: http.MethodPost, path: "/api/subjects/publish", token: tokens[credential.RoleFaculty], wantCode: http.StatusForbidden},
		{name: "publish", method: http.MethodPost, path: "/api/subjects/publish", token: tokens[credential.RoleAdmin], wantData: []byte(`{"published": true}`)},
		{name: "published", method: http.MethodGet, path: "/api/subjects/published", wantData: []byte(`{"published": true}`)},
		{name: "reset: admin only", method: http.MethodPost, path: "/api/subjects/reset", token: tokens[credential.RoleStudent], wantCode: http.StatusForbidden},
		{name: "reset", method: http.MethodPost, path: "/api/subjects/reset", token: tokens[credential.RoleAdmin],
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "All subjects have been deleted."})},
		{name: "unpublished by reset", method: http.MethodGet, path: "/api/subjects/published", wantData: []byte(`{"published": false}`)},
		{name: "no subjects left", method: http.MethodGet, path: "/api/subjects", token: tokens[credential.RoleAdmin], wantData: []byte(`[]`)},
	}, "", "")

	subjects, err := a.svc.Subject.Query(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, subjects)
}
