package tests

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/adrap/apps/api/echo"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/tests"
)

func Test_serialTestApi_create(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	subj := testutil.CreateSubject(t, a.svc.Subject, "cs101", "Data Structures", "2022", "A")

	nt := serialtest.NewTest{SubjectID: subj.ID, SerialTestNumber: 1, Batch: "2022", Section: "A"}
	runTests(t, a, []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized},
		{name: "students cannot create tests", token: tokens[credential.RoleStudent], body: marchallObj(t, nt), wantCode: http.StatusForbidden},
		{name: "invalid", token: tokens[credential.RoleFaculty], body: []byte(`{"subjectId": "x", "serialTestNumber": 3, "batch": "2022", "section": "A"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{"serialTestNumber": "serialTestNumber must be one of [1 2]"}`)},
		{name: "unknown subject", token: tokens[credential.RoleFaculty], body: []byte(`{"subjectId": "lol", "serialTestNumber": 1, "batch": "2022", "section": "A"}`),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "subject not found"})},
		{name: "created by faculty", token: tokens[credential.RoleFaculty], body: marchallObj(t, nt), wantCode: http.StatusCreated},
		{name: "duplicate", token: tokens[credential.RoleAdmin], body: marchallObj(t, nt), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: serialtest.ErrTestExists.Error()})},
	}, http.MethodPost, "/api/serialtests")
}

func Test_serialTestApi_queryAndDestroy(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	subj := testutil.CreateSubject(t, a.svc.Subject, "cs101", "Data Structures", "2022", "A")
	st1 := testutil.CreateTest(t, a.svc.Test, subj.ID, 1, "2022", "A")
	st2 := testutil.CreateTest(t, a.svc.Test, subj.ID, 2, "2022", "A")
	path := "/api/serialtests/" + strconv.FormatInt(st1.ID, 10)

	runTests(t, a, []httpTest{
		{name: "all", method: http.MethodGet, path: "/api/serialtests", token: tokens[credential.RoleStudent], wantData: marchallObj(t, []serialtest.Test{st1, st2})},
		{name: "filtered", method: http.MethodGet, path: "/api/serialtests?subjectId=" + subj.ID + "&serialTestNumber=2&batch=2022&section=A",
			token: tokens[credential.RoleStudent], wantData: marchallObj(t, []serialtest.Test{st2})},
		{name: "no match", method: http.MethodGet, path: "/api/serialtests?section=Z", token: tokens[credential.RoleStudent], wantData: []byte(`[]`)},
		{name: "delete: students not allowed", method: http.MethodDelete, path: path, token: tokens[credential.RoleStudent], wantCode: http.StatusForbidden},
		{name: "delete: invalid id", method: http.MethodDelete, path: "/api/serialtests/lol", token: tokens[credential.RoleFaculty], wantCode: http.StatusNotFound},
		{name: "delete", method: http.MethodDelete, path: path, token: tokens[credential.RoleFaculty], wantCode: http.StatusNoContent},
		{name: "delete: unknown", method: http.MethodDelete, path: path, token: tokens[credential.RoleAdmin], wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "test not found"})},
	}, "", "")
}

func Test_questionApi(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	subj := testutil.CreateSubject(t, a.svc.Subject, "cs101", "Data Structures", "2022", "A")
	tst := testutil.CreateTest(t, a.svc.Test, subj.ID, 1, "2022", "A")
	path := "/api/questions/" + strconv.FormatInt(tst.ID, 10)

	body := func(nqs ...serialtest.NewQuestion) []byte {
		return marchallObj(t, echoapi.AttachQuestionsRequest{TestID: tst.ID, Questions: nqs})
	}

	runTests(t, a, []httpTest{
		{name: "part A template", method: http.MethodGet, path: "/api/questions/part-a", token: tokens[credential.RoleStudent],
			wantData: marchallObj(t, serialtest.DefaultPartA())},
		{name: "attach: students not allowed", method: http.MethodPost, path: "/api/questions", token: tokens[credential.RoleStudent],
			body: body(testutil.Question("1", 1, 2)), wantCode: http.StatusForbidden},
		{name: "attach: no questions", method: http.MethodPost, path: "/api/questions", token: tokens[credential.RoleFaculty],
			body: body(), wantCode: http.StatusBadRequest, wantData: []byte(`{"questions": "no questions provided"}`)},
		{name: "attach: invalid question", method: http.MethodPost, path: "/api/questions", token: tokens[credential.RoleFaculty],
			body: []byte(`{"testId": ` + strconv.FormatInt(tst.ID, 10) + `, "questions": [{"questionNumber": "11", "part": "C", "co": 2, "maxMarks": 0}]}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{
				"questions[0].part": "part must be one of [A B]",
				"questions[0].maxMarks": "maxMarks must be greater than 0"
			}`)},
		{name: "attach: unknown test", method: http.MethodPost, path: "/api/questions", token: tokens[credential.RoleFaculty],
			body: []byte(`{"testId": 999, "questions": [{"questionNumber": "1", "part": "A", "co": 1, "maxMarks": 2}]}`), wantCode: http.StatusNotFound},
		{name: "attach", method: http.MethodPost, path: "/api/questions", token: tokens[credential.RoleFaculty],
			body: body(testutil.Question("11(b)", 3, 8), testutil.Question("1", 1, 2), testutil.Question("11(a)", 2, 8)), wantCode: http.StatusCreated},
		{name: "query: unknown test", method: http.MethodGet, path: "/api/questions/999", token: tokens[credential.RoleStudent], wantCode: http.StatusNotFound},
	}, "", "")

	req, rec := newAuthRequest(http.MethodGet, path, tokens[credential.RoleStudent])
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var qs []serialtest.Question
	unmarshall(t, rec.Body.Bytes(), &qs)
	require.Len(t, qs, 3)
	assert.Equal(t, "1", qs[0].QuestionNumber)
	assert.Equal(t, "11(a)", qs[1].QuestionNumber)
	assert.Equal(t, "11(b)", qs[2].QuestionNumber)
	assert.Equal(t, serialtest.PartB, qs[2].Part)
	assert.Equal(t, 3, qs[2].Outcome)
}
