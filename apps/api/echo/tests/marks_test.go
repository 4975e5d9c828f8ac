package tests

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/adrap/apps/api/echo"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/services/spreadsheet"
	"github.com/trezcool/adrap/tests"
)

// newMarksTest creates a test with questions 1 (CO1, max 2) and 11 (CO2, max 10).
func newMarksTest(t *testing.T, a app) serialtest.Test {
	subj := testutil.CreateSubject(t, a.svc.Subject, "cs101", "Data Structures", "2022", "A")
	tst := testutil.CreateTest(t, a.svc.Test, subj.ID, 1, "2022", "A")
	testutil.AttachQuestions(t, a.svc.Test, tst.ID, testutil.Question("1", 1, 2), testutil.Question("11", 2, 10))
	return tst
}

func Test_marksApi_ingest(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	tst := newMarksTest(t, a)

	body := func(testID int64, rows string) []byte {
		return []byte(fmt.Sprintf(`{"testId": %d, "studentMarks": [%s]}`, testID, rows))
	}

	runTests(t, a, []httpTest{
		{name: "students not allowed", token: tokens[credential.RoleStudent], body: body(tst.ID, `{"rollNumber": 100, "name": "Asha"}`), wantCode: http.StatusForbidden},
		{name: "empty roster", token: tokens[credential.RoleFaculty], body: body(tst.ID, ``), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"studentMarks": "no student marks provided"}`)},
		{name: "unknown test", token: tokens[credential.RoleFaculty], body: body(999, `{"rollNumber": 100, "name": "Asha"}`), wantCode: http.StatusNotFound},
		{name: "invalid rows", token: tokens[credential.RoleFaculty],
			body:     body(tst.ID, `{"rollNumber": 100, "name": "Asha"}, {"rollNumber": "100", "name": "Ravi"}, {"rollNumber": -5, "name": "Mani"}`),
			wantCode: http.StatusBadRequest, wantData: []byte(`{
				"studentMarks[1].rollNumber": "roll number is repeated",
				"studentMarks[2].rollNumber": "rollNumber must be a positive whole number"
			}`)},
		{name: "created", token: tokens[credential.RoleFaculty],
			body: body(tst.ID, `{"rollNumber": 101, "name": "Ravi"}, {"rollNumber": "100", "name": " Asha "}`), wantCode: http.StatusCreated},
		{name: "second roster", token: tokens[credential.RoleAdmin], body: body(tst.ID, `{"rollNumber": 102, "name": "Mani"}`), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: marks.ErrRosterExists.Error()})},
	}, http.MethodPost, "/api/studentmarks")

	recs, err := a.svc.Marks.Records(context.Background(), tst.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Asha", recs[0].Name)
	assert.Equal(t, int64(101), recs[1].RollNumber)
}

func newUploadRequest(t *testing.T, token, testID string, file []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if testID != "" {
		require.NoError(t, w.WriteField("testId", testID))
	}
	if file != nil {
		fw, err := w.CreateFormFile("file", "roster.xlsx")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/studentmarks/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	return req, httptest.NewRecorder()
}

func rosterWorkbook(t *testing.T, rows ...[]interface{}) []byte {
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		row := row
		require.NoError(t, f.SetSheetRow(f.GetSheetName(0), cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func Test_marksApi_upload(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	tst := newMarksTest(t, a)
	testID := strconv.FormatInt(tst.ID, 10)

	valid := rosterWorkbook(t,
		[]interface{}{spreadsheet.RollHeader, spreadsheet.NameHeader},
		[]interface{}{100, "Asha"},
		[]interface{}{101, "Ravi"},
	)
	invalid := rosterWorkbook(t,
		[]interface{}{spreadsheet.RollHeader, spreadsheet.NameHeader},
		[]interface{}{"A-12", "Asha"},
	)

	tests := []struct {
		name     string
		token    string
		testID   string
		file     []byte
		wantCode int
		wantData []byte
	}{
		{name: "students not allowed", token: tokens[credential.RoleStudent], testID: testID, file: valid, wantCode: http.StatusForbidden},
		{name: "missing test id", token: tokens[credential.RoleFaculty], file: valid, wantCode: http.StatusBadRequest,
			wantData: []byte(`{"testId": "must be a positive whole number"}`)},
		{name: "missing file", token: tokens[credential.RoleFaculty], testID: testID, wantCode: http.StatusBadRequest,
			wantData: []byte(`{"file": "this field is required"}`)},
		{name: "not a workbook", token: tokens[credential.RoleFaculty], testID: testID, file: []byte("lol"), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"file": "not a valid xlsx workbook"}`)},
		{name: "invalid roll number", token: tokens[credential.RoleFaculty], testID: testID, file: invalid, wantCode: http.StatusBadRequest,
			wantData: []byte(`{"studentMarks[0].rollNumber": "rollNumber must be a positive whole number"}`)},
		{name: "uploaded", token: tokens[credential.RoleFaculty], testID: testID, file: valid, wantCode: http.StatusCreated},
		{name: "second upload", token: tokens[credential.RoleFaculty], testID: testID, file: valid, wantCode: http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newUploadRequest(t, tt.token, tt.testID, tt.file)
			a.ServeHTTP(rec, req)
			checkCodeAndData(t, httpTest{wantCode: tt.wantCode, wantData: tt.wantData}, rec)
		})
	}

	recs, err := a.svc.Marks.Records(context.Background(), tst.ID)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "Ravi", recs[1].Name)
}

func Test_marksApi_submitAndReset(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	tst := newMarksTest(t, a)
	testutil.IngestRoster(t, a.svc.Marks, tst.ID, testutil.Roster(100, "Asha", 101, "Ravi"))

	submission := func(roll int64, qm map[string]float64) []byte {
		return marchallObj(t, marks.Submission{TestID: tst.ID, RollNumber: roll, QuestionMarks: qm})
	}
	resetPath := func(roll int64) string {
		return fmt.Sprintf("/api/studentmarks/%d/%d/reset", tst.ID, roll)
	}

	runTests(t, a, []httpTest{
		{name: "admin cannot submit", method: http.MethodPut, path: "/api/studentmarks/update", token: tokens[credential.RoleAdmin],
			body: submission(100, map[string]float64{"1": 2}), wantCode: http.StatusForbidden},
		{name: "unknown student", method: http.MethodPut, path: "/api/studentmarks/update", token: tokens[credential.RoleStudent],
			body: submission(999, map[string]float64{"1": 2}), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"})},
		{name: "mark above maximum", method: http.MethodPut, path: "/api/studentmarks/update", token: tokens[credential.RoleStudent],
			body: submission(100, map[string]float64{"1": 3, "11": 7}), wantCode: http.StatusBadRequest,
			wantData: []byte(`{"questionMarks.1": "mark exceeds the maximum of 2"}`)},
		{name: "submitted", method: http.MethodPut, path: "/api/studentmarks/update", token: tokens[credential.RoleStudent],
			body: submission(100, map[string]float64{"1": 2, "11": 7})},
		{name: "already submitted", method: http.MethodPut, path: "/api/studentmarks/update", token: tokens[credential.RoleFaculty],
			body: submission(100, map[string]float64{"1": 1}), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: marks.ErrAlreadySubmitted.Error()})},
		{name: "reset: students not allowed", method: http.MethodPost, path: resetPath(100), token: tokens[credential.RoleStudent], wantCode: http.StatusForbidden},
		{name: "reset: unknown student", method: http.MethodPost, path: resetPath(999), token: tokens[credential.RoleFaculty], wantCode: http.StatusNotFound},
		{name: "reset: invalid roll number", method: http.MethodPost, path: fmt.Sprintf("/api/studentmarks/%d/lol/reset", tst.ID),
			token: tokens[credential.RoleFaculty], wantCode: http.StatusNotFound},
		{name: "reset", method: http.MethodPost, path: resetPath(100), token: tokens[credential.RoleFaculty]},
		{name: "reset again", method: http.MethodPost, path: resetPath(100), token: tokens[credential.RoleAdmin]},
		{name: "submitted again", method: http.MethodPut, path: "/api/studentmarks/update", token: tokens[credential.RoleStudent],
			body: submission(100, map[string]float64{"1": 1})},
	}, "", "")

	recs, err := a.svc.Marks.Records(context.Background(), tst.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"1": 1}, recs[0].QuestionMarks)
	assert.Equal(t, marks.Totals{1, 0, 0, 0, 0}, recs[0].OutcomeTotals)
}

func Test_marksApi_submitResponse(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	tst := newMarksTest(t, a)
	testutil.IngestRoster(t, a.svc.Marks, tst.ID, testutil.Roster(100, "Asha"))

	body := marchallObj(t, marks.Submission{TestID: tst.ID, RollNumber: 100, QuestionMarks: map[string]float64{"1": 2, "11": 7}})
	req, rec := newAuthRequest(http.MethodPut, "/api/studentmarks/update", tokens[credential.RoleStudent], body)
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp echoapi.RecordResponse
	unmarshall(t, rec.Body.Bytes(), &resp)
	assert.Equal(t, "Student marks updated successfully", resp.Message)
	assert.True(t, resp.Student.Submitted)
	assert.Equal(t, marks.Totals{2, 7, 0, 0, 0}, resp.Student.OutcomeTotals)

	req, rec = newAuthRequest(http.MethodPost, fmt.Sprintf("/api/studentmarks/%d/100/reset", tst.ID), tokens[credential.RoleFaculty])
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp = echoapi.RecordResponse{}
	unmarshall(t, rec.Body.Bytes(), &resp)
	assert.Equal(t, "Student marks reset successfully", resp.Message)
	assert.False(t, resp.Student.Submitted)
	assert.Empty(t, resp.Student.QuestionMarks)
}

func Test_marksApi_entry(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	tst := newMarksTest(t, a)
	testutil.IngestRoster(t, a.svc.Marks, tst.ID, testutil.Roster(100, "Asha"))

	path := func(section string, roll int64) string {
		v := make(url.Values)
		v.Set("subjectId", tst.SubjectID)
		v.Set("serialTestNumber", "1")
		v.Set("batch", "2022")
		v.Set("section", section)
		v.Set("rollNumber", strconv.FormatInt(roll, 10))
		return "/api/studentTest?" + v.Encode()
	}

	runTests(t, a, []httpTest{
		{name: "auth required", path: path("A", 100), wantCode: http.StatusUnauthorized},
		{name: "invalid query", path: "/api/studentTest?serialTestNumber=3", token: tokens[credential.RoleStudent], wantCode: http.StatusBadRequest},
		{name: "unknown test", path: path("B", 100), token: tokens[credential.RoleStudent], wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "test not found"})},
		{name: "unknown student", path: path("A", 999), token: tokens[credential.RoleStudent], wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "student not found"})},
	}, http.MethodGet, "")

	req, rec := newAuthRequest(http.MethodGet, path("A", 100), tokens[credential.RoleStudent])
	a.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var entry marks.Entry
	unmarshall(t, rec.Body.Bytes(), &entry)
	assert.Equal(t, tst.ID, entry.Test.ID)
	assert.Equal(t, "cs101", entry.Test.SubjectCode)
	assert.Equal(t, "Asha", entry.StudentName)
	require.Len(t, entry.Questions.PartA, 1)
	require.Len(t, entry.Questions.PartB, 1)

	_, err := a.svc.Marks.RecordMarks(context.Background(), tst.ID, 100, map[string]float64{"1": 2})
	require.NoError(t, err)

	req, rec = newAuthRequest(http.MethodGet, path("A", 100), tokens[credential.RoleStudent])
	a.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
