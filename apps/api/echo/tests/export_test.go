package tests

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/sheet"
	"github.com/trezcool/adrap/tests"
)

func Test_exportApi(t *testing.T) {
	a := setup(t)
	tokens := a.tokens(t)
	tst := newMarksTest(t, a)
	testutil.IngestRoster(t, a.svc.Marks, tst.ID, testutil.Roster(101, "Ravi", 100, "Asha"))
	_, err := a.svc.Marks.RecordMarks(context.Background(), tst.ID, 100, map[string]float64{"1": 2, "11": 7})
	require.NoError(t, err)

	jsonPath := fmt.Sprintf("/api/export/%d/export", tst.ID)
	xlsxPath := jsonPath + ".xlsx"

	runTests(t, a, []httpTest{
		{name: "auth required", path: jsonPath, wantCode: http.StatusUnauthorized},
		{name: "students not allowed", path: jsonPath, token: tokens[credential.RoleStudent], wantCode: http.StatusForbidden},
		{name: "students cannot download", path: xlsxPath, token: tokens[credential.RoleStudent], wantCode: http.StatusForbidden},
		{name: "unknown test", path: "/api/export/999/export", token: tokens[credential.RoleFaculty], wantCode: http.StatusNotFound},
		{name: "invalid id", path: "/api/export/lol/export.xlsx", token: tokens[credential.RoleFaculty], wantCode: http.StatusNotFound},
	}, http.MethodGet, "")

	t.Run("json", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, jsonPath, tokens[credential.RoleFaculty])
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var e sheet.Export
		unmarshall(t, rec.Body.Bytes(), &e)
		assert.Equal(t, tst.ID, e.Test.ID)
		assert.Equal(t, "cs101", e.Subject.Code)
		require.Len(t, e.Questions, 2)
		require.Len(t, e.Students, 2)
		assert.Equal(t, int64(100), e.Students[0].RollNumber)
		assert.Equal(t, 9.0, e.Students[0].Total)
		assert.False(t, e.Students[1].Submitted)
		assert.Equal(t, 0.0, e.Students[1].Total)
	})

	t.Run("xlsx", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, xlsxPath, tokens[credential.RoleAdmin])
		a.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
		assert.Equal(t, `attachment; filename="cs101_ST1_2022_A_marks.xlsx"`, rec.Header().Get("Content-Disposition"))

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()

		rows, err := f.GetRows(sheet.Name)
		require.NoError(t, err)
		require.Len(t, rows, 11)
		assert.Equal(t, []string{"Subject Code:", "cs101"}, rows[2])
		assert.Equal(t, []string{"Register Number", "Name", "Submitted", "Q1", "Q11", "Total Marks"}, rows[7][:6])
		assert.Equal(t, []string{"100", "Asha", "Yes", "2", "7", "9", "", "2", "7", "0", "0", "0"}, rows[9])
		assert.Equal(t, []string{"101", "Ravi", "No", "0", "0", "0", "", "0", "0", "0", "0", "0"}, rows[10])
	})
}
