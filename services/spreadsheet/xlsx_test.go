package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/sheet"
)

func workbook(t *testing.T, rows ...[]interface{}) *bytes.Buffer {
	t.Helper()
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
	return &buf
}

func TestReadRoster(t *testing.T) {
	tests := []struct {
		name      string
		file      func(t *testing.T) *bytes.Buffer
		want      []marks.RosterRow
		wantField bool
	}{
		{
			name: "not a workbook",
			file: func(t *testing.T) *bytes.Buffer {
				return bytes.NewBufferString("Register Number,Name\n100,Asha\n")
			},
			wantField: true,
		},
		{
			name: "missing headers",
			file: func(t *testing.T) *bytes.Buffer {
				return workbook(t, []interface{}{"Roll", "Student"}, []interface{}{100, "Asha"})
			},
			wantField: true,
		},
		{
			name: "header row only",
			file: func(t *testing.T) *bytes.Buffer {
				return workbook(t, []interface{}{RollHeader, NameHeader})
			},
			want: []marks.RosterRow{},
		},
		{
			name: "rows below the header",
			file: func(t *testing.T) *bytes.Buffer {
				return workbook(t,
					[]interface{}{"CS101 roll list"},
					[]interface{}{},
					[]interface{}{"S.No", " name ", "REGISTER NUMBER"},
					[]interface{}{1, "Asha ", 100},
					[]interface{}{2, "Ravi", "101"},
					[]interface{}{nil, nil, nil},
					[]interface{}{3, "Mani", nil},
				)
			},
			want: []marks.RosterRow{
				{RollNumber: "100", Name: "Asha"},
				{RollNumber: "101", Name: "Ravi"},
				{RollNumber: "", Name: "Mani"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadRoster(tt.file(t))
			if tt.wantField {
				vErr, ok := err.(*core.ValidationError)
				require.True(t, ok, "error = %v", err)
				assert.Equal(t, "file", vErr.Fields[0].Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWriteXLSX(t *testing.T) {
	s := sheet.Sheet{
		Metadata:      [][]interface{}{{"Subject Code:", "CS101"}, {"Serial Test:", 1}},
		Header:        []string{"Register Number", "Name", "Submitted", "Q1", "Total Marks"},
		OutcomeHeader: []string{"", "", "", "CO1", ""},
		Rows: [][]interface{}{
			{int64(100), "Asha", "Yes", 1.5, 1.5},
			{int64(101), "Ravi", "No", 0.0, 0.0},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, s))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheet.Name}, f.GetSheetList())
	rows, err := f.GetRows(sheet.Name)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	assert.Equal(t, []string{"Subject Code:", "CS101"}, rows[0])
	assert.Equal(t, []string{"Serial Test:", "1"}, rows[1])
	assert.Empty(t, strings.Join(rows[2], ""))
	assert.Equal(t, s.Header, rows[3])
	assert.Equal(t, "CO1", rows[4][3])
	assert.Equal(t, []string{"100", "Asha", "Yes", "1.5", "1.5"}, rows[5])
	assert.Equal(t, []string{"101", "Ravi", "No", "0", "0"}, rows[6])
}

func TestWriteXLSX_roundTripRoster(t *testing.T) {
	s := sheet.Sheet{
		Header: []string{RollHeader, NameHeader},
		Rows:   [][]interface{}{{int64(100), "Asha"}, {int64(101), "Ravi"}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, s))

	got, err := ReadRoster(&buf)
	require.NoError(t, err)
	assert.Equal(t, []marks.RosterRow{{RollNumber: "100", Name: "Asha"}, {RollNumber: "101", Name: "Ravi"}}, got)
}
