package serialtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareNumbers(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want int
	}{
		{name: "equal", a: "11", b: "11", want: 0},
		{name: "numeric prefix", a: "2", b: "11", want: -1},
		{name: "leading zeros", a: "011", b: "12", want: -1},
		{name: "no prefix sorts first", a: "a", b: "1", want: -1},
		{name: "sub-parts", a: "11(a)(ii)", b: "11(b)", want: -1},
		{name: "roman sub-parts", a: "12(a)(i)", b: "12(a)(ii)", want: -1},
		{name: "bare before sub-part", a: "11", b: "11(a)", want: -1},
		{name: "case-insensitive then byte-wise", a: "11A", b: "11a", want: -1},
		{name: "huge numbers", a: "99999999999999999999", b: "100000000000000000000", want: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CompareNumbers(tt.a, tt.b))
			assert.Equal(t, -tt.want, CompareNumbers(tt.b, tt.a))
		})
	}
}

func TestSortQuestions(t *testing.T) {
	numbers := func(qs []Question) []string {
		out := make([]string, len(qs))
		for i, q := range qs {
			out[i] = q.QuestionNumber
		}
		return out
	}
	qs := []Question{
		{QuestionNumber: "11(b)"},
		{QuestionNumber: "2"},
		{QuestionNumber: "12(a)(ii)"},
		{QuestionNumber: "10"},
		{QuestionNumber: "1"},
		{QuestionNumber: "11(a)(ii)"},
		{QuestionNumber: "12(a)(i)"},
		{QuestionNumber: "11(a)(i)"},
	}
	SortQuestions(qs)
	assert.Equal(t, []string{"1", "2", "10", "11(a)(i)", "11(a)(ii)", "11(b)", "12(a)(i)", "12(a)(ii)"}, numbers(qs))
}

func TestSplitParts(t *testing.T) {
	qs := []Question{
		{QuestionNumber: "1", Part: PartA},
		{QuestionNumber: "11", Part: PartB},
		{QuestionNumber: "2", Part: PartA},
		{QuestionNumber: "12", Part: PartB},
	}
	partA, partB := SplitParts(qs)
	assert.Equal(t, []Question{qs[0], qs[2]}, partA)
	assert.Equal(t, []Question{qs[1], qs[3]}, partB)

	partA, partB = SplitParts(nil)
	assert.Empty(t, partA)
	assert.Empty(t, partB)
}
