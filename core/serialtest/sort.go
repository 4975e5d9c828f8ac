package serialtest

import (
	"sort"
	"strings"
)

// SortQuestions orders qs by the numeric prefix of their question number, then by a natural
// comparison of the whole number (so "11(a)(ii)" < "11(b)"), then byte-wise. The order is total.
func SortQuestions(qs []Question) {
	sort.SliceStable(qs, func(i, j int) bool {
		return CompareNumbers(qs[i].QuestionNumber, qs[j].QuestionNumber) < 0
	})
}

// SplitParts separates qs into Part A and Part B, keeping their order.
func SplitParts(qs []Question) (partA, partB []Question) {
	partA, partB = make([]Question, 0, len(qs)), make([]Question, 0, len(qs))
	for _, q := range qs {
		if q.Part == PartA {
			partA = append(partA, q)
		} else {
			partB = append(partB, q)
		}
	}
	return partA, partB
}

// CompareNumbers compares two question numbers; see SortQuestions.
func CompareNumbers(a, b string) int {
	if c := compareDigits(leadingDigits(a), leadingDigits(b)); c != 0 {
		return c
	}
	if c := naturalCompare(a, b); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}

func leadingDigits(s string) string {
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	return s[:end]
}

// compareDigits compares two runs of ASCII digits by value, without overflow. Empty counts as 0.
func compareDigits(a, b string) int {
	a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// naturalCompare walks both strings chunk by chunk: digit runs compare by value,
// everything else case-insensitively.
func naturalCompare(a, b string) int {
	for a != "" && b != "" {
		ca, restA := nextChunk(a)
		cb, restB := nextChunk(b)
		var c int
		if isDigit(ca[0]) && isDigit(cb[0]) {
			c = compareDigits(ca, cb)
		} else {
			c = strings.Compare(strings.ToLower(ca), strings.ToLower(cb))
		}
		if c != 0 {
			return c
		}
		a, b = restA, restB
	}
	switch {
	case a == "" && b == "":
		return 0
	case a == "":
		return -1
	default:
		return 1
	}
}

func nextChunk(s string) (chunk, rest string) {
	digit := isDigit(s[0])
	end := 1
	for end < len(s) && isDigit(s[end]) == digit {
		end++
	}
	return s[:end], s[end:]
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }
