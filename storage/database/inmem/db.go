package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/subject"
)

type recordKey struct {
	testID     int64
	rollNumber int64
}

// DB is a process-local store. One lock guards every table so multi-table writes are atomic.
type DB struct {
	mu sync.RWMutex

	subjects    map[string]subject.Subject
	credentials map[int64]credential.Credential
	tests       map[int64]serialtest.Test
	questions   map[int64][]serialtest.Question // by test id
	records     map[recordKey]marks.Record
	published   bool

	credSeq     int64
	testSeq     int64
	questionSeq int64
}

func Open() *DB {
	return &DB{
		subjects:    make(map[string]subject.Subject),
		credentials: make(map[int64]credential.Credential),
		tests:       make(map[int64]serialtest.Test),
		questions:   make(map[int64][]serialtest.Question),
		records:     make(map[recordKey]marks.Record),
	}
}

// PingContext always succeeds.
func (db *DB) PingContext(context.Context) error { return nil }

// deleteTest removes a test with its questions and mark records. Callers hold the write lock.
func (db *DB) deleteTest(id int64) {
	delete(db.tests, id)
	delete(db.questions, id)
	for k := range db.records {
		if k.testID == id {
			delete(db.records, k)
		}
	}
}

// deleteSubject removes a subject with its tests and credentials. Callers hold the write lock.
func (db *DB) deleteSubject(id string) {
	delete(db.subjects, id)
	for tid, t := range db.tests {
		if t.SubjectID == id {
			db.deleteTest(tid)
		}
	}
	for cid, c := range db.credentials {
		if c.SubjectID == id {
			delete(db.credentials, cid)
		}
	}
}

func cloneRecord(rec marks.Record) marks.Record {
	qm := make(map[string]float64, len(rec.QuestionMarks))
	for k, v := range rec.QuestionMarks {
		qm[k] = v
	}
	rec.QuestionMarks = qm
	return rec
}

func sortedKeys(m map[int64]serialtest.Test) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
