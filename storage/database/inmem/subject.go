package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) CreateSubject(_ context.Context, subj subject.Subject, creds []credential.Credential) (subject.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.subjects[subj.ID]; ok {
		return subject.Subject{}, subject.ErrIDExists
	}
	for _, s := range repo.db.subjects {
		if s.Code == subj.Code && s.Name == subj.Name {
			return subject.Subject{}, subject.ErrSubjectExists
		}
	}

	repo.db.subjects[subj.ID] = subj
	for _, c := range creds {
		repo.db.credSeq++
		c.ID = repo.db.credSeq
		c.SubjectID = subj.ID
		repo.db.credentials[c.ID] = c
	}
	return subj, nil
}

func (repo subjectRepository) QuerySubjects(_ context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subjects := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		if filter != nil && !matchSubject(s, filter) {
			continue
		}
		subjects = append(subjects, s)
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "created_at", Ascending: true}}
	}
	sort.SliceStable(subjects, func(i, j int) bool { return lessSubject(subjects[i], subjects[j], ordering) })
	return subjects, nil
}

func matchSubject(s subject.Subject, f *subject.QueryFilter) bool {
	return (f.Semester == 0 || s.Semester == f.Semester) &&
		(f.Batch == "" || s.Batch == f.Batch) &&
		(f.Section == "" || s.Section == f.Section) &&
		(f.FacultyUsername == "" || s.FacultyUsername == f.FacultyUsername) &&
		(f.StudentUsername == "" || s.StudentUsername == f.StudentUsername)
}

func lessSubject(a, b subject.Subject, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		var c int
		switch ord.Field {
		case "code":
			c = strings.Compare(a.Code, b.Code)
		case "name":
			c = strings.Compare(a.Name, b.Name)
		case "semester":
			c = a.Semester - b.Semester
		case "batch":
			c = strings.Compare(a.Batch, b.Batch)
		case "section":
			c = strings.Compare(a.Section, b.Section)
		case "created_at":
			switch {
			case a.CreatedAt.Before(b.CreatedAt):
				c = -1
			case a.CreatedAt.After(b.CreatedAt):
				c = 1
			}
		}
		if c != 0 {
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
	}
	return a.ID < b.ID
}

func (repo subjectRepository) GetSubject(_ context.Context, id string) (subject.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if s, ok := repo.db.subjects[id]; ok {
		return s, nil
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo subjectRepository) DeleteSubject(_ context.Context, id string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.subjects[id]; !ok {
		return subject.ErrNotFound
	}
	repo.db.deleteSubject(id)
	return nil
}

func (repo subjectRepository) ResetSubjects(_ context.Context) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id := range repo.db.subjects {
		repo.db.deleteSubject(id)
	}
	for id, c := range repo.db.credentials {
		if c.Role != credential.RoleAdmin {
			delete(repo.db.credentials, id)
		}
	}
	repo.db.published = false
	return nil
}

func (repo subjectRepository) SetPublished(_ context.Context, published bool) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.published = published
	return nil
}

func (repo subjectRepository) IsPublished(_ context.Context) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.db.published, nil
}
