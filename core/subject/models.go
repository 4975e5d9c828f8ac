package subject

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
)

type Subject struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	Name            string    `json:"name"`
	Semester        int       `json:"semester"`
	Batch           string    `json:"batch"`
	Section         string    `json:"section"`
	AcademicYear    string    `json:"academicYear"`
	StaffName       string    `json:"staffName"`
	FacultyUsername string    `json:"facultyUsername"`
	StudentUsername string    `json:"studentUsername"`
	CreatedAt       time.Time `json:"createdAt"` // UTC
}

// NewSubject contains information needed to register a Subject and issue its credentials.
type NewSubject struct {
	ID              string `json:"id" validate:"omitempty,max=100"`
	Code            string `json:"code" validate:"required,max=50"`
	Name            string `json:"name" validate:"required,max=255"`
	Semester        int    `json:"semester" validate:"required,min=1,max=12"`
	Batch           string `json:"batch" validate:"required,max=50"`
	Section         string `json:"section" validate:"required,max=10"`
	AcademicYear    string `json:"academicYear" validate:"required,max=50"`
	StaffName       string `json:"staffName" validate:"required,max=255"`
	FacultyUsername string `json:"facultyUsername" validate:"required"`
	FacultyPassword string `json:"facultyPassword" validate:"required"`
	StudentUsername string `json:"studentUsername" validate:"required"`
	StudentPassword string `json:"studentPassword" validate:"required"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.ID = core.CleanString(ns.ID)
	ns.Code = core.CleanString(ns.Code)
	ns.Name = core.CleanString(ns.Name)
	ns.Batch = core.CleanString(ns.Batch)
	ns.Section = core.CleanString(ns.Section)
	ns.AcademicYear = core.CleanString(ns.AcademicYear)
	ns.StaffName = core.CleanString(ns.StaffName)
	ns.FacultyUsername = core.CleanString(ns.FacultyUsername, true /* lower */)
	ns.StudentUsername = core.CleanString(ns.StudentUsername, true /* lower */)
	return validate.Struct(ns)
}

func (ns NewSubject) facultyCredential() credential.NewCredential {
	return credential.NewCredential{Role: credential.RoleFaculty, Username: ns.FacultyUsername, Password: ns.FacultyPassword}
}

func (ns NewSubject) studentCredential() credential.NewCredential {
	return credential.NewCredential{Role: credential.RoleStudent, Username: ns.StudentUsername, Password: ns.StudentPassword}
}

type QueryFilter struct {
	Semester        int    `query:"semester"`
	Batch           string `query:"batch"`
	Section         string `query:"section"`
	FacultyUsername string `query:"faculty"`
	StudentUsername string `query:"student"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Semester == 0 && qf.Batch == "" && qf.Section == "" && qf.FacultyUsername == "" && qf.StudentUsername == ""
}

func (qf *QueryFilter) Clean() {
	qf.Batch = core.CleanString(qf.Batch)
	qf.Section = core.CleanString(qf.Section)
	qf.FacultyUsername = core.CleanString(qf.FacultyUsername, true /* lower */)
	qf.StudentUsername = core.CleanString(qf.StudentUsername, true /* lower */)
}

// Orderable columns
var OrderingFields = map[string]string{
	"code":       "code",
	"name":       "name",
	"semester":   "semester",
	"batch":      "batch",
	"section":    "section",
	"created_at": "created_at",
}
