package credential

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/adrap/core"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

var AllRoles = []string{RoleAdmin, RoleFaculty, RoleStudent}

func IsRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Credential is a hashed secret granting one of the three roles.
// Faculty and student credentials belong to a Subject; the admin credential does not.
type Credential struct {
	ID           int64     `json:"id"`
	SubjectID    string    `json:"subjectId,omitempty"`
	Role         string    `json:"role"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"` // UTC
}

func (c *Credential) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), hashCost)
	if err != nil {
		return err
	}
	c.PasswordHash = hash
	return nil
}

func (c Credential) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(pwd))
}

// NewCredential contains information needed to issue a Credential.
type NewCredential struct {
	Role     string `json:"role" validate:"required,oneof=admin faculty student"`
	Username string `json:"username" validate:"required,min=3,max=100,alphanum_"`
	Password string `json:"password" validate:"required"`
}

func (nc *NewCredential) Validate(validate *validator.Validate) error {
	nc.Role = core.CleanString(nc.Role, true /* lower */)
	nc.Username = core.CleanString(nc.Username, true /* lower */)
	return validate.Struct(nc)
}
