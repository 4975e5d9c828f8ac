package credential

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core"
)

var errInvalidRole = errors.New("invalid role")

type (
	Repository interface {
		// FindCredentials returns every credential issued for username under role.
		FindCredentials(ctx context.Context, role, username string) ([]Credential, error)
		// UpsertAdmin replaces the admin credential with the same username, or creates it.
		UpsertAdmin(ctx context.Context, cred Credential) (Credential, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

// Issue validates nc against the password policy and returns the hashed, unsaved Credential.
func (svc *Service) Issue(nc NewCredential) (Credential, error) {
	if err := nc.Validate(svc.validate); err != nil {
		return Credential{}, err
	}
	cred := Credential{
		Role:      nc.Role,
		Username:  nc.Username,
		CreatedAt: time.Now().UTC(),
	}
	if err := cred.SetPassword(nc.Password); err != nil {
		return Credential{}, errors.Wrap(err, "hashing password")
	}
	return cred, nil
}

// Verify reports whether password matches any credential issued for (role, username).
func (svc *Service) Verify(ctx context.Context, role, username, password string) (bool, error) {
	role = core.CleanString(role, true /* lower */)
	if !IsRole(role) {
		return false, core.NewValidationError(nil, core.FieldError{Field: "role", Error: errInvalidRole.Error()})
	}
	username = core.CleanString(username, true /* lower */)
	if username == "" || password == "" {
		return false, nil
	}

	creds, err := svc.repo.FindCredentials(ctx, role, username)
	if err != nil {
		return false, errors.Wrap(err, "finding credentials")
	}
	for _, cred := range creds {
		if cred.CheckPassword(password) == nil {
			return true, nil
		}
	}
	return false, nil
}

// SetAdmin creates or replaces the admin credential for username.
func (svc *Service) SetAdmin(ctx context.Context, username, password string) (Credential, error) {
	cred, err := svc.Issue(NewCredential{Role: RoleAdmin, Username: username, Password: password})
	if err != nil {
		return Credential{}, err
	}
	cred, err = svc.repo.UpsertAdmin(ctx, cred)
	return cred, errors.Wrap(err, "saving admin credential")
}
