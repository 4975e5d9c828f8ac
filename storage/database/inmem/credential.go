package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/adrap/core/credential"
)

type credentialRepository struct {
	db *DB
}

var _ credential.Repository = (*credentialRepository)(nil) // interface compliance check

func NewCredentialRepository(db *DB) *credentialRepository {
	return &credentialRepository{db: db}
}

func (repo credentialRepository) FindCredentials(_ context.Context, role, username string) ([]credential.Credential, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var creds []credential.Credential
	for _, c := range repo.db.credentials {
		if c.Role == role && c.Username == username {
			creds = append(creds, c)
		}
	}
	sort.Slice(creds, func(i, j int) bool { return creds[i].ID < creds[j].ID })
	return creds, nil
}

func (repo credentialRepository) UpsertAdmin(_ context.Context, cred credential.Credential) (credential.Credential, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for id, c := range repo.db.credentials {
		if c.Role == credential.RoleAdmin && c.Username == cred.Username {
			c.PasswordHash = cred.PasswordHash
			repo.db.credentials[id] = c
			return c, nil
		}
	}
	repo.db.credSeq++
	cred.ID = repo.db.credSeq
	cred.Role = credential.RoleAdmin
	cred.SubjectID = ""
	repo.db.credentials[cred.ID] = cred
	return cred, nil
}
