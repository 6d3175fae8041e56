package services

import (
	"testing"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"

	"github.com/stretchr/testify/assert"
)

type fakeUserRepo struct {
	repositories.UserRepository
	lookups int
}

func (r *fakeUserRepo) GetUserByUsername(string) (*models.User, error) {
	r.lookups++
	return nil, repositories.ErrNotFound
}

func TestLoginRejectsBlankCredentialsWithoutLookup(t *testing.T) {
	repo := &fakeUserRepo{}
	svc := NewAuthService(repo)

	_, err := svc.Login(LoginRequest{Username: "   ", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(LoginRequest{Username: "kasir", Password: ""})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Zero(t, repo.lookups)

	_, err = svc.Login(LoginRequest{Username: "ghost", Password: "secret123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 1, repo.lookups)
}
