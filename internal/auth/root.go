package auth

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/crud_template/internal/models"
	"github.com/Skotchmaster/crud_template/internal/query"
)

const RootUsername = "root"

type rootInput struct {
	hash string
}

func (in rootInput) Entity() *models.User {
	return &models.User{Username: RootUsername, Name: RootUsername, Root: true, Password: in.hash}
}

// CreateRootUser inserts the bootstrap root account. A second call fails with
// a Conflict error.
func (s *Service) CreateRootUser(ctx context.Context, tx *gorm.DB, password string) (*models.User, error) {
	hash, err := s.Hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return query.New[models.User](tx).Create(ctx, rootInput{hash: hash})
}
