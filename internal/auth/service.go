// Package auth hashes passwords, issues and verifies JWT pairs and checks
// user credentials.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/crud_template/internal/apperror"
	"github.com/Skotchmaster/crud_template/internal/logging"
	"github.com/Skotchmaster/crud_template/internal/models"
	"github.com/Skotchmaster/crud_template/internal/query"
)

var errBadCredentials = apperror.New(apperror.ErrAuthenticationFailed, "Username or password is incorrect.")

type Service struct {
	Hasher *PasswordHasher
	Tokens *TokenManager
}

func NewService(hasher *PasswordHasher, tokens *TokenManager) *Service {
	return &Service{Hasher: hasher, Tokens: tokens}
}

// VerifyCredentials returns the user when username matches exactly and the
// password verifies. Both failures look the same to the caller.
func (s *Service) VerifyCredentials(ctx context.Context, tx *gorm.DB, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.verify_credentials", "username", username)

	var u models.User
	if err := tx.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown username")
			return nil, errBadCredentials
		}
		return nil, err
	}

	ok, err := s.Hasher.Verify(password, u.Password)
	if err != nil {
		l.Error("login_failed", "status", 401, "reason", "stored hash unreadable", "error", err)
		return nil, errBadCredentials
	}
	if !ok {
		l.Warn("login_failed", "status", 401, "reason", "wrong password")
		return nil, errBadCredentials
	}
	return &u, nil
}

func (s *Service) Login(ctx context.Context, tx *gorm.DB, username, password string) (*TokenPair, *models.User, error) {
	u, err := s.VerifyCredentials(ctx, tx, username, password)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.Tokens.IssuePair(u)
	if err != nil {
		return nil, nil, err
	}
	return pair, u, nil
}

// Refresh trades a valid refresh token for a new pair. The user is re-read so
// a deleted user cannot keep refreshing.
func (s *Service) Refresh(ctx context.Context, tx *gorm.DB, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Tokens.Verify(refreshToken, TypeRefresh)
	if err != nil {
		l.Warn("refresh_failed", "status", 401, "error", err)
		return nil, err
	}

	u, err := query.New[models.User](tx).Read(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			l.Warn("refresh_failed", "status", 401, "reason", "user gone", "user_id", claims.UserID)
			return nil, apperror.New(apperror.ErrAuthenticationFailed, "Token is incorrect.")
		}
		return nil, err
	}

	return s.Tokens.IssuePair(u)
}

func (s *Service) UpdatePassword(ctx context.Context, tx *gorm.DB, userID uuid.UUID, oldPassword, newPassword string) error {
	l := logging.FromContext(ctx).With("svc", "auth.update_password", "user_id", userID)

	return tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var u models.User
		if err := tx.First(&u, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("")
			}
			return err
		}

		ok, err := s.Hasher.Verify(oldPassword, u.Password)
		if err != nil || !ok {
			l.Warn("update_password_failed", "status", 401, "reason", "old password mismatch")
			return apperror.New(apperror.ErrAuthenticationFailed, "old password not correct.")
		}

		hash, err := s.Hasher.Hash(newPassword)
		if err != nil {
			return err
		}
		return tx.Model(&u).Update("password", hash).Error
	})
}
