package transport

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/crud_template/internal/models"
)

type UserCreate struct {
	Username string  `json:"username" validate:"required,max=32"`
	Email    *string `json:"email"    validate:"omitempty,email,max=128"`
	Name     string  `json:"name"     validate:"required,max=32"`
	Password string  `json:"password" validate:"required,max=128"`
}

// Entity expects Password to already hold the hash. New users are never root.
func (in UserCreate) Entity() *models.User {
	return &models.User{
		Username: in.Username,
		Email:    in.Email,
		Name:     in.Name,
		Password: in.Password,
		Root:     false,
	}
}

type UserRead struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    *string   `json:"email"`
	Name     string    `json:"name"`
	Root     bool      `json:"root"`
}

func NewUserRead(u models.User) UserRead {
	return UserRead{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Name:     u.Name,
		Root:     u.Root,
	}
}

// UserUpdate is what a root user may change on any account.
type UserUpdate struct {
	Email *string `json:"email" validate:"omitempty,email,max=128"`
	Name  *string `json:"name"  validate:"omitempty,max=32"`
	Root  *bool   `json:"root"`
}

func (p UserUpdate) Fields() map[string]any {
	fields := map[string]any{}
	if p.Email != nil {
		fields["email"] = *p.Email
	}
	if p.Name != nil {
		fields["name"] = *p.Name
	}
	if p.Root != nil {
		fields["root"] = *p.Root
	}
	return fields
}

// UserProfile is what a user may change on their own account.
type UserProfile struct {
	Email *string `json:"email" validate:"omitempty,email,max=128"`
	Name  *string `json:"name"  validate:"omitempty,max=32"`
}

func (p UserProfile) Fields() map[string]any {
	return UserUpdate{Email: p.Email, Name: p.Name}.Fields()
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type PasswordChange struct {
	OldPassword string `json:"old_password" query:"old_password" validate:"required"`
	NewPassword string `json:"new_password" query:"new_password" validate:"required,max=128"`
}
