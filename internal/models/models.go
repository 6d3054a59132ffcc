package models

import "github.com/google/uuid"

type User struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"           json:"id"`
	Username string    `gorm:"size:32;uniqueIndex;not null"   json:"username"`
	Email    *string   `gorm:"size:128"                       json:"email"`
	Name     string    `gorm:"size:32;not null"               json:"name"`
	Root     bool      `gorm:"not null;default:false"         json:"root"`
	Password string    `gorm:"size:128;not null"              json:"-"`
}

func (u *User) GetID() uuid.UUID { return u.ID }

func (u *User) SetID(id uuid.UUID) { u.ID = id }

// All lists every model the schema migration has to know about.
func All() []any {
	return []any{&User{}}
}
