// Package query implements the generic create/read/list/update/delete service
// shared by every entity of the application.
package query

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/crud_template/internal/apperror"
)

// Entity is a persisted row keyed by a UUID assigned once at creation.
type Entity interface {
	GetID() uuid.UUID
	SetID(uuid.UUID)
}

// EntityPtr ties a model type to its pointer receiver implementing Entity.
type EntityPtr[T any] interface {
	*T
	Entity
}

// Input builds a fresh, not yet persisted entity out of request fields.
type Input[T any] interface {
	Entity() *T
}

// Patch reports only the fields the caller explicitly set, keyed by column.
type Patch interface {
	Fields() map[string]any
}

type Service[T any, PT EntityPtr[T]] struct {
	tx *gorm.DB
}

// New binds the service to the caller's session. The session is owned by the
// caller, the service keeps nothing across calls.
func New[T any, PT EntityPtr[T]](tx *gorm.DB) *Service[T, PT] {
	return &Service[T, PT]{tx: tx}
}

func (s *Service[T, PT]) Create(ctx context.Context, in Input[T]) (*T, error) {
	item := in.Entity()
	if item == nil {
		return nil, apperror.BadRequest("empty input")
	}
	PT(item).SetID(uuid.New())

	err := s.tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(item).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (s *Service[T, PT]) Read(ctx context.Context, id uuid.UUID) (*T, error) {
	item := new(T)
	if err := s.tx.WithContext(ctx).First(item, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (s *Service[T, PT]) List(ctx context.Context, page PageInput, filter Filter) (*PaginationData[T], error) {
	if err := page.Validate(); err != nil {
		return nil, err
	}

	base := s.tx.WithContext(ctx).Model(new(T))
	if filter != nil {
		base = filter.Apply(base)
	}
	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, translate(err)
	}

	fetch := base
	if sorter, ok := filter.(Sorter); ok {
		fetch = sorter.Sort(fetch)
	} else {
		fetch = fetch.Order("id")
	}

	items := make([]T, 0, page.Size)
	if err := fetch.Offset(page.Offset()).Limit(page.Size).Find(&items).Error; err != nil {
		return nil, translate(err)
	}

	return NewPage(items, total, page), nil
}

func (s *Service[T, PT]) ListAll(ctx context.Context) ([]T, error) {
	items := make([]T, 0)
	if err := s.tx.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, translate(err)
	}
	return items, nil
}

func (s *Service[T, PT]) Update(ctx context.Context, id uuid.UUID, patch Patch) (*T, error) {
	item := new(T)
	err := s.tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(item, "id = ?", id).Error; err != nil {
			return err
		}

		var fields map[string]any
		if patch != nil {
			fields = patch.Fields()
		}
		delete(fields, "id")
		if len(fields) == 0 {
			return nil
		}

		if err := tx.Model(item).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(item, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

func (s *Service[T, PT]) Delete(ctx context.Context, id uuid.UUID) (*GeneralResponse, error) {
	err := s.tx.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item := new(T)
		if err := tx.First(item, "id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(item).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &GeneralResponse{Detail: "Delete successfully."}, nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperror.NotFound("Not found")
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return apperror.New(apperror.ErrConflict, "record already exists")
	default:
		return err
	}
}

// isUniqueViolation catches drivers that do not translate their errors.
func isUniqueViolation(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
