package query_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/crud_template/internal/apperror"
	"github.com/Skotchmaster/crud_template/internal/dbtest"
	"github.com/Skotchmaster/crud_template/internal/models"
	"github.com/Skotchmaster/crud_template/internal/query"
)

type userInput struct {
	username string
	name     string
}

func (in userInput) Entity() *models.User {
	return &models.User{Username: in.username, Name: in.name, Password: "x"}
}

type namePatch struct {
	name *string
}

func (p namePatch) Fields() map[string]any {
	fields := map[string]any{}
	if p.name != nil {
		fields["name"] = *p.name
	}
	return fields
}

func seed(t *testing.T, svc *query.Service[models.User, *models.User], n int) []*models.User {
	t.Helper()
	out := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := svc.Create(context.Background(), userInput{username: fmt.Sprintf("user%02d", i), name: "n"})
		require.NoError(t, err)
		out = append(out, u)
	}
	return out
}

func TestCreateAndRead(t *testing.T) {
	ctx := context.Background()
	svc := query.New[models.User](dbtest.New(t))

	created, err := svc.Create(ctx, userInput{username: "alice", name: "Alice"})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.Read(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, created.ID, got.ID)
}

func TestCreate_DuplicateConflict(t *testing.T) {
	ctx := context.Background()
	svc := query.New[models.User](dbtest.New(t))

	_, err := svc.Create(ctx, userInput{username: "alice", name: "a"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, userInput{username: "alice", name: "b"})
	require.ErrorIs(t, err, apperror.ErrConflict)
}

func TestRead_NotFound(t *testing.T) {
	svc := query.New[models.User](dbtest.New(t))

	_, err := svc.Read(context.Background(), uuid.New())
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestList_Pages(t *testing.T) {
	ctx := context.Background()
	svc := query.New[models.User](dbtest.New(t))
	seed(t, svc, 25)

	first, err := svc.List(ctx, query.PageInput{Index: 1, Size: 10}, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 25, first.TotalCount)
	assert.EqualValues(t, 3, first.TotalPage)
	assert.Equal(t, 10, first.PageCount)
	assert.Len(t, first.Detail, 10)

	last, err := svc.List(ctx, query.PageInput{Index: 3, Size: 10}, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, last.PageCount)
	assert.Equal(t, 3, last.PageIndex)
	assert.Equal(t, 10, last.PageSize)

	past, err := svc.List(ctx, query.PageInput{Index: 4, Size: 10}, nil)
	require.NoError(t, err)
	assert.Empty(t, past.Detail)
	assert.EqualValues(t, 25, past.TotalCount)
}

func TestList_PagesDoNotOverlap(t *testing.T) {
	ctx := context.Background()
	svc := query.New[models.User](dbtest.New(t))
	seed(t, svc, 7)

	seen := map[uuid.UUID]bool{}
	for index := 1; index <= 3; index++ {
		page, err := svc.List(ctx, query.PageInput{Index: index, Size: 3}, nil)
		require.NoError(t, err)
		for _, u := range page.Detail {
			require.False(t, seen[u.ID], "user %s listed twice", u.Username)
			seen[u.ID] = true
		}
	}
	assert.Len(t, seen, 7)
}

func TestList_InvalidPage(t *testing.T) {
	svc := query.New[models.User](dbtest.New(t))

	cases := []query.PageInput{
		{Index: 1, Size: 0},
		{Index: 1, Size: -5},
		{Index: 0, Size: 10},
	}
	for _, page := range cases {
		_, err := svc.List(context.Background(), page, nil)
		require.ErrorIs(t, err, apperror.ErrBadRequest, "page %+v", page)
	}
}

func TestList_Filter(t *testing.T) {
	ctx := context.Background()
	svc := query.New[models.User](dbtest.New(t))
	seed(t, svc, 12)

	filter := query.FilterFunc(func(db *gorm.DB) *gorm.DB {
		return query.ILike(db, "username", "USER0")
	})
	page, err := svc.List(ctx, query.PageInput{Index: 1, Size: 20}, filter)
	require.NoError(t, err)
	assert.EqualValues(t, 10, page.TotalCount)
	assert.EqualValues(t, 1, page.TotalPage)
}

func TestListAll(t *testing.T) {
	svc := query.New[models.User](dbtest.New(t))
	seed(t, svc, 4)

	all, err := svc.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := query.New[models.User](dbtest.New(t))
	u := seed(t, svc, 1)[0]

	name := "renamed"
	updated, err := svc.Update(ctx, u.ID, namePatch{name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Name)
	assert.Equal(t, u.Username, updated.Username)

	got, err := svc.Read(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestUpdate_EmptyPatchLeavesRecord(t *testing.T) {
	ctx := context.Background()
	svc := query.New[models.User](dbtest.New(t))
	u := seed(t, svc, 1)[0]

	same, err := svc.Update(ctx, u.ID, namePatch{})
	require.NoError(t, err)
	assert.Equal(t, u.Name, same.Name)
	assert.Equal(t, u.Username, same.Username)
}

func TestUpdate_NotFound(t *testing.T) {
	svc := query.New[models.User](dbtest.New(t))

	name := "x"
	_, err := svc.Update(context.Background(), uuid.New(), namePatch{name: &name})
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc := query.New[models.User](dbtest.New(t))
	u := seed(t, svc, 1)[0]

	res, err := svc.Delete(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Delete successfully.", res.Detail)

	_, err = svc.Read(ctx, u.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)

	_, err = svc.Delete(ctx, u.ID)
	require.ErrorIs(t, err, apperror.ErrNotFound)
}
