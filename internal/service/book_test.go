package service

import (
	"context"
	"database/sql"
	"testing"

	"loanapi/internal/model"
	repoMocks "loanapi/internal/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		mBooks := new(repoMocks.MockBookRepository)
		svc := NewBookService(mBooks)

		mBooks.On("FindByID", ctx, int64(42)).Return(activeBook(42), nil)

		book, err := svc.Get(ctx, 42)

		assert.NoError(t, err)
		require.NotNil(t, book)
		assert.Equal(t, "El Quijote", book.Title)
	})

	t.Run("not found", func(t *testing.T) {
		mBooks := new(repoMocks.MockBookRepository)
		svc := NewBookService(mBooks)

		mBooks.On("FindByID", ctx, int64(99)).Return(nil, sql.ErrNoRows)

		book, err := svc.Get(ctx, 99)

		assert.ErrorIs(t, err, ErrBookNotFound)
		assert.Nil(t, book)
	})
}

func TestBookService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("new books start active", func(t *testing.T) {
		mBooks := new(repoMocks.MockBookRepository)
		svc := NewBookService(mBooks)

		in := &model.Book{Title: "El Quijote", ISBN: "978-84-376-0494-7"}
		mBooks.On("Create", ctx, in).Return(&model.Book{ID: 1, Title: in.Title, ISBN: in.ISBN, Active: true}, nil)

		book, err := svc.Create(ctx, in)

		assert.NoError(t, err)
		require.NotNil(t, book)
		assert.True(t, book.Active)
		mBooks.AssertExpectations(t)
	})

	t.Run("title required", func(t *testing.T) {
		svc := NewBookService(new(repoMocks.MockBookRepository))

		_, err := svc.Create(ctx, &model.Book{ISBN: "978-84-376-0494-7"})

		assert.ErrorIs(t, err, ErrTitleRequired)
	})

	t.Run("isbn required", func(t *testing.T) {
		svc := NewBookService(new(repoMocks.MockBookRepository))

		_, err := svc.Create(ctx, &model.Book{Title: "El Quijote"})

		assert.ErrorIs(t, err, ErrISBNRequired)
	})
}

func TestBookService_Update(t *testing.T) {
	ctx := context.Background()
	mBooks := new(repoMocks.MockBookRepository)
	svc := NewBookService(mBooks)

	in := &model.Book{ID: 42, Title: "El Quijote", ISBN: "978-84-376-0494-7"}
	mBooks.On("Update", ctx, in).Return(false, nil)

	book, err := svc.Update(ctx, in)

	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.Nil(t, book)
}

func TestBookService_Deactivate(t *testing.T) {
	ctx := context.Background()

	t.Run("deactivates", func(t *testing.T) {
		mBooks := new(repoMocks.MockBookRepository)
		svc := NewBookService(mBooks)

		mBooks.On("Deactivate", ctx, int64(42)).Return(true, nil)

		assert.NoError(t, svc.Deactivate(ctx, 42))
	})

	t.Run("missing book", func(t *testing.T) {
		mBooks := new(repoMocks.MockBookRepository)
		svc := NewBookService(mBooks)

		mBooks.On("Deactivate", ctx, int64(99)).Return(false, nil)

		assert.ErrorIs(t, svc.Deactivate(ctx, 99), ErrBookNotFound)
	})
}
