package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"loanapi/internal/model"
	"loanapi/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loanCols = []string{"id", "book_id", "loan_date", "due_date", "return_date", "status", "borrower", "comments"}

var loanWithBookCols = append(append([]string{}, loanCols...),
	"b_id", "title", "isbn", "publisher", "published_at", "pages", "genre", "description", "active", "created_at")

func loanRow(rows *sqlmock.Rows, id int64, status string, returnDate any) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(id, int64(42), now, now.Add(14*24*time.Hour), returnDate, status, "Ana", "")
}

func loanWithBookRow(rows *sqlmock.Rows, id int64, status string, returnDate any) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(
		id, int64(42), now, now.Add(14*24*time.Hour), returnDate, status, "Ana", "",
		int64(42), "El Quijote", "978-84-376-0494-7", "Francisco de Robles", now, 863, "Novel", "", true, now,
	)
}

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *LoanPostgres) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock, NewLoanPostgres(db)
}

func TestLoanPostgres_ReserveAndInsert(t *testing.T) {
	ctx := context.Background()

	loan := &model.Loan{
		BookID:   42,
		LoanDate: time.Now().UTC(),
		DueDate:  time.Now().UTC().Add(14 * 24 * time.Hour),
		Status:   model.StatusActive,
		Borrower: "Ana",
	}

	t.Run("success", func(t *testing.T) {
		_, mock, repo := newMock(t)

		rows := loanRow(sqlmock.NewRows(loanCols), 7, "active", nil)
		mock.ExpectQuery("INSERT INTO loans").
			WithArgs(loan.BookID, loan.LoanDate, loan.DueDate, "active", loan.Borrower, loan.Comments).
			WillReturnRows(rows)

		stored, err := repo.ReserveAndInsert(ctx, loan)

		assert.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, int64(7), stored.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("outstanding loan exists maps to conflict", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectQuery("INSERT INTO loans").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_loans_book_outstanding"})

		stored, err := repo.ReserveAndInsert(ctx, loan)

		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.Nil(t, stored)
	})

	t.Run("other db error passes through", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectQuery("INSERT INTO loans").
			WillReturnError(errors.New("connection lost"))

		stored, err := repo.ReserveAndInsert(ctx, loan)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrConflict)
		assert.Nil(t, stored)
	})
}

func TestLoanPostgres_FindByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found with book snapshot", func(t *testing.T) {
		_, mock, repo := newMock(t)

		rows := loanWithBookRow(sqlmock.NewRows(loanWithBookCols), 7, "active", nil)
		mock.ExpectQuery("SELECT (.+) FROM loans l").
			WithArgs(int64(7)).
			WillReturnRows(rows)

		loan, err := repo.FindByID(ctx, 7)

		assert.NoError(t, err)
		require.NotNil(t, loan)
		assert.Equal(t, int64(7), loan.ID)
		require.NotNil(t, loan.Book)
		assert.Equal(t, "El Quijote", loan.Book.Title)
		assert.Nil(t, loan.ReturnDate)
	})

	t.Run("not found", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectQuery("SELECT (.+) FROM loans l").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		loan, err := repo.FindByID(ctx, 99)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, loan)
	})

	t.Run("returned loan carries return date", func(t *testing.T) {
		_, mock, repo := newMock(t)

		returnedAt := time.Now().UTC()
		rows := loanWithBookRow(sqlmock.NewRows(loanWithBookCols), 8, "returned", returnedAt)
		mock.ExpectQuery("SELECT (.+) FROM loans l").
			WithArgs(int64(8)).
			WillReturnRows(rows)

		loan, err := repo.FindByID(ctx, 8)

		assert.NoError(t, err)
		require.NotNil(t, loan)
		require.NotNil(t, loan.ReturnDate)
		assert.Equal(t, model.StatusReturned, loan.Status)
	})
}

func TestLoanPostgres_List(t *testing.T) {
	ctx := context.Background()

	t.Run("outstanding only", func(t *testing.T) {
		_, mock, repo := newMock(t)

		rows := loanWithBookRow(sqlmock.NewRows(loanWithBookCols), 7, "active", nil)
		mock.ExpectQuery("SELECT (.+) FROM loans l").
			WithArgs(false).
			WillReturnRows(rows)

		loans, err := repo.List(ctx, false)

		assert.NoError(t, err)
		assert.Len(t, loans, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty result is empty slice", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectQuery("SELECT (.+) FROM loans l").
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows(loanWithBookCols))

		loans, err := repo.List(ctx, true)

		assert.NoError(t, err)
		assert.NotNil(t, loans)
		assert.Len(t, loans, 0)
	})
}

func TestLoanPostgres_ListByBook(t *testing.T) {
	_, mock, repo := newMock(t)

	rows := loanRow(loanRow(sqlmock.NewRows(loanCols), 7, "returned", time.Now().UTC()), 9, "active", nil)
	mock.ExpectQuery("SELECT (.+) FROM loans l").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	loans, err := repo.ListByBook(context.Background(), 42)

	assert.NoError(t, err)
	assert.Len(t, loans, 2)
}

func TestLoanPostgres_ListByStatus(t *testing.T) {
	_, mock, repo := newMock(t)

	rows := loanWithBookRow(sqlmock.NewRows(loanWithBookCols), 7, "active", nil)
	mock.ExpectQuery("SELECT (.+) FROM loans l").
		WithArgs("active").
		WillReturnRows(rows)

	loans, err := repo.ListByStatus(context.Background(), model.StatusActive)

	assert.NoError(t, err)
	assert.Len(t, loans, 1)
	assert.Equal(t, model.StatusActive, loans[0].Status)
}

func TestLoanPostgres_MarkReturned(t *testing.T) {
	ctx := context.Background()
	returnedAt := time.Now().UTC()

	t.Run("transitions outstanding loan", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectExec("UPDATE loans").
			WithArgs(int64(7), returnedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.MarkReturned(ctx, 7, returnedAt)

		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("already returned leaves row untouched", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectExec("UPDATE loans").
			WithArgs(int64(7), returnedAt).
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.MarkReturned(ctx, 7, returnedAt)

		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestLoanPostgres_Update(t *testing.T) {
	ctx := context.Background()
	loan := &model.Loan{
		ID:       7,
		DueDate:  time.Now().UTC().Add(7 * 24 * time.Hour),
		Status:   model.StatusActive,
		Comments: "extended",
	}

	t.Run("success", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectExec("UPDATE loans").
			WithArgs(loan.ID, loan.DueDate, "active", loan.Comments).
			WillReturnResult(sqlmock.NewResult(0, 1))

		ok, err := repo.Update(ctx, loan)

		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing loan", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectExec("UPDATE loans").
			WillReturnResult(sqlmock.NewResult(0, 0))

		ok, err := repo.Update(ctx, loan)

		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("reactivation against outstanding loan maps to conflict", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectExec("UPDATE loans").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_loans_book_outstanding"})

		ok, err := repo.Update(ctx, loan)

		assert.ErrorIs(t, err, repository.ErrConflict)
		assert.False(t, ok)
	})
}

func TestLoanPostgres_HasOutstandingLoan(t *testing.T) {
	ctx := context.Background()

	t.Run("book on loan", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		outstanding, err := repo.HasOutstandingLoan(ctx, 42)

		assert.NoError(t, err)
		assert.True(t, outstanding)
	})

	t.Run("book free", func(t *testing.T) {
		_, mock, repo := newMock(t)

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(int64(42)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		outstanding, err := repo.HasOutstandingLoan(ctx, 42)

		assert.NoError(t, err)
		assert.False(t, outstanding)
	})
}
