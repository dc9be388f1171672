package repository

import (
	"context"
	"errors"
	"time"

	"loanapi/internal/model"
)

// ErrConflict is returned when a write would leave more than one outstanding
// loan for the same book. It is raised by the storage layer itself (unique
// index over outstanding loans) so that check-and-reserve is a single atomic
// operation even across service instances.
var ErrConflict = errors.New("outstanding loan already exists for this book")

// LoanRepository is the durable loan ledger. SQL only, no business logic;
// the service layer owns the state machine.
type LoanRepository interface {
	// List returns loans ordered by loan date, newest first. When
	// includeReturned is false only outstanding loans are returned.
	List(ctx context.Context, includeReturned bool) ([]model.Loan, error)

	// FindByID returns a loan with its book snapshot attached.
	FindByID(ctx context.Context, id int64) (*model.Loan, error)

	// ListByBook returns every loan ever registered for a book.
	ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error)

	// ListByStatus returns loans whose stored status matches.
	ListByStatus(ctx context.Context, status model.LoanStatus) ([]model.Loan, error)

	// ReserveAndInsert atomically checks availability and inserts the loan.
	// Returns ErrConflict if an outstanding loan exists for loan.BookID.
	// On success it returns the stored record with the assigned id and
	// canonical timestamps.
	ReserveAndInsert(ctx context.Context, loan *model.Loan) (*model.Loan, error)

	// MarkReturned transitions a loan to returned and stamps the return
	// date. Reports false when the loan does not exist or was already
	// returned.
	MarkReturned(ctx context.Context, id int64, returnedAt time.Time) (bool, error)

	// Update overwrites due date, status and comments of an existing loan.
	// Reports false when the loan does not exist. Returns ErrConflict when
	// the update would reactivate a loan for a book that already has an
	// outstanding one.
	Update(ctx context.Context, loan *model.Loan) (bool, error)

	// HasOutstandingLoan reports whether the book is currently on loan.
	HasOutstandingLoan(ctx context.Context, bookID int64) (bool, error)
}
