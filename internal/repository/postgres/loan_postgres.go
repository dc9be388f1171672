package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"loanapi/internal/model"
	"loanapi/internal/repository"
)

// pgUniqueViolation is the SQLSTATE raised when the partial unique index
// over outstanding loans rejects a write.
const pgUniqueViolation = "23505"

// LoanPostgres is a PostgreSQL implementation of repository.LoanRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type LoanPostgres struct {
	db *sql.DB
}

// NewLoanPostgres creates a new LoanPostgres repository.
func NewLoanPostgres(db *sql.DB) *LoanPostgres {
	return &LoanPostgres{db: db}
}

var _ repository.LoanRepository = (*LoanPostgres)(nil)

const loanColumns = `l.id, l.book_id, l.loan_date, l.due_date, l.return_date, l.status, l.borrower, l.comments`

const bookSnapshotColumns = `b.id, b.title, b.isbn, b.publisher, b.published_at, b.pages, b.genre, b.description, b.active, b.created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLoan(row rowScanner) (*model.Loan, error) {
	var l model.Loan
	var returnDate sql.NullTime
	if err := row.Scan(
		&l.ID,
		&l.BookID,
		&l.LoanDate,
		&l.DueDate,
		&returnDate,
		&l.Status,
		&l.Borrower,
		&l.Comments,
	); err != nil {
		return nil, err
	}
	if returnDate.Valid {
		l.ReturnDate = &returnDate.Time
	}
	return &l, nil
}

func scanLoanWithBook(row rowScanner) (*model.Loan, error) {
	var l model.Loan
	var b model.Book
	var returnDate sql.NullTime
	if err := row.Scan(
		&l.ID,
		&l.BookID,
		&l.LoanDate,
		&l.DueDate,
		&returnDate,
		&l.Status,
		&l.Borrower,
		&l.Comments,
		&b.ID,
		&b.Title,
		&b.ISBN,
		&b.Publisher,
		&b.PublishedAt,
		&b.Pages,
		&b.Genre,
		&b.Description,
		&b.Active,
		&b.CreatedAt,
	); err != nil {
		return nil, err
	}
	if returnDate.Valid {
		l.ReturnDate = &returnDate.Time
	}
	l.Book = &b
	return &l, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// List returns loans newest first, joined with their book snapshot.
func (r *LoanPostgres) List(ctx context.Context, includeReturned bool) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanColumns + `, ` + bookSnapshotColumns + `
		FROM loans l
		JOIN books b ON b.id = l.book_id
		WHERE $1 OR l.status IN ('active', 'overdue')
		ORDER BY l.loan_date DESC, l.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, includeReturned)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLoans(rows, scanLoanWithBook)
}

// FindByID fetches a single loan with its book snapshot.
func (r *LoanPostgres) FindByID(ctx context.Context, id int64) (*model.Loan, error) {
	const q = `
		SELECT ` + loanColumns + `, ` + bookSnapshotColumns + `
		FROM loans l
		JOIN books b ON b.id = l.book_id
		WHERE l.id = $1
	`
	return scanLoanWithBook(r.db.QueryRowContext(ctx, q, id))
}

// ListByBook returns the full lending history of one book, newest first.
func (r *LoanPostgres) ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanColumns + `
		FROM loans l
		WHERE l.book_id = $1
		ORDER BY l.loan_date DESC, l.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLoans(rows, scanLoan)
}

// ListByStatus returns loans whose stored status matches, with book snapshots.
func (r *LoanPostgres) ListByStatus(ctx context.Context, status model.LoanStatus) ([]model.Loan, error) {
	const q = `
		SELECT ` + loanColumns + `, ` + bookSnapshotColumns + `
		FROM loans l
		JOIN books b ON b.id = l.book_id
		WHERE l.status = $1
		ORDER BY l.loan_date DESC, l.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLoans(rows, scanLoanWithBook)
}

// ReserveAndInsert inserts a new loan row. The partial unique index
// uq_loans_book_outstanding makes the insert double as the availability
// check: a second outstanding loan for the same book fails with a unique
// violation, which is mapped to repository.ErrConflict.
func (r *LoanPostgres) ReserveAndInsert(ctx context.Context, loan *model.Loan) (*model.Loan, error) {
	const q = `
		INSERT INTO loans (book_id, loan_date, due_date, status, borrower, comments)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, book_id, loan_date, due_date, return_date, status, borrower, comments
	`
	row := r.db.QueryRowContext(ctx, q,
		loan.BookID,
		loan.LoanDate,
		loan.DueDate,
		string(loan.Status),
		loan.Borrower,
		loan.Comments,
	)
	out, err := scanLoan(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrConflict
		}
		return nil, err
	}
	return out, nil
}

// MarkReturned performs the terminal transition. The status guard in the
// WHERE clause keeps a double return from overwriting the return date.
func (r *LoanPostgres) MarkReturned(ctx context.Context, id int64, returnedAt time.Time) (bool, error) {
	const q = `
		UPDATE loans
		SET status = 'returned', return_date = $2
		WHERE id = $1 AND status <> 'returned'
	`
	res, err := r.db.ExecContext(ctx, q, id, returnedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Update overwrites due date, status and comments. The return date is kept
// consistent with the status so the returned-iff-dated constraint holds; an
// update that reactivates a loan trips the outstanding-loan index exactly
// like a fresh registration would.
func (r *LoanPostgres) Update(ctx context.Context, loan *model.Loan) (bool, error) {
	const q = `
		UPDATE loans
		SET due_date = $2,
		    status = $3,
		    comments = $4,
		    return_date = CASE WHEN $3 = 'returned' THEN COALESCE(return_date, now()) ELSE NULL END
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, loan.ID, loan.DueDate, string(loan.Status), loan.Comments)
	if err != nil {
		if isUniqueViolation(err) {
			return false, repository.ErrConflict
		}
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// HasOutstandingLoan reports whether the book currently has an active or
// overdue loan. Read-only; registration must not rely on it for admission.
func (r *LoanPostgres) HasOutstandingLoan(ctx context.Context, bookID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM loans WHERE book_id = $1 AND status IN ('active', 'overdue')
		)
	`
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, bookID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func collectLoans(rows *sql.Rows, scan func(rowScanner) (*model.Loan, error)) ([]model.Loan, error) {
	items := make([]model.Loan, 0)
	for rows.Next() {
		l, err := scan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
