package service

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"loanapi/internal/config"
	"loanapi/internal/model"
	"loanapi/internal/repository"
	"loanapi/internal/storage"
)

var (
	ErrBorrowerRequired     = errors.New("borrower name is required")
	ErrBorrowerTooLong      = errors.New("borrower name exceeds 100 characters")
	ErrCommentsTooLong      = errors.New("comments exceed 500 characters")
	ErrLoanPeriodOutOfRange = errors.New("loan period must be between 1 and 365 days")
	ErrDueDateNotAfterLoan  = errors.New("due date must be after the loan date")
	ErrInvalidStatus        = errors.New("unknown loan status")
	ErrBookUnavailable      = errors.New("book does not exist or is not active")
	ErrLoanConflict         = errors.New("book is already on loan")
	ErrLoanNotFound         = errors.New("loan not found")
	ErrAlreadyReturned      = errors.New("loan has already been returned")
)

const (
	maxBorrowerLen = 100
	maxCommentsLen = 500
	minPeriodDays  = 1
	maxPeriodDays  = 365

	fallbackPeriodDays = 14
)

// RegisterLoanInput carries a loan registration request.
// PeriodDays zero means "use the configured default".
type RegisterLoanInput struct {
	BookID     int64
	Borrower   string
	PeriodDays int
	Comments   string
}

// UpdateLoanInput carries an administrative loan correction.
type UpdateLoanInput struct {
	DueDate  time.Time
	Status   model.LoanStatus
	Comments string
}

// LoanService owns the loan lifecycle: it is the only component that
// creates or transitions loans, and it translates domain preconditions
// into the sentinel errors above.
type LoanService interface {
	// List returns loans, outstanding only unless includeReturned is set.
	// Overdue classification is applied to the result.
	List(ctx context.Context, includeReturned bool) ([]model.Loan, error)

	// Get returns a single loan with overdue classification applied.
	Get(ctx context.Context, id int64) (*model.Loan, error)

	// ListByBook returns the lending history of one book.
	ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error)

	// ListByStatus returns loans presented under the given status.
	// Overdue is derived: an active loan past its due date is listed as
	// overdue and excluded from the active listing.
	ListByStatus(ctx context.Context, status model.LoanStatus) ([]model.Loan, error)

	// Register validates the request, checks the catalog, and reserves the
	// book through the ledger's atomic insert. Returns the persisted loan.
	Register(ctx context.Context, in RegisterLoanInput) (*model.Loan, error)

	// Return transitions a loan to returned, optionally overwriting its
	// comments first, and archives a receipt on success.
	Return(ctx context.Context, loanID int64, comments string) error

	// Update is the administrative override: due date, status and comments
	// are replaced without re-running registration validation. Reactivating
	// a loan still trips the one-outstanding-loan guarantee at the ledger.
	Update(ctx context.Context, id int64, in UpdateLoanInput) (*model.Loan, error)

	// IsBookAvailable reports whether the book exists, is active, and has
	// no outstanding loan. Read-only; registration does not depend on it.
	IsBookAvailable(ctx context.Context, bookID int64) (bool, error)
}

type loanService struct {
	loans   repository.LoanRepository
	books   repository.BookRepository
	archive storage.Archive

	defaultPeriodDays int
	now               func() time.Time
}

// NewLoanService constructs a LoanService. The archive may be nil, in which
// case return receipts are not written.
func NewLoanService(loans repository.LoanRepository, books repository.BookRepository, archive storage.Archive, cfg config.LoanConfig) LoanService {
	period := cfg.DefaultPeriodDays
	if period < minPeriodDays || period > maxPeriodDays {
		period = fallbackPeriodDays
	}
	return &loanService{
		loans:             loans,
		books:             books,
		archive:           archive,
		defaultPeriodDays: period,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

func (s *loanService) List(ctx context.Context, includeReturned bool) ([]model.Loan, error) {
	loans, err := s.loans.List(ctx, includeReturned)
	if err != nil {
		return nil, err
	}
	return s.classifyAll(loans), nil
}

func (s *loanService) Get(ctx context.Context, id int64) (*model.Loan, error) {
	loan, err := s.loans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	loan.Status = ClassifyOverdue(*loan, s.now())
	return loan, nil
}

func (s *loanService) ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error) {
	loans, err := s.loans.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return s.classifyAll(loans), nil
}

func (s *loanService) ListByStatus(ctx context.Context, status model.LoanStatus) ([]model.Loan, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	if status == model.StatusReturned {
		return s.loans.ListByStatus(ctx, status)
	}

	// Overdue is derived from active loans at read time, so both listings
	// start from the stored outstanding rows and filter on the classified
	// status.
	active, err := s.loans.ListByStatus(ctx, model.StatusActive)
	if err != nil {
		return nil, err
	}
	stored, err := s.loans.ListByStatus(ctx, model.StatusOverdue)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]model.Loan, 0)
	for _, loan := range append(active, stored...) {
		loan.Status = ClassifyOverdue(loan, now)
		if loan.Status == status {
			out = append(out, loan)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LoanDate.Equal(out[j].LoanDate) {
			return out[i].ID > out[j].ID
		}
		return out[i].LoanDate.After(out[j].LoanDate)
	})
	return out, nil
}

func (s *loanService) Register(ctx context.Context, in RegisterLoanInput) (*model.Loan, error) {
	borrower := strings.TrimSpace(in.Borrower)
	if borrower == "" {
		return nil, ErrBorrowerRequired
	}
	if utf8.RuneCountInString(borrower) > maxBorrowerLen {
		return nil, ErrBorrowerTooLong
	}
	if utf8.RuneCountInString(in.Comments) > maxCommentsLen {
		return nil, ErrCommentsTooLong
	}

	period := in.PeriodDays
	if period == 0 {
		period = s.defaultPeriodDays
	}
	if period < minPeriodDays || period > maxPeriodDays {
		return nil, ErrLoanPeriodOutOfRange
	}

	book, err := s.books.FindByID(ctx, in.BookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookUnavailable
		}
		return nil, fmt.Errorf("look up book: %w", err)
	}
	if !book.Active {
		return nil, ErrBookUnavailable
	}

	now := s.now()
	loan := &model.Loan{
		BookID:   in.BookID,
		LoanDate: now,
		DueDate:  now.AddDate(0, 0, period),
		Status:   model.StatusActive,
		Borrower: borrower,
		Comments: in.Comments,
	}

	// The ledger insert doubles as the admission check: a concurrent
	// registration for the same book loses here, not at a stale
	// availability read.
	stored, err := s.loans.ReserveAndInsert(ctx, loan)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrLoanConflict
		}
		return nil, fmt.Errorf("reserve loan: %w", err)
	}

	// Re-read to return the canonical record with its book snapshot.
	created, err := s.loans.FindByID(ctx, stored.ID)
	if err != nil {
		return nil, fmt.Errorf("retrieve created loan: %w", err)
	}
	return created, nil
}

func (s *loanService) Return(ctx context.Context, loanID int64, comments string) error {
	if utf8.RuneCountInString(comments) > maxCommentsLen {
		return ErrCommentsTooLong
	}

	loan, err := s.loans.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrLoanNotFound
		}
		return err
	}
	if loan.Status == model.StatusReturned {
		return ErrAlreadyReturned
	}

	// Comment overwrite and status transition are two separate writes so
	// the ledger contract stays satisfiable by the simplest backends. The
	// comment goes first; the transition below is the one that must win.
	if strings.TrimSpace(comments) != "" {
		loan.Comments = comments
		ok, err := s.loans.Update(ctx, loan)
		if err != nil {
			return fmt.Errorf("update comments: %w", err)
		}
		if !ok {
			return ErrLoanNotFound
		}
	}

	returnedAt := s.now()
	ok, err := s.loans.MarkReturned(ctx, loanID, returnedAt)
	if err != nil {
		return fmt.Errorf("mark returned: %w", err)
	}
	if !ok {
		// Lost a race with a concurrent return.
		return ErrAlreadyReturned
	}

	s.archiveReceipt(ctx, loan, returnedAt)
	return nil
}

func (s *loanService) Update(ctx context.Context, id int64, in UpdateLoanInput) (*model.Loan, error) {
	if !in.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if utf8.RuneCountInString(in.Comments) > maxCommentsLen {
		return nil, ErrCommentsTooLong
	}

	existing, err := s.loans.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	if !in.DueDate.After(existing.LoanDate) {
		return nil, ErrDueDateNotAfterLoan
	}

	existing.DueDate = in.DueDate
	existing.Status = in.Status
	existing.Comments = in.Comments

	ok, err := s.loans.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrLoanConflict
		}
		return nil, fmt.Errorf("update loan: %w", err)
	}
	if !ok {
		return nil, ErrLoanNotFound
	}

	updated, err := s.loans.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("retrieve updated loan: %w", err)
	}
	return updated, nil
}

func (s *loanService) IsBookAvailable(ctx context.Context, bookID int64) (bool, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	if !book.Active {
		return false, nil
	}

	outstanding, err := s.loans.HasOutstandingLoan(ctx, bookID)
	if err != nil {
		return false, err
	}
	return !outstanding, nil
}

func (s *loanService) classifyAll(loans []model.Loan) []model.Loan {
	now := s.now()
	for i := range loans {
		loans[i].Status = ClassifyOverdue(loans[i], now)
	}
	return loans
}

// loanReceipt is the JSON document archived when a loan is closed.
type loanReceipt struct {
	LoanID     int64     `json:"loan_id"`
	BookID     int64     `json:"book_id"`
	Borrower   string    `json:"borrower"`
	LoanDate   time.Time `json:"loan_date"`
	DueDate    time.Time `json:"due_date"`
	ReturnDate time.Time `json:"return_date"`
	Comments   string    `json:"comments,omitempty"`
}

// archiveReceipt writes a closed-loan receipt to object storage.
// Best effort: a failed archive is logged and never fails the return.
func (s *loanService) archiveReceipt(ctx context.Context, loan *model.Loan, returnedAt time.Time) {
	if s.archive == nil {
		return
	}

	receipt := loanReceipt{
		LoanID:     loan.ID,
		BookID:     loan.BookID,
		Borrower:   loan.Borrower,
		LoanDate:   loan.LoanDate,
		DueDate:    loan.DueDate,
		ReturnDate: returnedAt,
		Comments:   loan.Comments,
	}
	body, err := json.Marshal(receipt)
	if err != nil {
		logEvent("error", "receipt_marshal_failed", loan.ID, err)
		return
	}

	key := fmt.Sprintf("receipts/loan-%d-%s.json", loan.ID, uuid.NewString())
	_, err = s.archive.Put(ctx, key, bytes.NewReader(body), storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
	})
	if err != nil {
		logEvent("error", "receipt_archive_failed", loan.ID, err)
		return
	}
	logEvent("info", "receipt_archived", loan.ID, nil)
}

func logEvent(level, event string, loanID int64, err error) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     level,
		"component": "loan_service",
		"event":     event,
		"loan_id":   loanID,
	}
	if err != nil {
		entry["error"] = err.Error()
	}
	if b, mErr := json.Marshal(entry); mErr == nil {
		log.SetFlags(0)
		log.Println(string(b))
	}
}
