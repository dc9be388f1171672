package model

import "time"

// LoanStatus is the lifecycle state of a loan.
// A loan starts active and ends returned; overdue marks an active loan
// whose due date has passed and is derived at read time, never written
// by the lifecycle itself.
type LoanStatus string

const (
	StatusActive   LoanStatus = "active"
	StatusReturned LoanStatus = "returned"
	StatusOverdue  LoanStatus = "overdue"
)

// Valid reports whether s is one of the known loan statuses.
func (s LoanStatus) Valid() bool {
	switch s {
	case StatusActive, StatusReturned, StatusOverdue:
		return true
	}
	return false
}

// Outstanding reports whether a loan in this status still holds the book.
func (s LoanStatus) Outstanding() bool {
	return s == StatusActive || s == StatusOverdue
}

// Loan records one book lent to one borrower for a bounded period.
// Loans are an audit trail: they are never physically deleted.
//
// Invariants enforced across the stack:
//   - at most one outstanding (active/overdue) loan per book
//   - DueDate is strictly after LoanDate
//   - ReturnDate is set exactly when Status is returned
type Loan struct {
	ID         int64      `json:"id"`
	BookID     int64      `json:"book_id"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     LoanStatus `json:"status"`
	Borrower   string     `json:"borrower"`
	Comments   string     `json:"comments,omitempty"`

	// Book is a read-only catalog snapshot attached for display.
	// The loan engine never mutates the catalog through it.
	Book *Book `json:"book,omitempty"`
}
