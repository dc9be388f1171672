package service

import (
	"time"

	"loanapi/internal/model"
)

// ClassifyOverdue derives the presentation status of a loan at a given
// instant: an active loan past its due date reads as overdue. Any other
// status, including returned, passes through unchanged. Pure; the stored
// status is never rewritten from here.
func ClassifyOverdue(loan model.Loan, now time.Time) model.LoanStatus {
	if loan.Status == model.StatusActive && now.After(loan.DueDate) {
		return model.StatusOverdue
	}
	return loan.Status
}
