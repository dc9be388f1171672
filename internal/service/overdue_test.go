package service

import (
	"testing"
	"time"

	"loanapi/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestClassifyOverdue(t *testing.T) {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status model.LoanStatus
		now    time.Time
		want   model.LoanStatus
	}{
		{
			name:   "active past due becomes overdue",
			status: model.StatusActive,
			now:    due.Add(time.Second),
			want:   model.StatusOverdue,
		},
		{
			name:   "active before due stays active",
			status: model.StatusActive,
			now:    due.Add(-time.Second),
			want:   model.StatusActive,
		},
		{
			name:   "exactly at the due instant is not overdue",
			status: model.StatusActive,
			now:    due,
			want:   model.StatusActive,
		},
		{
			name:   "returned passes through regardless of due date",
			status: model.StatusReturned,
			now:    due.AddDate(0, 0, 30),
			want:   model.StatusReturned,
		},
		{
			name:   "stored overdue passes through",
			status: model.StatusOverdue,
			now:    due.Add(-time.Hour),
			want:   model.StatusOverdue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loan := model.Loan{ID: 1, DueDate: due, Status: tt.status}
			assert.Equal(t, tt.want, ClassifyOverdue(loan, tt.now))
		})
	}
}
