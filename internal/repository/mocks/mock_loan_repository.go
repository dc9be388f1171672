package mocks

import (
	"context"
	"time"

	"loanapi/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) List(ctx context.Context, includeReturned bool) ([]model.Loan, error) {
	args := m.Called(ctx, includeReturned)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Loan), args.Error(1)
}

func (m *MockLoanRepository) FindByID(ctx context.Context, id int64) (*model.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Loan), args.Error(1)
}

func (m *MockLoanRepository) ListByStatus(ctx context.Context, status model.LoanStatus) ([]model.Loan, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Loan), args.Error(1)
}

func (m *MockLoanRepository) ReserveAndInsert(ctx context.Context, loan *model.Loan) (*model.Loan, error) {
	args := m.Called(ctx, loan)
	if f, ok := args.Get(0).(func(context.Context, *model.Loan) *model.Loan); ok {
		return f(ctx, loan), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLoanRepository) MarkReturned(ctx context.Context, id int64, returnedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, returnedAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *model.Loan) (bool, error) {
	args := m.Called(ctx, loan)
	return args.Bool(0), args.Error(1)
}

func (m *MockLoanRepository) HasOutstandingLoan(ctx context.Context, bookID int64) (bool, error) {
	args := m.Called(ctx, bookID)
	return args.Bool(0), args.Error(1)
}
