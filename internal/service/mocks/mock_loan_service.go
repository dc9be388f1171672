package mocks

import (
	"context"

	"loanapi/internal/model"
	"loanapi/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) List(ctx context.Context, includeReturned bool) ([]model.Loan, error) {
	args := m.Called(ctx, includeReturned)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Loan), args.Error(1)
}

func (m *MockLoanService) Get(ctx context.Context, id int64) (*model.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLoanService) ListByBook(ctx context.Context, bookID int64) ([]model.Loan, error) {
	args := m.Called(ctx, bookID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Loan), args.Error(1)
}

func (m *MockLoanService) ListByStatus(ctx context.Context, status model.LoanStatus) ([]model.Loan, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Loan), args.Error(1)
}

func (m *MockLoanService) Register(ctx context.Context, in service.RegisterLoanInput) (*model.Loan, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLoanService) Return(ctx context.Context, loanID int64, comments string) error {
	args := m.Called(ctx, loanID, comments)
	return args.Error(0)
}

func (m *MockLoanService) Update(ctx context.Context, id int64, in service.UpdateLoanInput) (*model.Loan, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Loan), args.Error(1)
}

func (m *MockLoanService) IsBookAvailable(ctx context.Context, bookID int64) (bool, error) {
	args := m.Called(ctx, bookID)
	return args.Bool(0), args.Error(1)
}
