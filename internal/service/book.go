package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"loanapi/internal/model"
	"loanapi/internal/repository"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrTitleRequired = errors.New("book title is required")
	ErrISBNRequired  = errors.New("book isbn is required")
)

// BookService manages the catalog the loan engine lends from.
type BookService interface {
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id int64) (*model.Book, error)
	Create(ctx context.Context, book *model.Book) (*model.Book, error)
	Update(ctx context.Context, book *model.Book) (*model.Book, error)
	// Deactivate soft-deletes a book; its loan history stays intact.
	Deactivate(ctx context.Context, id int64) error
}

type bookService struct {
	books repository.BookRepository
}

// NewBookService constructs a BookService.
func NewBookService(books repository.BookRepository) BookService {
	return &bookService{books: books}
}

func (s *bookService) List(ctx context.Context) ([]model.Book, error) {
	return s.books.List(ctx)
}

func (s *bookService) Get(ctx context.Context, id int64) (*model.Book, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

func (s *bookService) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	if err := validateBook(book); err != nil {
		return nil, err
	}
	book.Active = true
	return s.books.Create(ctx, book)
}

func (s *bookService) Update(ctx context.Context, book *model.Book) (*model.Book, error) {
	if err := validateBook(book); err != nil {
		return nil, err
	}
	ok, err := s.books.Update(ctx, book)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBookNotFound
	}
	return s.books.FindByID(ctx, book.ID)
}

func (s *bookService) Deactivate(ctx context.Context, id int64) error {
	ok, err := s.books.Deactivate(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrBookNotFound
	}
	return nil
}

func validateBook(book *model.Book) error {
	if strings.TrimSpace(book.Title) == "" {
		return ErrTitleRequired
	}
	if strings.TrimSpace(book.ISBN) == "" {
		return ErrISBNRequired
	}
	return nil
}
