package repository

import (
	"context"

	"loanapi/internal/model"
)

// BookRepository defines data access for the book catalog.
type BookRepository interface {
	// List returns all catalog records, active or not.
	List(ctx context.Context) ([]model.Book, error)

	// FindByID returns a book by its ID.
	FindByID(ctx context.Context, id int64) (*model.Book, error)

	// Create inserts a new book and returns the stored record.
	Create(ctx context.Context, book *model.Book) (*model.Book, error)

	// Update overwrites the catalog fields of an existing book.
	// Reports false when the book does not exist.
	Update(ctx context.Context, book *model.Book) (bool, error)

	// Deactivate soft-deletes a book. Loans reference books, so catalog
	// records are never physically removed.
	Deactivate(ctx context.Context, id int64) (bool, error)
}
