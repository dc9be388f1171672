package postgres

import (
	"context"
	"database/sql"

	"loanapi/internal/model"
	"loanapi/internal/repository"
)

// BookPostgres is a PostgreSQL implementation of repository.BookRepository.
type BookPostgres struct {
	db *sql.DB
}

// NewBookPostgres creates a new BookPostgres repository.
func NewBookPostgres(db *sql.DB) *BookPostgres {
	return &BookPostgres{db: db}
}

var _ repository.BookRepository = (*BookPostgres)(nil)

const bookColumns = `id, title, isbn, publisher, published_at, pages, genre, description, active, created_at`

func scanBook(row rowScanner) (*model.Book, error) {
	var b model.Book
	if err := row.Scan(
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
	return &b, nil
}

// List returns all catalog records, newest first.
func (r *BookPostgres) List(ctx context.Context) ([]model.Book, error) {
	const q = `
		SELECT ` + bookColumns + `
		FROM books
		ORDER BY created_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID fetches a single book by its ID.
func (r *BookPostgres) FindByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT ` + bookColumns + `
		FROM books
		WHERE id = $1
	`
	return scanBook(r.db.QueryRowContext(ctx, q, id))
}

// Create inserts a new book row and returns the stored record.
func (r *BookPostgres) Create(ctx context.Context, book *model.Book) (*model.Book, error) {
	const q = `
		INSERT INTO books (title, isbn, publisher, published_at, pages, genre, description, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + bookColumns + `
	`
	row := r.db.QueryRowContext(ctx, q,
		book.Title,
		book.ISBN,
		book.Publisher,
		book.PublishedAt,
		book.Pages,
		book.Genre,
		book.Description,
		book.Active,
	)
	return scanBook(row)
}

// Update overwrites the catalog fields of an existing book.
func (r *BookPostgres) Update(ctx context.Context, book *model.Book) (bool, error) {
	const q = `
		UPDATE books
		SET title = $2, isbn = $3, publisher = $4, published_at = $5,
		    pages = $6, genre = $7, description = $8, active = $9
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q,
		book.ID,
		book.Title,
		book.ISBN,
		book.Publisher,
		book.PublishedAt,
		book.Pages,
		book.Genre,
		book.Description,
		book.Active,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Deactivate marks a book inactive so it can no longer be lent.
func (r *BookPostgres) Deactivate(ctx context.Context, id int64) (bool, error) {
	const q = `UPDATE books SET active = FALSE WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
