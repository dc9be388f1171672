package handler

import (
	"github.com/gofiber/fiber/v2"

	"loanapi/internal/model"
	"loanapi/internal/service"
)

// ListBooks returns the whole catalog, active and inactive.
func ListBooks(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		books, err := svc.List(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(books)
	}
}

// GetBook returns a single catalog record.
func GetBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid book id")
		}

		book, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(book)
	}
}

// CreateBook adds a new book to the catalog.
func CreateBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var book model.Book
		if err := c.BodyParser(&book); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}

		created, err := svc.Create(c.UserContext(), &book)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}
}

// UpdateBook overwrites a catalog record.
func UpdateBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid book id")
		}

		var book model.Book
		if err := c.BodyParser(&book); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		if book.ID != 0 && book.ID != id {
			return writeError(c, fiber.StatusBadRequest, "ID_MISMATCH", "body id does not match url id")
		}
		book.ID = id

		updated, err := svc.Update(c.UserContext(), &book)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(updated)
	}
}

// DeleteBook deactivates a book; its loan history is preserved.
func DeleteBook(svc service.BookService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid book id")
		}

		if err := svc.Deactivate(c.UserContext(), id); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
