package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"loanapi/internal/model"
	"loanapi/internal/service"
)

type registerLoanRequest struct {
	BookID     int64  `json:"book_id"`
	Borrower   string `json:"borrower"`
	PeriodDays int    `json:"period_days"`
	Comments   string `json:"comments"`
}

type returnLoanRequest struct {
	Comments string `json:"comments"`
}

type updateLoanRequest struct {
	ID       int64     `json:"id"`
	DueDate  time.Time `json:"due_date"`
	Status   string    `json:"status"`
	Comments string    `json:"comments"`
}

func parseID(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// ListLoans returns loans; returned ones only when ?include_returned=true.
func ListLoans(svc service.LoanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		includeReturned := c.QueryBool("include_returned", false)

		loans, err := svc.List(c.UserContext(), includeReturned)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(loans)
	}
}

// GetLoan returns a single loan by id.
func GetLoan(svc service.LoanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid loan id")
		}

		loan, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(loan)
	}
}

// ListLoansByBook returns the full lending history of one book.
func ListLoansByBook(svc service.LoanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bookID, ok := parseID(c, "bookId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid book id")
		}

		loans, err := svc.ListByBook(c.UserContext(), bookID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(loans)
	}
}

// ListLoansByStatus filters loans by presented status (active, returned, overdue).
func ListLoansByStatus(svc service.LoanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := model.LoanStatus(strings.ToLower(c.Params("status")))

		loans, err := svc.ListByStatus(c.UserContext(), status)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(loans)
	}
}

// CheckAvailability reports whether a book can be lent right now.
func CheckAvailability(svc service.LoanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		bookID, ok := parseID(c, "bookId")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid book id")
		}

		available, err := svc.IsBookAvailable(c.UserContext(), bookID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(available)
	}
}

// RegisterLoan creates a new loan.
func RegisterLoan(svc service.LoanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerLoanRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		if req.BookID <= 0 {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "book_id is required")
		}

		loan, err := svc.Register(c.UserContext(), service.RegisterLoanInput{
			BookID:     req.BookID,
			Borrower:   req.Borrower,
			PeriodDays: req.PeriodDays,
			Comments:   req.Comments,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(loan)
	}
}

// ReturnLoan registers the return of a loan.
func ReturnLoan(svc service.LoanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid loan id")
		}

		var req returnLoanRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
			}
		}

		if err := svc.Return(c.UserContext(), id, req.Comments); err != nil {
			return writeServiceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UpdateLoan applies an administrative correction to a loan.
func UpdateLoan(svc service.LoanService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := parseID(c, "id")
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid loan id")
		}

		var req updateLoanRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "malformed request body")
		}
		if req.ID != 0 && req.ID != id {
			return writeError(c, fiber.StatusBadRequest, "ID_MISMATCH", "body id does not match url id")
		}

		loan, err := svc.Update(c.UserContext(), id, service.UpdateLoanInput{
			DueDate:  req.DueDate,
			Status:   model.LoanStatus(strings.ToLower(req.Status)),
			Comments: req.Comments,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(loan)
	}
}
