package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"loanapi/internal/service"
)

// HealthCheck verifies database connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness endpoint with no dependency checks.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay thin; all domain decisions live in the services.
func RegisterRoutes(app *fiber.App, db *sql.DB, loanSvc service.LoanService, bookSvc service.BookService) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	loans := app.Group("/loans")
	loans.Get("/", ListLoans(loanSvc))
	loans.Post("/", RegisterLoan(loanSvc))
	loans.Get("/book/:bookId", ListLoansByBook(loanSvc))
	loans.Get("/status/:status", ListLoansByStatus(loanSvc))
	loans.Get("/available/:bookId", CheckAvailability(loanSvc))
	loans.Get("/:id", GetLoan(loanSvc))
	loans.Put("/:id", UpdateLoan(loanSvc))
	loans.Post("/:id/return", ReturnLoan(loanSvc))

	books := app.Group("/books")
	books.Get("/", ListBooks(bookSvc))
	books.Post("/", CreateBook(bookSvc))
	books.Get("/:id", GetBook(bookSvc))
	books.Put("/:id", UpdateBook(bookSvc))
	books.Delete("/:id", DeleteBook(bookSvc))
}
