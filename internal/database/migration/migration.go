package migration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_table_books",
		SQL: `CREATE TABLE IF NOT EXISTS books (
  id           BIGSERIAL   PRIMARY KEY,
  title        TEXT        NOT NULL,
  isbn         TEXT        NOT NULL,
  publisher    TEXT        NOT NULL DEFAULT '',
  published_at TIMESTAMPTZ NOT NULL,
  pages        INTEGER     NOT NULL DEFAULT 0 CHECK (pages >= 0),
  genre        TEXT        NOT NULL DEFAULT '',
  description  TEXT        NOT NULL DEFAULT '',
  active       BOOLEAN     NOT NULL DEFAULT TRUE,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_loans",
		SQL: `CREATE TABLE IF NOT EXISTS loans (
  id          BIGSERIAL   PRIMARY KEY,
  book_id     BIGINT      NOT NULL REFERENCES books (id),
  loan_date   TIMESTAMPTZ NOT NULL DEFAULT now(),
  due_date    TIMESTAMPTZ NOT NULL,
  return_date TIMESTAMPTZ,
  status      TEXT        NOT NULL DEFAULT 'active'
              CHECK (status IN ('active', 'returned', 'overdue')),
  borrower    TEXT        NOT NULL CHECK (char_length(borrower) BETWEEN 1 AND 100),
  comments    TEXT        NOT NULL DEFAULT '' CHECK (char_length(comments) <= 500),
  CHECK (due_date > loan_date),
  CHECK ((return_date IS NOT NULL) = (status = 'returned'))
);`,
	},
	{
		// One outstanding loan per book. Registration relies on this index
		// to make the availability check and the insert a single atomic
		// operation; a violation surfaces as a conflict, not a race.
		Name: "create_unique_index_loans_outstanding",
		SQL: `CREATE UNIQUE INDEX IF NOT EXISTS uq_loans_book_outstanding
  ON loans (book_id) WHERE status IN ('active', 'overdue');`,
	},
	{
		Name: "create_index_loans_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_loans_status ON loans (status);`,
	},
	{
		Name: "create_index_loans_loan_date",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_loans_loan_date ON loans (loan_date);`,
	},
	{
		Name: "create_index_books_active",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_books_active ON books (active);`,
	},
}

// EnsureMigrated checks if the 'loans' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, loc *time.Location, dbHost string) error {
	start := time.Now()

	logJSON(loc, map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('public.loans') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		logJSON(loc, map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("failed to check sentinel table: %v", err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		logJSON(loc, map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	for _, step := range steps {
		stepStart := time.Now()
		_, err := db.ExecContext(ctx, step.SQL)
		if err != nil {
			logJSON(loc, map[string]any{
				"component":        "database",
				"event":            "db_migration_failed",
				"status":           "error",
				"migration_step":   step.Name,
				"error_message":    err.Error(),
				"db_host":          dbHost,
				"duration_ms":      time.Since(start).Milliseconds(),
				"step_duration_ms": time.Since(stepStart).Milliseconds(),
			})
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		logJSON(loc, map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	logJSON(loc, map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}

func logJSON(loc *time.Location, data map[string]any) {
	data["ts"] = time.Now().In(loc).Format(time.RFC3339Nano)
	if _, ok := data["level"]; !ok {
		if data["status"] == "error" {
			data["level"] = "error"
		} else {
			data["level"] = "info"
		}
	}

	b, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to marshal migration log: %v", err)
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
