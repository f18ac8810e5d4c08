package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"courseportal/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the first table step. All steps commit together,
// so its presence means the whole schema is in place.
const sentinelTable = "public.accounts"

var steps = []migrationStep{
	{
		Name: "create_table_accounts",
		SQL: `CREATE TABLE IF NOT EXISTS accounts (
  id            UUID        PRIMARY KEY,
  full_name     TEXT        NOT NULL,
  email         TEXT        NOT NULL,
  password_hash TEXT        NOT NULL,
  role          TEXT        NOT NULL CHECK (role IN ('student', 'teacher')),
  subject       TEXT,
  agreed        BOOLEAN     NOT NULL DEFAULT FALSE,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_unique_index_accounts_email",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS uq_accounts_email ON accounts (lower(email));`,
	},
	{
		Name: "create_index_accounts_role",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_accounts_role ON accounts (role);`,
	},
	{
		Name: "create_table_units",
		SQL: `CREATE TABLE IF NOT EXISTS units (
  id          UUID        PRIMARY KEY,
  teacher_id  UUID        NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
  name        TEXT        NOT NULL CHECK (length(name) <= 200),
  description TEXT,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT uq_units_teacher_name UNIQUE (teacher_id, name),
  CONSTRAINT uq_units_id_teacher UNIQUE (id, teacher_id)
);`,
	},
	{
		Name: "create_table_files",
		SQL: `CREATE TABLE IF NOT EXISTS files (
  id            UUID        PRIMARY KEY,
  teacher_id    UUID        NOT NULL,
  unit_id       UUID        NOT NULL,
  original_name TEXT        NOT NULL,
  storage_path  TEXT        NOT NULL UNIQUE,
  file_size     BIGINT      NOT NULL CHECK (file_size >= 0),
  file_type     TEXT        NOT NULL,
  tag           TEXT        NOT NULL DEFAULT 'study_material'
                CHECK (tag IN ('assignment', 'personal_note', 'study_material', 'question_bank')),
  is_published  BOOLEAN     NOT NULL DEFAULT FALSE,
  uploaded_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  CONSTRAINT fk_files_unit_teacher FOREIGN KEY (unit_id, teacher_id)
    REFERENCES units (id, teacher_id) ON DELETE CASCADE
);`,
	},
	{
		Name: "create_index_files_unit",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_unit_id ON files (unit_id, uploaded_at DESC);`,
	},
	{
		Name: "create_index_files_teacher",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_teacher_id ON files (teacher_id);`,
	},
	{
		Name: "create_index_files_published",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_files_published ON files (unit_id) WHERE is_published;`,
	},
	{
		Name: "create_table_sessions",
		SQL: `CREATE TABLE IF NOT EXISTS sessions (
  token      TEXT        PRIMARY KEY,
  account_id UUID        NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
  full_name  TEXT        NOT NULL,
  email      TEXT        NOT NULL,
  role       TEXT        NOT NULL,
  subject    TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  expires_at TIMESTAMPTZ NOT NULL
);`,
	},
	{
		Name: "create_index_sessions_expires_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions (expires_at);`,
	},
	{
		Name: "create_table_notifications",
		SQL: `CREATE TABLE IF NOT EXISTS notifications (
  id                UUID        PRIMARY KEY,
  teacher_id        UUID        NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
  student_id        UUID        NOT NULL REFERENCES accounts (id) ON DELETE CASCADE,
  unit_id           UUID        NOT NULL REFERENCES units (id) ON DELETE CASCADE,
  file_id           UUID        REFERENCES files (id) ON DELETE CASCADE,
  notification_type TEXT        NOT NULL CHECK (notification_type IN ('unit_created', 'file_uploaded', 'file_published')),
  sent_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  is_read           BOOLEAN     NOT NULL DEFAULT FALSE
);`,
	},
}

// EnsureMigrated checks if the 'accounts' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *logger.Logger, dbHost string) error {
	start := time.Now()

	log.Log(map[string]any{
		"component": "database",
		"event":     "db_migration_check",
		"status":    "starting",
		"db_host":   dbHost,
	})

	var exists bool
	query := "SELECT to_regclass('" + sentinelTable + "') IS NOT NULL"
	err := db.QueryRowContext(ctx, query).Scan(&exists)
	if err != nil {
		log.Log(map[string]any{
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
		log.Log(map[string]any{
			"component":   "database",
			"event":       "db_migration_skip",
			"status":      "success",
			"msg":         "schema already exists, skipping migration",
			"db_host":     dbHost,
			"duration_ms": time.Since(start).Milliseconds(),
		})
		return nil
	}

	log.Log(map[string]any{
		"component": "database",
		"event":     "db_migration_start",
		"status":    "in_progress",
		"db_host":   dbHost,
	})

	failed := func(msg string, err error) error {
		log.Log(map[string]any{
			"component":     "database",
			"event":         "db_migration_failed",
			"status":        "error",
			"error_message": fmt.Sprintf("%s: %v", msg, err),
			"db_host":       dbHost,
			"duration_ms":   time.Since(start).Milliseconds(),
		})
		return fmt.Errorf("%s: %w", msg, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return failed("failed to begin migration", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			log.Log(map[string]any{
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

		log.Log(map[string]any{
			"component":        "database",
			"event":            "db_migration_step",
			"status":           "success",
			"migration_step":   step.Name,
			"db_host":          dbHost,
			"step_duration_ms": time.Since(stepStart).Milliseconds(),
		})
	}

	if err := tx.Commit(); err != nil {
		return failed("failed to commit migration", err)
	}

	log.Log(map[string]any{
		"component":   "database",
		"event":       "db_migration_success",
		"status":      "success",
		"db_host":     dbHost,
		"duration_ms": time.Since(start).Milliseconds(),
	})

	return nil
}
