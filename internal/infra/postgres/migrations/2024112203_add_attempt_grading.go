package migrations

import (
	"context"
	_ "embed"

	"github.com/uptrace/bun"
)

//go:embed 0003_add_attempt_grading.sql
var addAttemptGradingSQL string

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, addAttemptGradingSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `ALTER TABLE quiz_attempts DROP COLUMN IF EXISTS marks, DROP COLUMN IF EXISTS answers`)
			return err
		},
	)
}
