package migrations

import (
	"context"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS draw_winners (
					id BIGSERIAL PRIMARY KEY,
					winner TEXT NOT NULL,
					league TEXT NOT NULL DEFAULT '',
					drawn_at TIMESTAMPTZ NOT NULL
				)`)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS draw_winners`)
			return err
		},
	)
}
