package migrations

import (
	"context"
	"time"

	"git.handmade.network/hmn/pngscope/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(AddArchiveKey{})
}

type AddArchiveKey struct{}

func (m AddArchiveKey) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 2, 3, 9, 12, 4, 0, time.UTC))
}

func (m AddArchiveKey) Name() string {
	return "AddArchiveKey"
}

func (m AddArchiveKey) Description() string {
	return "Record where the original file was archived, if it was"
}

func (m AddArchiveKey) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx,
		`
		ALTER TABLE png_info
			ADD COLUMN archive_key TEXT;
		`,
	)
	return err
}

func (m AddArchiveKey) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx,
		`
		ALTER TABLE png_info
			DROP COLUMN archive_key;
		`,
	)
	return err
}
