package migrations

import (
	"context"
	"time"

	"git.handmade.network/hmn/pngscope/src/migration/types"
	"github.com/jackc/pgx/v5"
)

func init() {
	registerMigration(Initial{})
}

type Initial struct{}

func (m Initial) Version() types.MigrationVersion {
	return types.MigrationVersion(time.Date(2026, 1, 12, 20, 15, 30, 0, time.UTC))
}

func (m Initial) Name() string {
	return "Initial"
}

func (m Initial) Description() string {
	return "Create tables for stored PNG headers, chunk metadata and chunk data"
}

func (m Initial) Up(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx,
		`
		CREATE TABLE png_info (
			id SERIAL PRIMARY KEY,
			file_path TEXT NOT NULL UNIQUE,
			date_added TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
			width BIGINT NOT NULL,
			height BIGINT NOT NULL,
			bit_depth SMALLINT NOT NULL,
			color_type SMALLINT NOT NULL,
			compression_method SMALLINT NOT NULL,
			filter_method SMALLINT NOT NULL,
			interlace_method SMALLINT NOT NULL
		);

		CREATE TABLE chunk_info (
			id SERIAL PRIMARY KEY,
			png_id INT NOT NULL REFERENCES png_info (id) ON DELETE CASCADE,
			seq INT NOT NULL,
			chunk_length BIGINT NOT NULL,
			chunk_type VARCHAR(4) NOT NULL,
			is_ancillary BOOLEAN NOT NULL,
			is_private BOOLEAN NOT NULL,
			is_reserved BOOLEAN NOT NULL,
			is_safe_to_copy BOOLEAN NOT NULL,
			chunk_crc BIGINT NOT NULL,
			UNIQUE (png_id, seq)
		);

		CREATE INDEX chunk_info_type ON chunk_info (chunk_type);

		CREATE TABLE idat_chunk_data (
			chunk_id INT PRIMARY KEY REFERENCES chunk_info (id) ON DELETE CASCADE,
			png_id INT NOT NULL REFERENCES png_info (id) ON DELETE CASCADE,
			chunk_data BYTEA NOT NULL
		);

		CREATE TABLE other_chunk_data (
			chunk_id INT PRIMARY KEY REFERENCES chunk_info (id) ON DELETE CASCADE,
			png_id INT NOT NULL REFERENCES png_info (id) ON DELETE CASCADE,
			chunk_data BYTEA NOT NULL
		);
		`,
	)
	return err
}

func (m Initial) Down(ctx context.Context, tx pgx.Tx) error {
	_, err := tx.Exec(ctx,
		`
		DROP TABLE other_chunk_data;
		DROP TABLE idat_chunk_data;
		DROP TABLE chunk_info;
		DROP TABLE png_info;
		`,
	)
	return err
}
