/*
This package contains lowish-level APIs for making queries to the Postgres database that holds stored PNG metadata. It maps query results to Go types while letting you write arbitrary SQL.

The primary functions are Query and QueryIterator.

Query syntax

This package allows a few small extensions to SQL syntax to streamline the interaction between Go and Postgres.

Arguments can be provided using placeholders like $1, $2, etc. All arguments will be safely escaped and mapped from their Go type to the correct Postgres type. (This is a direct proxy to pgx.)

	ids, err := db.QueryScalar[int](ctx, conn,
		`
		SELECT DISTINCT png_id
		FROM chunk_info
		WHERE
			chunk_type = ANY($1)
			AND chunk_length > $2
		`,
		[]string{"tEXt", "zTXt"},
		0,
	)

(If you want to use a slice in your query, use Postgres arrays instead of IN.)

When querying individual fields, you can simply select the field like so:

	ids, err := db.QueryScalar[int](ctx, conn, `SELECT id FROM png_info`)

To query multiple columns at once, you may use a struct type with `db:"column_name"` tags, and the special $columns placeholder:

	type Info struct {
		ID     int    `db:"id"`
		Path   string `db:"file_path"`
		Width  int64  `db:"width"`
	}
	infos, err := db.Query[Info](ctx, conn, `SELECT $columns FROM png_info`)
	// Resulting query:
	// SELECT id, file_path, width FROM png_info

When a JOIN makes column names ambiguous, include a table prefix in the placeholder, like $columns{png}:

	infos, err := db.Query[Info](ctx, conn, `
		SELECT $columns{png}
		FROM
			png_info AS png
			JOIN chunk_info AS chunk ON chunk.png_id = png.id
		WHERE chunk.chunk_type = 'tRNS'
	`)
	// Resulting query:
	// SELECT png.id, png.file_path, png.width FROM ...

A query whose SQL contains a line like "---- Name" is reported under that name
in per-file timings.
*/
package db
