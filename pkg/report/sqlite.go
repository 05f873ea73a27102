package report

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

const (
	sqliteDriver = "sqlite"
	dbDirPerm    = 0o755
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created_at DATETIME NOT NULL,
	source TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS report_tables (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT NOT NULL,
	position INTEGER NOT NULL,
	name TEXT NOT NULL,
	axis_title TEXT NOT NULL,
	heat_map INTEGER NOT NULL,
	log_scale INTEGER NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE TABLE IF NOT EXISTS report_cells (
	table_id INTEGER NOT NULL,
	row_idx INTEGER NOT NULL,
	col_idx INTEGER NOT NULL,
	num_value REAL,
	text_value TEXT,
	FOREIGN KEY (table_id) REFERENCES report_tables(id)
);

CREATE INDEX IF NOT EXISTS idx_report_tables_run ON report_tables(run_id);
CREATE INDEX IF NOT EXISTS idx_report_cells_table ON report_cells(table_id);
`

// SQLiteSink appends each run's tables to a SQLite database so several runs
// can be compared with plain SQL.
type SQLiteSink struct {
	Path string
}

// Write implements Sink.
func (s *SQLiteSink) Write(ctx context.Context, set *TableSet) error {
	db, err := OpenDB(s.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit.

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, source) VALUES (?, ?, ?)`,
		set.RunID, set.Created, set.Source,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for pos := range set.Tables {
		err = insertTable(ctx, tx, set.RunID, pos, &set.Tables[pos])
		if err != nil {
			return err
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("commit run: %w", err)
	}

	return nil
}

// OpenDB opens or creates the report database at path and ensures its schema.
func OpenDB(path string) (*sql.DB, error) {
	err := os.MkdirAll(filepath.Dir(path), dbDirPerm)
	if err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open(sqliteDriver, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	_, err = db.Exec(sqliteSchema)
	if err != nil {
		db.Close()

		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return db, nil
}

func insertTable(ctx context.Context, tx *sql.Tx, runID string, pos int, t *Table) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO report_tables (run_id, position, name, axis_title, heat_map, log_scale)
		VALUES (?, ?, ?, ?, ?, ?)`,
		runID, pos, t.Name, t.AxisTitle, t.HeatMap, t.LogScale,
	)
	if err != nil {
		return fmt.Errorf("insert table %s: %w", t.Name, err)
	}

	tableID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("table id %s: %w", t.Name, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO report_cells (table_id, row_idx, col_idx, num_value, text_value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare cells: %w", err)
	}
	defer stmt.Close()

	for r, row := range t.Rows {
		for c, cell := range row {
			var num, txt any

			if cell.IsNumber {
				num = cell.Number
			} else {
				txt = cell.Text
			}

			_, err = stmt.ExecContext(ctx, tableID, r, c, num, txt)
			if err != nil {
				return fmt.Errorf("insert cell %s[%d][%d]: %w", t.Name, r, c, err)
			}
		}
	}

	return nil
}
