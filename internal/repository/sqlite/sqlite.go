package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ductnet/internal/domain"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite serializes writers anyway and an in-memory
	// database exists per connection
	db.SetMaxOpenConns(1)

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func dsn(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS owners (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS wells (
		id INTEGER PRIMARY KEY,
		number TEXT NOT NULL,
		lat REAL NOT NULL DEFAULT 0,
		lng REAL NOT NULL DEFAULT 0,
		kind TEXT
	);

	CREATE TABLE IF NOT EXISTS directions (
		id INTEGER PRIMARY KEY,
		number TEXT,
		start_well_id INTEGER NOT NULL,
		end_well_id INTEGER NOT NULL,
		length_m REAL NOT NULL,
		slot_count INTEGER NOT NULL,
		owner_id INTEGER,
		status TEXT
	);

	CREATE TABLE IF NOT EXISTS slots (
		id INTEGER PRIMARY KEY,
		direction_id INTEGER NOT NULL,
		number INTEGER NOT NULL,
		kind TEXT,
		status TEXT
	);

	CREATE TABLE IF NOT EXISTS cables (
		id INTEGER PRIMARY KEY,
		number TEXT,
		topology TEXT NOT NULL,
		slot_ids JSON,
		polyline JSON,
		owner_id INTEGER,
		status TEXT
	);

	CREATE TABLE IF NOT EXISTS observations (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		well_id INTEGER NOT NULL,
		direction_id INTEGER NOT NULL,
		count INTEGER NOT NULL,
		captured_at TEXT NOT NULL,
		source TEXT
	);

	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		variant INTEGER NOT NULL,
		revision TEXT NOT NULL,
		created_at TEXT NOT NULL,
		used_unaccounted INTEGER NOT NULL,
		total_unaccounted INTEGER NOT NULL,
		routes JSON NOT NULL
	);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_directions_start ON directions(start_well_id);
	CREATE INDEX IF NOT EXISTS idx_directions_end ON directions(end_well_id);
	CREATE INDEX IF NOT EXISTS idx_slots_direction ON slots(direction_id);
	CREATE INDEX IF NOT EXISTS idx_observations_direction ON observations(direction_id);
	CREATE INDEX IF NOT EXISTS idx_scenarios_variant ON scenarios(variant);
	`

	_, err := r.db.Exec(schema)
	return err
}

// LoadSnapshot loads every network record from the database
func (r *Repository) LoadSnapshot(ctx context.Context) (*domain.Snapshot, error) {
	snap := domain.NewSnapshot()

	if err := r.loadRows(ctx, "owners", `SELECT `+ownerColumns+` FROM owners ORDER BY id`,
		func(rows *sql.Rows) error {
			var row ownerRow
			if err := rows.Scan(row.scanArgs()...); err != nil {
				return err
			}
			snap.Owners = append(snap.Owners, row.toDomain())
			return nil
		}); err != nil {
		return nil, err
	}

	if err := r.loadRows(ctx, "wells", `SELECT `+wellColumns+` FROM wells ORDER BY id`,
		func(rows *sql.Rows) error {
			var row wellRow
			if err := rows.Scan(row.scanArgs()...); err != nil {
				return err
			}
			snap.AddWell(row.toDomain())
			return nil
		}); err != nil {
		return nil, err
	}

	if err := r.loadRows(ctx, "directions", `SELECT `+directionColumns+` FROM directions ORDER BY id`,
		func(rows *sql.Rows) error {
			var row directionRow
			if err := rows.Scan(row.scanArgs()...); err != nil {
				return err
			}
			snap.AddDirection(row.toDomain())
			return nil
		}); err != nil {
		return nil, err
	}

	if err := r.loadRows(ctx, "slots", `SELECT `+slotColumns+` FROM slots ORDER BY id`,
		func(rows *sql.Rows) error {
			var row slotRow
			if err := rows.Scan(row.scanArgs()...); err != nil {
				return err
			}
			snap.AddSlot(row.toDomain())
			return nil
		}); err != nil {
		return nil, err
	}

	if err := r.loadRows(ctx, "cables", `SELECT `+cableColumns+` FROM cables ORDER BY id`,
		func(rows *sql.Rows) error {
			var row cableRow
			if err := rows.Scan(row.scanArgs()...); err != nil {
				return err
			}
			cable, err := row.toDomain()
			if err != nil {
				return err
			}
			snap.AddCable(cable)
			return nil
		}); err != nil {
		return nil, err
	}

	// Observation order is the import order
	if err := r.loadRows(ctx, "observations", `SELECT `+observationColumns+` FROM observations ORDER BY seq`,
		func(rows *sql.Rows) error {
			var row observationRow
			if err := rows.Scan(row.scanArgs()...); err != nil {
				return err
			}
			obs, err := row.toDomain()
			if err != nil {
				return err
			}
			snap.AddObservation(obs)
			return nil
		}); err != nil {
		return nil, err
	}

	takenAt, err := r.metadata(ctx, "taken_at")
	if err != nil {
		return nil, err
	}
	if takenAt != "" {
		if snap.TakenAt, err = parseTime(takenAt); err != nil {
			return nil, fmt.Errorf("failed to parse taken_at: %w", err)
		}
	}

	return snap, nil
}

func (r *Repository) loadRows(ctx context.Context, table, query string, scan func(*sql.Rows) error) error {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return fmt.Errorf("failed to scan %s: %w", table, err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating %s: %w", table, err)
	}
	return nil
}

func (r *Repository) metadata(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read metadata %s: %w", key, err)
	}
	return value, nil
}

// ImportSnapshot replaces all network records with the snapshot. Stored
// scenarios are kept; their revision tells whether they are stale.
func (r *Repository) ImportSnapshot(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Clear existing data
	for _, table := range []string{"observations", "cables", "slots", "directions", "wells", "owners"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	inserts := []struct {
		table string
		query string
		count int
		args  func(i int) ([]any, error)
	}{
		{"owners", `INSERT INTO owners (` + ownerColumns + `) VALUES (?, ?)`, len(snap.Owners),
			func(i int) ([]any, error) { return ownerInsertArgs(snap.Owners[i]), nil }},
		{"wells", `INSERT INTO wells (` + wellColumns + `) VALUES (?, ?, ?, ?, ?)`, len(snap.Wells),
			func(i int) ([]any, error) { return wellInsertArgs(snap.Wells[i]), nil }},
		{"directions", `INSERT INTO directions (` + directionColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, len(snap.Directions),
			func(i int) ([]any, error) { return directionInsertArgs(snap.Directions[i]), nil }},
		{"slots", `INSERT INTO slots (` + slotColumns + `) VALUES (?, ?, ?, ?, ?)`, len(snap.Slots),
			func(i int) ([]any, error) { return slotInsertArgs(snap.Slots[i]), nil }},
		{"cables", `INSERT INTO cables (` + cableColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`, len(snap.Cables),
			func(i int) ([]any, error) { return cableInsertArgs(snap.Cables[i]) }},
		{"observations", `INSERT INTO observations (` + observationColumns + `) VALUES (?, ?, ?, ?, ?)`, len(snap.Observations),
			func(i int) ([]any, error) { return observationInsertArgs(snap.Observations[i]), nil }},
	}

	for _, ins := range inserts {
		if err := insertAll(ctx, tx, ins.table, ins.query, ins.count, ins.args); err != nil {
			return err
		}
	}

	if err := setMetadata(ctx, tx, "taken_at", formatTime(snap.TakenAt)); err != nil {
		return err
	}
	if err := setMetadata(ctx, tx, "last_import", formatTime(time.Now())); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func insertAll(ctx context.Context, tx *sql.Tx, table, query string, count int, args func(int) ([]any, error)) error {
	if count == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to prepare %s statement: %w", table, err)
	}
	defer stmt.Close()

	for i := 0; i < count; i++ {
		a, err := args(i)
		if err != nil {
			return fmt.Errorf("failed to encode %s[%d]: %w", table, i, err)
		}
		if _, err := stmt.ExecContext(ctx, a...); err != nil {
			return fmt.Errorf("failed to insert %s[%d]: %w", table, i, err)
		}
	}
	return nil
}

func setMetadata(ctx context.Context, tx *sql.Tx, key, value string) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// LastImport returns when records were last imported, or the zero time
func (r *Repository) LastImport(ctx context.Context) (time.Time, error) {
	value, err := r.metadata(ctx, "last_import")
	if err != nil || value == "" {
		return time.Time{}, err
	}
	return parseTime(value)
}

// SaveScenario stores an inference run, replacing the previous scenario of
// the same variant
func (r *Repository) SaveScenario(ctx context.Context, scenario *domain.Scenario) error {
	args, err := scenarioInsertArgs(scenario)
	if err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM scenarios WHERE variant = ?`, int(scenario.Variant)); err != nil {
		return fmt.Errorf("failed to clear scenario: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scenarios (`+scenarioColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`, args...); err != nil {
		return fmt.Errorf("failed to insert scenario %s: %w", scenario.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// LatestScenario returns the stored scenario of a variant
func (r *Repository) LatestScenario(ctx context.Context, variant domain.Variant) (*domain.Scenario, error) {
	var row scenarioRow
	err := r.db.QueryRowContext(ctx, `
		SELECT `+scenarioColumns+` FROM scenarios
		WHERE variant = ? ORDER BY created_at DESC LIMIT 1
	`, int(variant)).Scan(row.scanArgs()...)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: "scenario", ID: int64(variant)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query scenario: %w", err)
	}
	return row.toDomain()
}

// ListScenarios returns all stored scenarios ordered by variant
func (r *Repository) ListScenarios(ctx context.Context) ([]*domain.Scenario, error) {
	var scenarios []*domain.Scenario
	err := r.loadRows(ctx, "scenarios", `SELECT `+scenarioColumns+` FROM scenarios ORDER BY variant, created_at`,
		func(rows *sql.Rows) error {
			var row scenarioRow
			if err := rows.Scan(row.scanArgs()...); err != nil {
				return err
			}
			s, err := row.toDomain()
			if err != nil {
				return err
			}
			scenarios = append(scenarios, s)
			return nil
		})
	if err != nil {
		return nil, err
	}
	return scenarios, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}
