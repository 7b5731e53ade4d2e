/*
Package sqlite provides a SQLite-backed implementation of the storage layer.

PURPOSE:
  Persists the unit catalog and converter configurations. In production the
  same patterns apply to PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  units:       Unit catalog entries (id, name, category, factor)
  converters:  Converter configurations (name is the primary key)
  scale_lines: Bracket rules, cascade-deleted with their converter

INVARIANTS ENFORCED HERE:
  - Converter names are globally unique (PRIMARY KEY on name)
  - Scale lines belong to exactly one converter and disappear with it
    (FOREIGN KEY ... ON DELETE CASCADE)
  - Line insertion order survives reloads (explicit position column), so
    the engine's first-inserted tie-break for equal bounds is stable

DECIMAL STORAGE:
  Quantities, factors, coefficients and constants are stored as TEXT and
  parsed with shopspring/decimal. REAL columns would reintroduce exactly
  the float drift the engine exists to avoid at bracket boundaries.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. SQLite is opened with WAL and
  foreign keys on.

USAGE:
  store, err := sqlite.New("./data/uom.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - scale/registry.go: The in-memory view served from these records
  - factory: Converts between records and scale.Converter values
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/uom-engine/scale"
)

// Store implements persistence for units and converters using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Unit catalog
	CREATE TABLE IF NOT EXISTS units (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		factor TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_units_category ON units(category);

	-- Converter configurations. The name is the identity and is unique.
	CREATE TABLE IF NOT EXISTS converters (
		name TEXT PRIMARY KEY,
		source_unit TEXT NOT NULL,
		destination_unit TEXT NOT NULL,
		rounding TEXT NOT NULL DEFAULT 'none',
		description TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Scale lines, owned exclusively by their converter.
	-- position preserves insertion order: lookup ties between equal
	-- max_quantity values resolve to the first inserted line, and that
	-- choice must survive a reload.
	CREATE TABLE IF NOT EXISTS scale_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		converter_name TEXT NOT NULL
			REFERENCES converters(name) ON DELETE CASCADE,
		max_quantity TEXT NOT NULL,
		coefficient TEXT NOT NULL,
		constant TEXT NOT NULL,
		position INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_scale_lines_converter
		ON scale_lines(converter_name, max_quantity);
	`

	_, err := s.db.Exec(schema)
	return err
}

// withTx executes fn within a database transaction.
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// =============================================================================
// RECORD TYPES
// =============================================================================

// UnitRecord is a persisted catalog unit.
type UnitRecord struct {
	ID        string
	Name      string
	Category  string
	Factor    decimal.Decimal
	CreatedAt time.Time
}

// ConverterRecord is a persisted converter configuration with its lines.
type ConverterRecord struct {
	Name            string
	SourceUnit      string
	DestinationUnit string
	Rounding        string
	Description     string
	Lines           []LineRecord
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LineRecord is one persisted scale line, in insertion order.
type LineRecord struct {
	MaxQuantity decimal.Decimal
	Coefficient decimal.Decimal
	Constant    decimal.Decimal
}

// =============================================================================
// UNIT CRUD
// =============================================================================

// SaveUnit inserts or updates a catalog unit.
func (s *Store) SaveUnit(ctx context.Context, u UnitRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO units (id, name, category, factor, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			category = excluded.category,
			factor = excluded.factor`,
		u.ID, u.Name, u.Category, u.Factor.String(), time.Now().UTC().Format(time.RFC3339))
	return err
}

// GetUnit returns a unit by ID, or nil if it doesn't exist.
func (s *Store) GetUnit(ctx context.Context, id string) (*UnitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, category, factor, created_at FROM units WHERE id = ?`, id)

	u, err := scanUnit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUnits returns all catalog units ordered by category then ID.
func (s *Store) ListUnits(ctx context.Context) ([]UnitRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, category, factor, created_at
		FROM units ORDER BY category, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []UnitRecord
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// DeleteUnit removes a catalog unit.
func (s *Store) DeleteUnit(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM units WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", scale.ErrUnknownUnit, id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanUnit(row scannable) (UnitRecord, error) {
	var u UnitRecord
	var factor, createdAt string
	if err := row.Scan(&u.ID, &u.Name, &u.Category, &factor, &createdAt); err != nil {
		return UnitRecord{}, err
	}
	u.Factor = parseDecimal(factor)
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

// =============================================================================
// CONVERTER CRUD
// =============================================================================

// CreateConverter inserts a new converter with its lines atomically.
// Fails with scale.ErrDuplicateName when the name is taken.
func (s *Store) CreateConverter(ctx context.Context, r ConverterRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(time.RFC3339)
		_, err := tx.ExecContext(ctx, `
			INSERT INTO converters (name, source_unit, destination_unit, rounding, description, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			r.Name, r.SourceUnit, r.DestinationUnit, r.Rounding, r.Description, now, now)
		if err != nil {
			if isUniqueConstraintError(err) {
				return fmt.Errorf("%w: %s", scale.ErrDuplicateName, r.Name)
			}
			return err
		}
		return insertLines(ctx, tx, r.Name, r.Lines)
	})
}

// UpdateConverter replaces an existing converter's configuration and lines
// atomically. Fails with scale.ErrConverterNotFound for unknown names.
func (s *Store) UpdateConverter(ctx context.Context, r ConverterRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, `
			UPDATE converters
			SET source_unit = ?, destination_unit = ?, rounding = ?, description = ?, updated_at = ?
			WHERE name = ?`,
			r.SourceUnit, r.DestinationUnit, r.Rounding, r.Description,
			time.Now().UTC().Format(time.RFC3339), r.Name)
		if err != nil {
			return err
		}
		n, _ := result.RowsAffected()
		if n == 0 {
			return fmt.Errorf("%w: %s", scale.ErrConverterNotFound, r.Name)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM scale_lines WHERE converter_name = ?`, r.Name); err != nil {
			return err
		}
		return insertLines(ctx, tx, r.Name, r.Lines)
	})
}

// GetConverter returns a converter with its lines in insertion order,
// or nil if it doesn't exist.
func (s *Store) GetConverter(ctx context.Context, name string) (*ConverterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT name, source_unit, destination_unit, rounding, description, created_at, updated_at
		FROM converters WHERE name = ?`, name)

	r, err := scanConverter(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	lines, err := s.loadLines(ctx, name)
	if err != nil {
		return nil, err
	}
	r.Lines = lines
	return &r, nil
}

// ListConverters returns all converters with their lines, ordered by name.
func (s *Store) ListConverters(ctx context.Context) ([]ConverterRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, source_unit, destination_unit, rounding, description, created_at, updated_at
		FROM converters ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []ConverterRecord
	for rows.Next() {
		r, err := scanConverter(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		lines, err := s.loadLines(ctx, records[i].Name)
		if err != nil {
			return nil, err
		}
		records[i].Lines = lines
	}
	return records, nil
}

// DeleteConverter removes a converter; its scale lines go with it via the
// cascade. Fails with scale.ErrConverterNotFound for unknown names.
func (s *Store) DeleteConverter(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.ExecContext(ctx, `DELETE FROM converters WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return fmt.Errorf("%w: %s", scale.ErrConverterNotFound, name)
	}
	return nil
}

func (s *Store) loadLines(ctx context.Context, converterName string) ([]LineRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT max_quantity, coefficient, constant
		FROM scale_lines WHERE converter_name = ? ORDER BY position`, converterName)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []LineRecord
	for rows.Next() {
		var maxQty, coeff, constant string
		if err := rows.Scan(&maxQty, &coeff, &constant); err != nil {
			return nil, err
		}
		lines = append(lines, LineRecord{
			MaxQuantity: parseDecimal(maxQty),
			Coefficient: parseDecimal(coeff),
			Constant:    parseDecimal(constant),
		})
	}
	return lines, rows.Err()
}

func insertLines(ctx context.Context, tx *sql.Tx, converterName string, lines []LineRecord) error {
	for i, l := range lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO scale_lines (converter_name, max_quantity, coefficient, constant, position)
			VALUES (?, ?, ?, ?, ?)`,
			converterName, l.MaxQuantity.String(), l.Coefficient.String(), l.Constant.String(), i)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanConverter(row scannable) (ConverterRecord, error) {
	var r ConverterRecord
	var description sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&r.Name, &r.SourceUnit, &r.DestinationUnit, &r.Rounding,
		&description, &createdAt, &updatedAt)
	if err != nil {
		return ConverterRecord{}, err
	}
	r.Description = description.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return r, nil
}

// =============================================================================
// MAINTENANCE
// =============================================================================

// Reset wipes all data. Dev/test only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"scale_lines", "converters", "units"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
