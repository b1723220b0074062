package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/freightmesh/core"
	_ "modernc.org/sqlite"
)

// SQLiteStore is a durable NegotiationStore backed by SQLite. The offer
// history is stored as a JSON column; the conditional write is a guarded
// UPDATE on (id, version).
type SQLiteStore struct {
	db *sql.DB
}

var _ core.NegotiationStore = (*SQLiteStore)(nil)

// NewSQLite opens (or creates) a SQLite-backed store at the given path.
// WAL mode and a busy timeout keep concurrent writers from tripping over
// SQLITE_BUSY under normal contention.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS negotiations (
		id TEXT PRIMARY KEY,
		load_id TEXT NOT NULL,
		driver_id TEXT NOT NULL,
		status TEXT NOT NULL,
		target_rate REAL NOT NULL,
		floor_rate REAL NOT NULL,
		current_offer REAL NOT NULL,
		counter_offer REAL,
		round INTEGER NOT NULL,
		max_rounds INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		booking_triggered INTEGER NOT NULL DEFAULT 0,
		offer_history TEXT NOT NULL,
		version INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_negotiations_status_expiry ON negotiations(status, expires_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Create persists a new record, failing with core.ErrAlreadyExists on an
// id collision.
func (s *SQLiteStore) Create(ctx context.Context, n *core.Negotiation) error {
	history, err := json.Marshal(n.OfferHistory)
	if err != nil {
		return fmt.Errorf("marshal offer history: %w", err)
	}

	query := `
	INSERT INTO negotiations (id, load_id, driver_id, status, target_rate, floor_rate,
		current_offer, counter_offer, round, max_rounds, expires_at, booking_triggered,
		offer_history, version, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		n.ID, n.LoadID, n.DriverID, string(n.Status), n.TargetRate, n.FloorRate,
		n.CurrentOffer, nullableFloat(n.CounterOffer), n.Round, n.MaxRounds,
		n.ExpiresAt.Unix(), boolToInt(n.BookingTriggered),
		string(history), n.Version, n.Created.Unix(), n.Updated.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return core.ErrAlreadyExists
		}
		return fmt.Errorf("insert negotiation: %w", err)
	}
	return nil
}

// Get retrieves a record by id or returns core.ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*core.Negotiation, error) {
	query := selectColumns + ` FROM negotiations WHERE id = ?`
	n, err := scanNegotiation(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan negotiation row: %w", err)
	}
	return n, nil
}

// PutIfVersion persists the record with a guarded UPDATE on (id, version).
// Zero affected rows means either the record vanished or the version
// moved; a follow-up existence check disambiguates conflict from missing.
func (s *SQLiteStore) PutIfVersion(ctx context.Context, n *core.Negotiation, expectedVersion int64) error {
	history, err := json.Marshal(n.OfferHistory)
	if err != nil {
		return fmt.Errorf("marshal offer history: %w", err)
	}

	query := `
	UPDATE negotiations SET
		status = ?, target_rate = ?, floor_rate = ?, current_offer = ?, counter_offer = ?,
		round = ?, max_rounds = ?, expires_at = ?, booking_triggered = ?,
		offer_history = ?, version = ?, updated_at = ?
	WHERE id = ? AND version = ?`

	res, err := s.db.ExecContext(ctx, query,
		string(n.Status), n.TargetRate, n.FloorRate, n.CurrentOffer, nullableFloat(n.CounterOffer),
		n.Round, n.MaxRounds, n.ExpiresAt.Unix(), boolToInt(n.BookingTriggered),
		string(history), expectedVersion+1, n.Updated.Unix(),
		n.ID, expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update negotiation: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		var exists int
		row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM negotiations WHERE id = ?`, n.ID)
		if err := row.Scan(&exists); err != nil {
			return fmt.Errorf("check negotiation existence: %w", err)
		}
		if exists == 0 {
			return core.ErrNotFound
		}
		return core.ErrConcurrencyConflict
	}

	n.Version = expectedVersion + 1
	return nil
}

// Scan returns all records matching the filter.
func (s *SQLiteStore) Scan(ctx context.Context, filter core.ScanFilter) ([]*core.Negotiation, error) {
	query := selectColumns + ` FROM negotiations`
	var clauses []string
	var args []any

	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(st))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ", ")))
	}
	if !filter.ExpiresBefore.IsZero() {
		clauses = append(clauses, "expires_at < ?")
		args = append(args, filter.ExpiresBefore.Unix())
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("scan negotiations: %w", err)
	}
	defer rows.Close()

	var out []*core.Negotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan negotiation row: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

const selectColumns = `
	SELECT id, load_id, driver_id, status, target_rate, floor_rate, current_offer,
		counter_offer, round, max_rounds, expires_at, booking_triggered,
		offer_history, version, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNegotiation(row rowScanner) (*core.Negotiation, error) {
	var n core.Negotiation
	var status, history string
	var counterOffer sql.NullFloat64
	var bookingTriggered int
	var expiresAt, createdAt, updatedAt int64

	err := row.Scan(
		&n.ID, &n.LoadID, &n.DriverID, &status, &n.TargetRate, &n.FloorRate, &n.CurrentOffer,
		&counterOffer, &n.Round, &n.MaxRounds, &expiresAt, &bookingTriggered,
		&history, &n.Version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Status = core.Status(status)
	if counterOffer.Valid {
		v := counterOffer.Float64
		n.CounterOffer = &v
	}
	n.BookingTriggered = bookingTriggered != 0
	n.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	n.Created = time.Unix(createdAt, 0).UTC()
	n.Updated = time.Unix(updatedAt, 0).UTC()
	if err := json.Unmarshal([]byte(history), &n.OfferHistory); err != nil {
		return nil, fmt.Errorf("unmarshal offer history: %w", err)
	}
	return &n, nil
}

func nullableFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
