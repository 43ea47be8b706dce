package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/wricardo/mcp-training/jackaroo/game/service"
)

// SQL drivers registered by this package
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

const sqlOpTimeout = 5 * time.Second

// Statements use PostgreSQL $N placeholders; rebind rewrites them for SQLite.
// Every statement numbers its parameters in order of appearance.
const (
	createSessionsTable = `CREATE TABLE IF NOT EXISTS sessions (
	id               TEXT PRIMARY KEY,
	config_name      TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	last_accessed_at TEXT NOT NULL,
	state            TEXT NOT NULL
)`
	upsertSession = `INSERT INTO sessions (id, config_name, created_at, last_accessed_at, state)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (id) DO UPDATE SET
	config_name = excluded.config_name,
	last_accessed_at = excluded.last_accessed_at,
	state = excluded.state`
	selectSession  = `SELECT state FROM sessions WHERE id = $1`
	deleteSession  = `DELETE FROM sessions WHERE id = $1`
	listSessionIDs = `SELECT id FROM sessions ORDER BY id`
	existsSession  = `SELECT 1 FROM sessions WHERE id = $1`
)

var placeholder = regexp.MustCompile(`\$\d+`)

func rebind(driver, query string) string {
	if driver == DriverPostgres {
		return query
	}
	return placeholder.ReplaceAllString(query, "?")
}

// SQLPersistence implements SessionPersistence on a sessions table
type SQLPersistence struct {
	db     *sql.DB
	driver string
	codec  codec
}

// OpenSQLPersistence opens driver/dsn (DriverSQLite with a file path, or
// DriverPostgres with a connection URL) and migrates the sessions table
func OpenSQLPersistence(driver, dsn string, configManager service.ConfigManager) (*SQLPersistence, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if driver == DriverSQLite {
		// SQLite allows a single writer
		db.SetMaxOpenConns(1)
	}

	sp, err := NewSQLPersistence(db, driver, configManager)
	if err != nil {
		db.Close()
		return nil, err
	}
	return sp, nil
}

// NewSQLPersistence wraps an open database and creates the sessions table
func NewSQLPersistence(db *sql.DB, driver string, configManager service.ConfigManager) (*SQLPersistence, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sqlOpTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	if _, err := db.ExecContext(ctx, createSessionsTable); err != nil {
		return nil, fmt.Errorf("failed to create sessions table: %w", err)
	}
	return &SQLPersistence{db: db, driver: driver, codec: codec{configManager: configManager}}, nil
}

func (sp *SQLPersistence) q(query string) string {
	return rebind(sp.driver, query)
}

// Close releases the database handle
func (sp *SQLPersistence) Close() error {
	return sp.db.Close()
}

// Save upserts the session row
func (sp *SQLPersistence) Save(session *service.Session) error {
	data, raw, err := sp.codec.marshal(session, false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), sqlOpTimeout)
	defer cancel()
	_, err = sp.db.ExecContext(ctx, sp.q(upsertSession),
		strings.ToLower(data.ID),
		data.ConfigName,
		data.CreatedAt.UTC().Format(time.RFC3339Nano),
		data.LastAccessedAt.UTC().Format(time.RFC3339Nano),
		string(raw),
	)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", data.ID, err)
	}
	return nil
}

// Load reads and restores a session
func (sp *SQLPersistence) Load(id string) (*service.Session, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sqlOpTimeout)
	defer cancel()

	var raw string
	err := sp.db.QueryRowContext(ctx, sp.q(selectSession), strings.ToLower(id)).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	return sp.codec.unmarshal([]byte(raw))
}

// Delete removes the session row
func (sp *SQLPersistence) Delete(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sqlOpTimeout)
	defer cancel()

	res, err := sp.db.ExecContext(ctx, sp.q(deleteSession), strings.ToLower(id))
	if err != nil {
		return fmt.Errorf("failed to delete session %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ListAll returns every stored session ID
func (sp *SQLPersistence) ListAll() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), sqlOpTimeout)
	defer cancel()

	rows, err := sp.db.QueryContext(ctx, sp.q(listSessionIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Exists checks whether a session row is present
func (sp *SQLPersistence) Exists(id string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), sqlOpTimeout)
	defer cancel()

	var one int
	return sp.db.QueryRowContext(ctx, sp.q(existsSession), strings.ToLower(id)).Scan(&one) == nil
}
