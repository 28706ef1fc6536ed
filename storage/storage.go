// Package storage mirrors the configuration into a local SQLite database
// when native sync is enabled. The mirror is replaced wholesale on every
// mutation so it always matches the in-memory sequence.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/yllada/remote-manager/profile"
	"github.com/yllada/remote-manager/vault"
)

const schema = `
CREATE TABLE IF NOT EXISTS connections (
	position     INTEGER PRIMARY KEY,
	id           TEXT NOT NULL UNIQUE,
	name         TEXT NOT NULL,
	mode         TEXT NOT NULL,
	host         TEXT NOT NULL,
	port         INTEGER NOT NULL,
	grp          TEXT NOT NULL,
	username     TEXT NOT NULL,
	sso          INTEGER NOT NULL,
	protocol     TEXT NOT NULL,
	domain       TEXT NOT NULL,
	icon         TEXT NOT NULL,
	credential   TEXT NOT NULL,
	gateway      TEXT NOT NULL,
	last_connected TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS credentials (
	position  INTEGER PRIMARY KEY,
	id        TEXT NOT NULL UNIQUE,
	name      TEXT NOT NULL,
	username  TEXT NOT NULL,
	domain    TEXT NOT NULL
);
`

// Mirror is the SQLite-backed copy of the configuration. A single writer
// connection avoids "database is locked" errors under WAL mode.
type Mirror struct {
	db   *sql.DB
	path string
}

// Open creates or opens the mirror database at the given path with WAL
// mode and a busy timeout, and ensures the schema exists.
func Open(path string) (*Mirror, error) {
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mirror: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mirror: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Mirror{db: db, path: path}, nil
}

// Close closes the underlying database.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// SaveConnections replaces the mirrored connection sequence.
func (m *Mirror) SaveConnections(ctx context.Context, profiles []profile.Profile) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save connections: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM connections`); err != nil {
		return fmt.Errorf("clear connections: %w", err)
	}

	const insert = `INSERT INTO connections
		(position, id, name, mode, host, port, grp, username, sso, protocol, domain, icon, credential, gateway, last_connected)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, p := range profiles {
		last := ""
		if !p.LastConnected.IsZero() {
			last = p.LastConnected.UTC().Format(time.RFC3339Nano)
		}
		_, err := tx.ExecContext(ctx, insert,
			i, p.ID, p.Name, string(p.Mode), p.Host, p.Port, p.Group, p.Username,
			boolToInt(p.SSO), string(p.Protocol), p.Domain, p.Icon, p.CredentialID, p.Gateway, last)
		if err != nil {
			return fmt.Errorf("insert connection %q: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// LoadConnections reads the mirrored connection sequence in order.
func (m *Mirror) LoadConnections(ctx context.Context) ([]profile.Profile, error) {
	const query = `SELECT id, name, mode, host, port, grp, username, sso, protocol, domain, icon, credential, gateway, last_connected
		FROM connections ORDER BY position`
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load connections: %w", err)
	}
	defer rows.Close()

	var profiles []profile.Profile
	for rows.Next() {
		var p profile.Profile
		var mode, protocol, last string
		var sso int
		err := rows.Scan(&p.ID, &p.Name, &mode, &p.Host, &p.Port, &p.Group, &p.Username,
			&sso, &protocol, &p.Domain, &p.Icon, &p.CredentialID, &p.Gateway, &last)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		p.Mode = profile.Mode(mode)
		p.Protocol = profile.Protocol(protocol)
		p.SSO = sso != 0
		if last != "" {
			if t, err := time.Parse(time.RFC3339Nano, last); err == nil {
				p.LastConnected = t
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// SaveCredentials replaces the mirrored credential metadata. Passwords
// never reach the mirror.
func (m *Mirror) SaveCredentials(ctx context.Context, creds []vault.Credential) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save credentials: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM credentials`); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}

	const insert = `INSERT INTO credentials (position, id, name, username, domain) VALUES (?, ?, ?, ?, ?)`
	for i, c := range creds {
		if _, err := tx.ExecContext(ctx, insert, i, c.ID, c.Name, c.Username, c.Domain); err != nil {
			return fmt.Errorf("insert credential %q: %w", c.ID, err)
		}
	}

	return tx.Commit()
}

// LoadCredentials reads the mirrored credential metadata in order.
func (m *Mirror) LoadCredentials(ctx context.Context) ([]vault.Credential, error) {
	const query = `SELECT id, name, username, domain FROM credentials ORDER BY position`
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}
	defer rows.Close()

	var creds []vault.Credential
	for rows.Next() {
		var c vault.Credential
		if err := rows.Scan(&c.ID, &c.Name, &c.Username, &c.Domain); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		creds = append(creds, c)
	}
	return creds, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
