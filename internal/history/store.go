// Package history keeps rendered network reports in a local sqlite file so a
// later session can tell whether anything changed.
package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	region     TEXT    NOT NULL,
	vpc_id     TEXT    NOT NULL,
	name       TEXT    NOT NULL,
	digest     TEXT    NOT NULL,
	markdown   TEXT    NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_vpc ON snapshots (region, vpc_id, id);
`

type Snapshot struct {
	ID        int64
	Region    string
	VPCID     string
	Name      string
	Digest    string
	Markdown  string
	CreatedAt time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open creates the database file and its directory if needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening history: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating history: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Digest is the hex sha256 of a report.
func Digest(markdown string) string {
	sum := sha256.Sum256([]byte(markdown))
	return hex.EncodeToString(sum[:])
}

// Save records markdown for (region, vpcID). A report identical to the
// latest one is not stored again; the returned bool tells whether a row
// was written.
func (s *Store) Save(ctx context.Context, region, vpcID, name, markdown string) (bool, error) {
	digest := Digest(markdown)
	latest, err := s.Latest(ctx, region, vpcID)
	if err != nil {
		return false, err
	}
	if latest != nil && latest.Digest == digest {
		return false, nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (region, vpc_id, name, digest, markdown, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		region, vpcID, name, digest, markdown, s.now().UnixMilli())
	if err != nil {
		return false, fmt.Errorf("saving snapshot: %w", err)
	}
	return true, nil
}

// Latest returns nil without error when nothing was saved for the VPC.
func (s *Store) Latest(ctx context.Context, region, vpcID string) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, region, vpc_id, name, digest, markdown, created_at FROM snapshots
		 WHERE region = ? AND vpc_id = ? ORDER BY id DESC LIMIT 1`, region, vpcID)
	snap, err := scan(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading latest snapshot: %w", err)
	}
	return snap, nil
}

// List returns up to limit snapshots, newest first. The Markdown field is
// left empty.
func (s *Store) List(ctx context.Context, region, vpcID string, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, region, vpc_id, name, digest, '', created_at FROM snapshots
		 WHERE region = ? AND vpc_id = ? ORDER BY id DESC LIMIT ?`, region, vpcID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("listing snapshots: %w", err)
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

func scan(fn func(dest ...any) error) (*Snapshot, error) {
	var snap Snapshot
	var created int64
	if err := fn(&snap.ID, &snap.Region, &snap.VPCID, &snap.Name, &snap.Digest, &snap.Markdown, &created); err != nil {
		return nil, err
	}
	snap.CreatedAt = time.UnixMilli(created)
	return &snap, nil
}
