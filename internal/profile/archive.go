package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// DefaultArchiveTable is used when an archive entry does not name its table.
const DefaultArchiveTable = "query_profiles"

// ArchivedProfile is one row of an archive listing.
type ArchivedProfile struct {
	QueryID  string
	SavedAt  time.Time
	SizeByte int
}

func (a ArchiveRef) table() string {
	name := a.Table
	if name == "" {
		name = DefaultArchiveTable
	}
	return pgx.Identifier{name}.Sanitize()
}

// Fetch loads the raw profile document stored for queryID.
func Fetch(ctx context.Context, a ArchiveRef, queryID string) ([]byte, error) {
	conn, err := pgx.Connect(ctx, a.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to archive: %w", err)
	}
	defer conn.Close(ctx)

	query := fmt.Sprintf("SELECT profile FROM %s WHERE query_id = $1", a.table())

	var doc string
	err = conn.QueryRow(ctx, query, queryID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("profile %s not found in archive", queryID)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching profile %s: %w", queryID, err)
	}

	return []byte(doc), nil
}

// Save stores data under queryID, replacing any earlier copy. The document is
// parsed first so that only loadable profiles reach the archive.
func Save(ctx context.Context, a ArchiveRef, queryID string, data []byte) error {
	if _, err := Parse(data); err != nil {
		return fmt.Errorf("refusing to archive %s: %w", queryID, err)
	}

	conn, err := pgx.Connect(ctx, a.ConnStr)
	if err != nil {
		return fmt.Errorf("connecting to archive: %w", err)
	}
	defer conn.Close(ctx)

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	table := a.table()
	ddl := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	query_id text PRIMARY KEY,
	profile  text NOT NULL,
	saved_at timestamptz NOT NULL DEFAULT now()
)`, table)
	if _, err := tx.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("creating archive table: %w", err)
	}

	upsert := fmt.Sprintf(`INSERT INTO %s (query_id, profile) VALUES ($1, $2)
ON CONFLICT (query_id) DO UPDATE SET profile = EXCLUDED.profile, saved_at = now()`, table)
	if _, err := tx.Exec(ctx, upsert, queryID, string(data)); err != nil {
		return fmt.Errorf("saving profile %s: %w", queryID, err)
	}

	return tx.Commit(ctx)
}

// ListArchived returns the most recently saved profiles, newest first.
func ListArchived(ctx context.Context, a ArchiveRef, limit int) ([]ArchivedProfile, error) {
	conn, err := pgx.Connect(ctx, a.ConnStr)
	if err != nil {
		return nil, fmt.Errorf("connecting to archive: %w", err)
	}
	defer conn.Close(ctx)

	query := fmt.Sprintf("SELECT query_id, saved_at, length(profile) FROM %s ORDER BY saved_at DESC LIMIT $1", a.table())
	rows, err := conn.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}

	list, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ArchivedProfile, error) {
		var p ArchivedProfile
		err := row.Scan(&p.QueryID, &p.SavedAt, &p.SizeByte)
		return p, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	return list, nil
}
