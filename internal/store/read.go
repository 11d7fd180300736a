package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sake/internal/filter"
	"github.com/roach88/sake/internal/filter/filtersql"
	"github.com/roach88/sake/internal/value"
)

// Row is one stored experiment.
type Row struct {
	Seq     int64
	ID      string
	Created string
	Digest  string
	Record  value.Object
}

// Counts reports table sizes of a snapshot.
type Counts struct {
	Experiments int
	Params      int
	Checkpoints int
	Metrics     int
}

// ReadSnapshot returns the snapshot metadata. A database that was never
// written returns the zero Snapshot.
func (s *Store) ReadSnapshot(ctx context.Context) (Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM snapshot ORDER BY key ASC")
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	defer rows.Close()

	var meta Snapshot
	for rows.Next() {
		var key, val string
		if err := rows.Scan(&key, &val); err != nil {
			return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
		}
		switch key {
		case "source":
			meta.Source = val
		case "filter":
			meta.Filter = val
		}
	}
	return meta, rows.Err()
}

// ReadExperiment returns the experiment stored at seq, or sql.ErrNoRows.
func (s *Store) ReadExperiment(ctx context.Context, seq int64) (Row, error) {
	var r Row
	var record string
	err := s.db.QueryRowContext(ctx, `
		SELECT seq, id, created, digest, record
		FROM experiments
		WHERE seq = ?
	`, seq).Scan(&r.Seq, &r.ID, &r.Created, &r.Digest, &record)
	if errors.Is(err, sql.ErrNoRows) {
		return Row{}, err
	}
	if err != nil {
		return Row{}, fmt.Errorf("read experiment %d: %w", seq, err)
	}
	if r.Record, err = unmarshalRecord(record); err != nil {
		return Row{}, err
	}
	return r, nil
}

// Match is a stored experiment satisfying a predicate.
type Match struct {
	Seq int64
	ID  string
}

// Select returns the stored experiments satisfying p, in seq order. It
// agrees with filter.Test on the records that were exported.
func (s *Store) Select(ctx context.Context, p filter.Predicate) ([]Match, error) {
	query, args, err := filtersql.NewCompiler().Select(p)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	defer rows.Close()

	matches := []Match{}
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.Seq, &m.ID); err != nil {
			return nil, fmt.Errorf("select: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// SelectIDs is Select reduced to ids.
func (s *Store) SelectIDs(ctx context.Context, p filter.Predicate) ([]string, error) {
	matches, err := s.Select(ctx, p)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
	}
	return ids, nil
}

// Count returns the number of rows in each snapshot table.
func (s *Store) Count(ctx context.Context) (Counts, error) {
	var c Counts
	for _, q := range []struct {
		table string
		dest  *int
	}{
		{"experiments", &c.Experiments},
		{"params", &c.Params},
		{"checkpoints", &c.Checkpoints},
		{"metrics", &c.Metrics},
	} {
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+q.table).Scan(q.dest); err != nil {
			return Counts{}, fmt.Errorf("count %s: %w", q.table, err)
		}
	}
	return c, nil
}
