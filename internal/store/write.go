package store

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/roach88/sake/internal/experiment"
	"github.com/roach88/sake/internal/value"
)

// Snapshot describes where an export came from.
type Snapshot struct {
	Source string // experiments directory
	Filter string // filter in token form, empty when unfiltered
}

// WriteSnapshot replaces the stored snapshot with exps, in order.
//
// Everything happens in one transaction; on error the previous snapshot is
// left untouched.
func (s *Store) WriteSnapshot(ctx context.Context, meta Snapshot, exps []*experiment.Experiment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write snapshot: begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM fields",
		"DELETE FROM metrics",
		"DELETE FROM checkpoints",
		"DELETE FROM params",
		"DELETE FROM experiments",
		"DELETE FROM snapshot",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("write snapshot: %s: %w", stmt, err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO snapshot (key, value) VALUES ('source', ?), ('filter', ?)",
		meta.Source, meta.Filter); err != nil {
		return fmt.Errorf("write snapshot: metadata: %w", err)
	}

	checkpoints := 0
	for i, exp := range exps {
		seq := int64(i + 1)
		if err := writeExperiment(ctx, tx, seq, exp); err != nil {
			return fmt.Errorf("write snapshot: experiment %s: %w", exp.ID, err)
		}
		checkpoints += len(exp.Checkpoints)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write snapshot: commit: %w", err)
	}

	s.logger.Info("wrote snapshot",
		zap.String("source", meta.Source),
		zap.Int("experiments", len(exps)),
		zap.Int("checkpoints", checkpoints))
	return nil
}

func writeExperiment(ctx context.Context, tx *sql.Tx, seq int64, exp *experiment.Experiment) error {
	obj := exp.AsObject()
	record, err := marshalValue(obj)
	if err != nil {
		return err
	}
	digest, err := value.Digest(value.DomainExperiment, obj)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO experiments (seq, id, created, digest, record)
		VALUES (?, ?, ?, ?, ?)
	`, seq, exp.ID, exp.Created, digest, record); err != nil {
		return fmt.Errorf("insert experiment: %w", err)
	}

	for _, name := range exp.Params.SortedKeys() {
		v := exp.Params[name]
		raw, err := marshalValue(v)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO params (experiment_seq, name, value, text)
			VALUES (?, ?, ?, ?)
		`, seq, name, raw, textOf(v)); err != nil {
			return fmt.Errorf("insert param %q: %w", name, err)
		}
	}

	for pos := range exp.Checkpoints {
		if err := writeCheckpoint(ctx, tx, seq, pos, &exp.Checkpoints[pos]); err != nil {
			return err
		}
	}

	for _, name := range resolvableFields(exp) {
		v, _ := exp.Resolve(name)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fields (experiment_seq, name, text)
			VALUES (?, ?, ?)
		`, seq, name, textOf(v)); err != nil {
			return fmt.Errorf("insert field %q: %w", name, err)
		}
	}

	return nil
}

func writeCheckpoint(ctx context.Context, tx *sql.Tx, seq int64, pos int, cp *experiment.Checkpoint) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO checkpoints
		(experiment_seq, position, id, created, step, path, primary_metric, goal)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, seq, pos, cp.ID, cp.Created, cp.Step, cp.Path, cp.PrimaryMetric.Name, cp.PrimaryMetric.Goal); err != nil {
		return fmt.Errorf("insert checkpoint %s: %w", cp.ID, err)
	}

	for _, name := range cp.Metrics.SortedKeys() {
		v := cp.Metrics[name]
		raw, err := marshalValue(v)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO metrics (experiment_seq, position, name, value, text)
			VALUES (?, ?, ?, ?, ?)
		`, seq, pos, name, raw, textOf(v)); err != nil {
			return fmt.Errorf("insert metric %q: %w", name, err)
		}
	}
	return nil
}

// resolvableFields lists every name Resolve finds on exp: params keys and
// every checkpoint's metric keys, deduplicated, sorted.
func resolvableFields(exp *experiment.Experiment) []string {
	names := value.Object{}
	for k := range exp.Params {
		names[k] = value.Null{}
	}
	for i := range exp.Checkpoints {
		for k := range exp.Checkpoints[i].Metrics {
			names[k] = value.Null{}
		}
	}
	return names.SortedKeys()
}
