// Package filtersql compiles filter predicates to parameterized SQL over an
// exported snapshot (see internal/store).
//
// A snapshot stores one row per resolvable field in the fields table, with
// the canonical text of the resolved value or NULL when it has none. An
// Equal predicate therefore becomes an EXISTS sub-select that matches both
// name and text, which gives the same answer as filter.Test on the record
// the snapshot was built from.
package filtersql

import (
	"fmt"
	"strings"

	"github.com/roach88/sake/internal/filter"
)

// DefaultAlias is the experiments table alias used by Select.
const DefaultAlias = "e"

// Compiler turns predicates into WHERE clause fragments.
//
// All literals are parameterized, never interpolated.
type Compiler struct {
	// Alias is the experiments table alias the fragments correlate with.
	Alias string
}

// NewCompiler creates a Compiler correlating with DefaultAlias.
func NewCompiler() *Compiler {
	return &Compiler{Alias: DefaultAlias}
}

// Select returns a query listing experiment ids that satisfy p, in
// snapshot order.
//
// Every query carries ORDER BY seq so results follow enumeration order.
func (c *Compiler) Select(p filter.Predicate) (string, []any, error) {
	where, args, err := c.Compile(p)
	if err != nil {
		return "", nil, err
	}
	sql := fmt.Sprintf("SELECT %[1]s.seq, %[1]s.id FROM experiments %[1]s WHERE %[2]s ORDER BY %[1]s.seq ASC",
		c.Alias, where)
	return sql, args, nil
}

// Compile converts p to a WHERE fragment and its arguments.
// A nil predicate compiles to "1 = 1".
func (c *Compiler) Compile(p filter.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case filter.Equal:
		return c.compileEqual(pred)
	case *filter.Equal:
		return c.compileEqual(*pred)
	case filter.And:
		return c.compileAnd(pred)
	case *filter.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

// compileEqual matches on the fields table. A NULL text never equals the
// literal, so values without canonical text drop out.
func (c *Compiler) compileEqual(eq filter.Equal) (string, []any, error) {
	sql := fmt.Sprintf(
		"EXISTS (SELECT 1 FROM fields f WHERE f.experiment_seq = %s.seq AND f.name = ? AND f.text = ?)",
		c.Alias)
	return sql, []any{eq.Field, eq.Literal}, nil
}

func (c *Compiler) compileAnd(and filter.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var args []any
	for _, p := range and.Predicates {
		sql, pargs, err := c.Compile(p)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, "("+sql+")")
		args = append(args, pargs...)
	}

	return strings.Join(parts, " AND "), args, nil
}
