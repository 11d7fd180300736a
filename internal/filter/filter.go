package filter

import (
	"fmt"
	"strings"

	"github.com/roach88/sake/internal/experiment"
	"github.com/roach88/sake/internal/repoerr"
	"github.com/roach88/sake/internal/value"
)

// Predicate is a boolean test over an experiment.
//
// This is a sealed interface; see the package documentation.
type Predicate interface {
	predicateNode()
}

// Equal matches when Field resolves to a value whose canonical text is
// exactly Literal.
type Equal struct {
	Field   string
	Literal string
}

func (Equal) predicateNode() {}

// And matches when every predicate matches. An empty And matches everything.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Parse builds an Equal predicate from a field=value token.
//
// The token is split on the first '='; the literal keeps any further '='.
// Neither side is trimmed and the field may be empty. A token without '='
// returns a MalformedFilter error carrying the token.
func Parse(token string) (Predicate, error) {
	field, literal, ok := strings.Cut(token, "=")
	if !ok {
		return nil, repoerr.NewMalformedFilterError(token)
	}
	return Equal{Field: field, Literal: literal}, nil
}

// ParseAll parses tokens in order and stops at the first malformed one.
func ParseAll(tokens []string) ([]Predicate, error) {
	preds := make([]Predicate, 0, len(tokens))
	for _, tok := range tokens {
		p, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return preds, nil
}

// Test reports whether exp satisfies p. A nil predicate matches everything.
func Test(p Predicate, exp *experiment.Experiment) bool {
	switch pred := p.(type) {
	case nil:
		return true
	case Equal:
		return testEqual(pred, exp)
	case *Equal:
		return testEqual(*pred, exp)
	case And:
		return testAnd(pred, exp)
	case *And:
		return testAnd(*pred, exp)
	default:
		panic(fmt.Sprintf("filter: unknown predicate type %T", p))
	}
}

func testEqual(eq Equal, exp *experiment.Experiment) bool {
	v, found := exp.Resolve(eq.Field)
	if !found {
		return false
	}
	text, ok := value.Text(v)
	if !ok {
		return false
	}
	return text == eq.Literal
}

func testAnd(and And, exp *experiment.Experiment) bool {
	for _, p := range and.Predicates {
		if !Test(p, exp) {
			return false
		}
	}
	return true
}

// String renders p in token form. And joins its parts with " AND ".
func String(p Predicate) string {
	switch pred := p.(type) {
	case nil:
		return ""
	case Equal:
		return pred.Field + "=" + pred.Literal
	case *Equal:
		return pred.Field + "=" + pred.Literal
	case And:
		return joinAnd(pred)
	case *And:
		return joinAnd(*pred)
	default:
		return fmt.Sprintf("<%T>", p)
	}
}

func joinAnd(and And) string {
	parts := make([]string, len(and.Predicates))
	for i, p := range and.Predicates {
		parts[i] = String(p)
	}
	return strings.Join(parts, " AND ")
}
