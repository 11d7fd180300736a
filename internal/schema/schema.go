// Package schema lints experiment records against an embedded CUE schema.
//
// Unlike the record loader, which stops at the first problem, the linter
// reports every violation it finds, with file positions where CUE has them.
package schema

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

//go:embed experiment.cue
var experimentSchema string

// Violation is one schema problem in one record file.
type Violation struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (v Violation) Error() string {
	loc := v.File
	if v.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", v.File, v.Line, v.Column)
	}
	if v.Path != "" {
		return fmt.Sprintf("%s: %s: %s", loc, v.Path, v.Message)
	}
	return fmt.Sprintf("%s: %s", loc, v.Message)
}

// Validator holds the compiled schema. It is not safe for concurrent use;
// a cue.Context must not be shared across goroutines.
type Validator struct {
	ctx        *cue.Context
	experiment cue.Value
}

// New compiles the embedded schema.
func New() (*Validator, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(experimentSchema, cue.Filename("experiment.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Experiment"))
	if !def.Exists() {
		return nil, fmt.Errorf("schema has no #Experiment definition")
	}

	return &Validator{ctx: ctx, experiment: def}, nil
}

// Validate checks the JSON bytes of one record. filename is used for
// positions. A nil result means the record conforms.
func (v *Validator) Validate(filename string, data []byte) []Violation {
	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return toViolations(filename, err)
	}

	doc := v.ctx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return toViolations(filename, err)
	}

	unified := v.experiment.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toViolations(filename, err)
	}
	return nil
}

// toViolations flattens a CUE error list. Positions inside filename are
// preferred over positions in the schema.
func toViolations(filename string, err error) []Violation {
	var out []Violation
	for _, e := range cueerrors.Errors(err) {
		format, args := e.Msg()
		viol := Violation{
			File:    filename,
			Path:    strings.Join(e.Path(), "."),
			Message: fmt.Sprintf(format, args...),
		}
		for _, pos := range cueerrors.Positions(e) {
			if pos.Filename() == filename {
				viol.Line = pos.Line()
				viol.Column = pos.Column()
				break
			}
		}
		out = append(out, viol)
	}
	if len(out) == 0 {
		out = append(out, Violation{File: filename, Message: err.Error()})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Line != out[j].Line {
			return out[i].Line < out[j].Line
		}
		return out[i].Column < out[j].Column
	})
	return out
}
