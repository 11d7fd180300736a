package experiment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/roach88/sake/internal/repoerr"
	"github.com/roach88/sake/internal/value"
)

// FieldError reports a required field that is missing or has the wrong kind.
type FieldError struct {
	Field  string // dotted path, e.g. "checkpoints[1].metrics"
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func missing(field string) *FieldError {
	return &FieldError{Field: field, Reason: "missing required field"}
}

// fields holds one JSON object's members by exact key. encoding/json
// matches struct tags case-insensitively, so records are never decoded
// into structs: "ID" must not satisfy "id".
type fields map[string]json.RawMessage

func objectFields(field string, data []byte) (fields, error) {
	var f fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, &FieldError{Field: field, Reason: err.Error()}
	}
	if f == nil {
		return nil, &FieldError{Field: field, Reason: "must be an object, got null"}
	}
	return f, nil
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// present reports whether key exists with a non-null value.
func (f fields) present(key string) bool {
	raw, ok := f[key]
	return ok && string(bytes.TrimSpace(raw)) != "null"
}

// decodeRequired decodes a key that must be present and non-null.
func (f fields) decodeRequired(prefix, key string, v any) error {
	if !f.present(key) {
		return missing(join(prefix, key))
	}
	if err := json.Unmarshal(f[key], v); err != nil {
		return &FieldError{Field: join(prefix, key), Reason: err.Error()}
	}
	return nil
}

// optionalString decodes a string key; absent and null read as "".
func (f fields) optionalString(prefix, key string) (string, error) {
	var s string
	if !f.present(key) {
		return s, nil
	}
	if err := json.Unmarshal(f[key], &s); err != nil {
		return "", &FieldError{Field: join(prefix, key), Reason: err.Error()}
	}
	return s, nil
}

// object decodes a mapping key. A present null reads as empty.
func (f fields) object(prefix, key string) (value.Object, error) {
	obj, err := value.UnmarshalObject(f[key])
	if err != nil {
		return nil, &FieldError{Field: join(prefix, key), Reason: err.Error()}
	}
	return obj, nil
}

// Load reads and decodes one experiment record.
//
// Read failures return a repoerr IO error; malformed JSON and schema
// mismatches return a repoerr Schema error. Both carry path.
func Load(path string) (*Experiment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, repoerr.NewIOError(path, err)
	}
	return Decode(path, data)
}

// Decode parses the bytes of one record. path is only used for diagnostics.
func Decode(path string, data []byte) (*Experiment, error) {
	exp, err := decode(data)
	if err != nil {
		return nil, repoerr.NewSchemaError(path, err)
	}
	return exp, nil
}

func decode(data []byte) (*Experiment, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("record is not valid UTF-8")
	}

	doc, err := objectFields("record", data)
	if err != nil {
		return nil, err
	}

	exp := &Experiment{}
	if err := doc.decodeRequired("", "id", &exp.ID); err != nil {
		return nil, err
	}
	if err := doc.decodeRequired("", "created", &exp.Created); err != nil {
		return nil, err
	}
	if _, ok := doc["params"]; !ok {
		return nil, missing("params")
	}
	if exp.Params, err = doc.object("", "params"); err != nil {
		return nil, err
	}

	for _, opt := range []struct {
		key string
		dst *string
	}{
		{"host", &exp.Host},
		{"user", &exp.User},
		{"command", &exp.Command},
		{"path", &exp.Path},
		{"python_version", &exp.PythonVersion},
	} {
		if *opt.dst, err = doc.optionalString("", opt.key); err != nil {
			return nil, err
		}
	}

	if doc.present("config") {
		cfg, err := objectFields("config", doc["config"])
		if err != nil {
			return nil, err
		}
		exp.Config = &Config{}
		if exp.Config.Repository, err = cfg.optionalString("config", "repository"); err != nil {
			return nil, err
		}
		if exp.Config.Storage, err = cfg.optionalString("config", "storage"); err != nil {
			return nil, err
		}
	}

	if _, ok := doc["python_packages"]; ok {
		if exp.PythonPackages, err = doc.object("", "python_packages"); err != nil {
			return nil, err
		}
	}

	if doc.present("checkpoints") {
		var raws []json.RawMessage
		if err := json.Unmarshal(doc["checkpoints"], &raws); err != nil {
			return nil, &FieldError{Field: "checkpoints", Reason: err.Error()}
		}
		exp.Checkpoints = make([]Checkpoint, len(raws))
		for i, raw := range raws {
			cp, err := decodeCheckpoint(fmt.Sprintf("checkpoints[%d]", i), raw)
			if err != nil {
				return nil, err
			}
			exp.Checkpoints[i] = cp
		}
	}

	return exp, nil
}

func decodeCheckpoint(prefix string, data []byte) (Checkpoint, error) {
	var cp Checkpoint

	f, err := objectFields(prefix, data)
	if err != nil {
		return cp, err
	}
	if err := f.decodeRequired(prefix, "id", &cp.ID); err != nil {
		return cp, err
	}
	if err := f.decodeRequired(prefix, "created", &cp.Created); err != nil {
		return cp, err
	}
	if err := f.decodeRequired(prefix, "step", &cp.Step); err != nil {
		return cp, err
	}
	if err := f.decodeRequired(prefix, "path", &cp.Path); err != nil {
		return cp, err
	}
	if _, ok := f["metrics"]; !ok {
		return cp, missing(prefix + ".metrics")
	}
	if !f.present("primary_metric") {
		return cp, missing(prefix + ".primary_metric")
	}

	if cp.Step < 0 {
		return cp, &FieldError{
			Field:  prefix + ".step",
			Reason: fmt.Sprintf("must be non-negative, got %d", cp.Step),
		}
	}

	if cp.Metrics, err = f.object(prefix, "metrics"); err != nil {
		return cp, err
	}

	pmPrefix := prefix + ".primary_metric"
	pm, err := objectFields(pmPrefix, f["primary_metric"])
	if err != nil {
		return cp, err
	}
	if err := pm.decodeRequired(pmPrefix, "name", &cp.PrimaryMetric.Name); err != nil {
		return cp, err
	}
	if err := pm.decodeRequired(pmPrefix, "goal", &cp.PrimaryMetric.Goal); err != nil {
		return cp, err
	}
	return cp, nil
}
