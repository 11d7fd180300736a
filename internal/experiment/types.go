package experiment

import (
	"github.com/roach88/sake/internal/value"
)

// Experiment is one tracked run as persisted under metadata/experiments/.
//
// Only ID, Created, Params and Checkpoints are inspected by queries. The
// remaining descriptive attributes are carried through for display.
type Experiment struct {
	ID          string
	Created     string
	Params      value.Object
	Checkpoints []Checkpoint // nil when the run produced none

	Host           string
	User           string
	Command        string
	Path           string
	PythonVersion  string
	Config         *Config
	PythonPackages value.Object
}

// Checkpoint is one saved snapshot within an experiment.
type Checkpoint struct {
	ID            string
	Created       string
	Step          int64
	Path          string
	Metrics       value.Object
	PrimaryMetric PrimaryMetric
}

// PrimaryMetric names the metric a checkpoint optimizes and its direction.
type PrimaryMetric struct {
	Name string `json:"name"`
	Goal string `json:"goal"`
}

// Goal values understood by BestCheckpoint.
const (
	GoalMaximize = "maximize"
	GoalMinimize = "minimize"
)

// Config is the repository configuration recorded with the run.
type Config struct {
	Repository string `json:"repository"`
	Storage    string `json:"storage"`
}

// ShortIDLength is the number of id characters shown in listings.
const ShortIDLength = 7

// ShortID returns the abbreviated id used in listings.
func (e *Experiment) ShortID() string {
	if len(e.ID) <= ShortIDLength {
		return e.ID
	}
	return e.ID[:ShortIDLength]
}

// AsObject returns the record as a value.Object, for digests and JSON output.
// Empty pass-through attributes are omitted.
func (e *Experiment) AsObject() value.Object {
	obj := value.Object{
		"id":      value.String(e.ID),
		"created": value.String(e.Created),
		"params":  objectOrEmpty(e.Params),
	}

	if e.Checkpoints != nil {
		cps := make(value.Array, len(e.Checkpoints))
		for i := range e.Checkpoints {
			cps[i] = e.Checkpoints[i].AsObject()
		}
		obj["checkpoints"] = cps
	} else {
		obj["checkpoints"] = value.Null{}
	}

	for k, v := range map[string]string{
		"host":           e.Host,
		"user":           e.User,
		"command":        e.Command,
		"path":           e.Path,
		"python_version": e.PythonVersion,
	} {
		if v != "" {
			obj[k] = value.String(v)
		}
	}
	if e.Config != nil {
		obj["config"] = value.Object{
			"repository": value.String(e.Config.Repository),
			"storage":    value.String(e.Config.Storage),
		}
	}
	if e.PythonPackages != nil {
		obj["python_packages"] = e.PythonPackages
	}
	return obj
}

// AsObject returns the checkpoint as a value.Object.
func (c *Checkpoint) AsObject() value.Object {
	return value.Object{
		"id":      value.String(c.ID),
		"created": value.String(c.Created),
		"step":    value.Int(c.Step),
		"path":    value.String(c.Path),
		"metrics": objectOrEmpty(c.Metrics),
		"primary_metric": value.Object{
			"name": value.String(c.PrimaryMetric.Name),
			"goal": value.String(c.PrimaryMetric.Goal),
		},
	}
}

func objectOrEmpty(obj value.Object) value.Object {
	if obj == nil {
		return value.Object{}
	}
	return obj
}
