package experiment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/sake/internal/value"
)

func checkpoint(id string, metrics value.Object) Checkpoint {
	return Checkpoint{
		ID:            id,
		Metrics:       metrics,
		PrimaryMetric: PrimaryMetric{Name: "loss", Goal: GoalMinimize},
	}
}

func TestResolve(t *testing.T) {
	exp := &Experiment{
		ID: "abc",
		Params: value.Object{
			"lr":      value.Number("0.1"),
			"dropout": value.Null{},
			"":        value.String("blank"),
		},
		Checkpoints: []Checkpoint{
			checkpoint("c1", value.Object{"loss": value.Number("0.5")}),
			checkpoint("c2", value.Object{"loss": value.Number("0.2"), "acc": value.Number("0.9"), "lr": value.Number("7")}),
		},
	}

	tests := []struct {
		name  string
		field string
		want  value.Value
		found bool
	}{
		{"param", "lr", value.Number("0.1"), true},
		{"null param is present", "dropout", value.Null{}, true},
		{"first checkpoint wins", "loss", value.Number("0.5"), true},
		{"later checkpoint", "acc", value.Number("0.9"), true},
		{"empty field name", "", value.String("blank"), true},
		{"absent", "momentum", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := exp.Resolve(tt.field)
			assert.Equal(t, tt.found, found)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveWithoutCheckpoints(t *testing.T) {
	exp := &Experiment{ID: "abc", Params: value.Object{}}

	got, found := exp.Resolve("loss")
	assert.False(t, found)
	assert.Nil(t, got)
}

func TestResolveNilParams(t *testing.T) {
	exp := &Experiment{
		ID:          "abc",
		Checkpoints: []Checkpoint{checkpoint("c1", value.Object{"loss": value.Number("1")})},
	}

	got, found := exp.Resolve("loss")
	assert.True(t, found)
	assert.Equal(t, value.Number("1"), got)
}
