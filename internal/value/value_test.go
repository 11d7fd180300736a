package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check via assignment
	var _ Value = Null{}
	var _ Value = Bool(true)
	var _ Value = String("test")
	var _ Value = Number("1.5")
	var _ Value = Array{String("a"), Number("1")}
	var _ Value = Object{"key": String("value")}
}

func TestObjectSortedKeys(t *testing.T) {
	obj := Object{
		"zebra":  String("z"),
		"apple":  String("a"),
		"banana": String("b"),
	}

	assert.Equal(t, []string{"apple", "banana", "zebra"}, obj.SortedKeys())
}

func TestObjectSortedKeysUTF16Order(t *testing.T) {
	// U+FF5E (BMP) sorts after U+1F600 (surrogate pair 0xD83D...) in UTF-16
	// but before it in UTF-8 byte order.
	obj := Object{
		"\uff5e":     Number("1"),
		"\U0001F600": Number("2"),
	}

	assert.Equal(t, []string{"\U0001F600", "\uff5e"}, obj.SortedKeys())
}

func TestUnmarshalKinds(t *testing.T) {
	tests := []struct {
		name string
		json string
		want Value
	}{
		{"null", `null`, Null{}},
		{"true", `true`, Bool(true)},
		{"false", `false`, Bool(false)},
		{"string", `"adam"`, String("adam")},
		{"integer", `42`, Number("42")},
		{"float keeps literal", `0.10`, Number("0.10")},
		{"exponent", `1e-3`, Number("1e-3")},
		{"negative", `-7`, Number("-7")},
		{"leading whitespace", "  \"x\"", String("x")},
		{"array", `[1,"a",null]`, Array{Number("1"), String("a"), Null{}}},
		{"object", `{"lr":0.01,"opt":{"name":"sgd"}}`, Object{
			"lr":  Number("0.01"),
			"opt": Object{"name": String("sgd")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Unmarshal([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalRejectsInvalid(t *testing.T) {
	for _, in := range []string{``, `nul`, `tru`, `"unterminated`, `{"a":}`, `1.2.3`, `[1,`} {
		t.Run(in, func(t *testing.T) {
			_, err := Unmarshal([]byte(in))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalObject(t *testing.T) {
	obj, err := UnmarshalObject([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, Object{"a": Number("1")}, obj)

	obj, err = UnmarshalObject([]byte(`null`))
	require.NoError(t, err)
	assert.Empty(t, obj)

	_, err = UnmarshalObject([]byte(`[1]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected object, got array")
}

func TestNullKeyIsPresent(t *testing.T) {
	obj, err := UnmarshalObject([]byte(`{"seed":null}`))
	require.NoError(t, err)

	v, ok := obj["seed"]
	assert.True(t, ok)
	assert.Equal(t, Null{}, v)
}

func TestObjectJSONSortedOutput(t *testing.T) {
	obj := Object{"b": Number("2"), "a": Array{Bool(false), Null{}}}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[false,null],"b":2}`, string(data))
}

func TestNumberConversions(t *testing.T) {
	f, err := Number("0.25").Float64()
	require.NoError(t, err)
	assert.InDelta(t, 0.25, f, 1e-12)

	_, err = Number("1e").Float64()
	assert.Error(t, err)

	assert.Equal(t, Number("7"), Int(7))
	assert.Equal(t, Number("-7"), Int(-7))
}

func TestKind(t *testing.T) {
	assert.Equal(t, "null", Kind(Null{}))
	assert.Equal(t, "boolean", Kind(Bool(true)))
	assert.Equal(t, "string", Kind(String("")))
	assert.Equal(t, "number", Kind(Number("1")))
	assert.Equal(t, "array", Kind(Array{}))
	assert.Equal(t, "object", Kind(Object{}))
}
