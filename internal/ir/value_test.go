package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	var _ Value = Null{}
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Bool(true)
	var _ Value = Array{String("a"), Int(1)}
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
	// U+FF61 sorts before U+1F600 in UTF-8 but after it in UTF-16,
	// where the emoji is a surrogate pair starting 0xD83D.
	obj := Object{
		"\U0001F600": Int(1),
		"\uFF61":     Int(2),
	}

	assert.Equal(t, []string{"\U0001F600", "\uFF61"}, obj.SortedKeys())
}

func TestObjectMarshalJSONSorted(t *testing.T) {
	obj := Object{
		"size":  Int(10),
		"query": Object{"term": Object{"status": String("active")}},
		"flag":  Bool(false),
		"none":  Null{},
	}

	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"flag":false,"none":null,"query":{"term":{"status":"active"}},"size":10}`, string(data))
}

func TestStrings(t *testing.T) {
	assert.Equal(t, Array{String("a"), String("b")}, Strings("a", "b"))
	assert.Equal(t, Array{}, Strings())
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
	}{
		{"string", `"x"`, String("x")},
		{"int", `7`, Int(7)},
		{"bool", `true`, Bool(true)},
		{"null", `null`, Null{}},
		{"array", `[1,"a"]`, Array{Int(1), String("a")}},
		{"object", `{"term":{"year":2001}}`, Object{"term": Object{"year": Int(2001)}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestParseValueRejectsFloats(t *testing.T) {
	for _, input := range []string{`1.5`, `1e3`, `{"price":9.99}`, `[0.1]`} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseValue([]byte(input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "floats")
		})
	}
}

func TestFromGoYAMLShapes(t *testing.T) {
	// yaml.v3 decodes integers as int and mappings as map[string]any.
	v, err := FromGo(map[string]any{
		"range": map[string]any{
			"year": map[string]any{"gte": 1990, "lt": int64(2000)},
		},
		"tags": []any{"a", true},
	})
	require.NoError(t, err)

	assert.Equal(t, Object{
		"range": Object{"year": Object{"gte": Int(1990), "lt": Int(2000)}},
		"tags":  Array{String("a"), Bool(true)},
	}, v)

	_, err = FromGo(3.5)
	assert.Error(t, err)

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}
