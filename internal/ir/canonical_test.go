package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-1), "-1"},
		{"max int64", Int(9223372036854775807), "9223372036854775807"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array of ints", Array{Int(1), Int(2), Int(3)}, "[1,2,3]"},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := Object{
		"sort":    Array{Object{"_doc": Object{"order": String("asc")}}},
		"size":    Int(10),
		"_source": Bool(false),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"_source":false,"size":10,"sort":[{"_doc":{"order":"asc"}}]}`, string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("doc['a'].value < 5 && x > 1"))
	require.NoError(t, err)
	assert.Equal(t, `"doc['a'].value < 5 && x > 1"`, string(result))
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(Null{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")

	_, err = MarshalCanonical(Object{"filter": nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filter")
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	composed := "caf\u00E9"
	decomposed := "cafe\u0301"

	a, err := MarshalCanonical(Object{composed: String(decomposed)})
	require.NoError(t, err)
	b, err := MarshalCanonical(Object{decomposed: String(composed)})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"U+2028", "a\u2028b", "\"a\u2028b\""},
		{"U+2029", "a\u2029b", "\"a\u2029b\""},
		{"literal escape text", `x \u2028`, `"x \\u2028"`},
		{"mixed", "lit \\u2029 real \u2029", "\"lit \\\\u2029 real \u2029\""},
		{"control chars still escaped", "tab\there", `"tab\there"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(String(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	build := func() Object {
		return Object{
			"aggregations": Object{
				"g0": Object{"terms": Object{"field": String("genre"), "size": Int(5)}},
				"m0": Object{"avg": Object{"field": String("pages")}},
			},
			"size": Int(0),
		}
	}

	first, err := MarshalCanonical(build())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(build())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
}
