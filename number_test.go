package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNumberRoundTrip checks spec.md S8's round-trip invariant: for every
// base in {2,8,10,16}, parse(print(n,b),b) == n.
func TestNumberRoundTrip(t *testing.T) {
	bases := []int{2, 8, 10, 16}
	values := []Cell{0, 1, -1, 42, -42, 1000000, -1000000}
	for _, base := range bases {
		for _, n := range values {
			s := formatCell(n, base)
			res := parseNumber([]byte(s), base)
			require.True(t, res.ok, "parse(%q, base %d) should succeed", s, base)
			assert.False(t, res.isFloat)
			assert.Equal(t, n, res.value, "round trip of %d in base %d via %q", int64(n), base, s)
		}
	}
}

func TestNumberPrefixes(t *testing.T) {
	cases := []struct {
		tok  string
		want Cell
	}{
		{"$FF", 255},
		{"#10", 10},
		{"%1010", 10},
		{"0x1F", 31},
		{"010", 8},
		{"'A'", 'A'},
		{`'\n'`, '\n'},
	}
	for _, c := range cases {
		t.Run(c.tok, func(t *testing.T) {
			res := parseNumber([]byte(c.tok), 10)
			require.True(t, res.ok)
			assert.Equal(t, c.want, res.value)
		})
	}
}

func TestNumberFloatFallback(t *testing.T) {
	res := parseNumber([]byte("3.14"), 10)
	require.True(t, res.ok)
	assert.True(t, res.isFloat)
	assert.InDelta(t, 3.14, res.fvalue, 0.0001)
}

func TestNumberNotAWord(t *testing.T) {
	res := parseNumber([]byte("HELLO"), 10)
	assert.False(t, res.ok)
}

func TestNumberEmptyIsNotANumber(t *testing.T) {
	res := parseNumber(nil, 10)
	assert.False(t, res.ok)
}
