package gcode

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestParseG_SkipsMalformedTokens(t *testing.T) {
	c := ParseG(1, "X10 garbage Y20 !! Z-5.5")
	x, ok := c.GetX()
	require.True(t, ok)
	assert.InDelta(t, 10.0, x, 1e-9)
	y, ok := c.GetY()
	require.True(t, ok)
	assert.InDelta(t, 20.0, y, 1e-9)
	z, ok := c.GetZ()
	require.True(t, ok)
	assert.InDelta(t, -5.5, z, 1e-9)
}

func TestParseM_Malformed(t *testing.T) {
	_, err := ParseM("not a command")
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseM_OK(t *testing.T) {
	c, err := ParseM("M104 S200")
	require.NoError(t, err)
	assert.Equal(t, MCommand, c.Kind)
	assert.Equal(t, 104, c.Code)
	assert.Equal(t, "S200", c.MParams)
}

func TestString_CanonicalOrder(t *testing.T) {
	c := NewG(1)
	c.SetF(200)
	c.SetY(20)
	c.SetX(10)
	assert.Equal(t, "G1 X10 Y20 F200", c.String(0))
}

func TestString_FourthAxis(t *testing.T) {
	c := NewG(1)
	c.SetX(1)
	c.Set('E', 5)
	c.SetF(100)
	assert.Equal(t, "G1 X1 E5 F100", c.String('E'))
}

func TestString_MCommand(t *testing.T) {
	c := NewM(115, "")
	assert.Equal(t, "M115", c.String(0))
}

func TestPresenceMatchesCache(t *testing.T) {
	c := ParseG(1, "X1 Y2")
	x, xok := c.GetX()
	assert.True(t, xok)
	assert.InDelta(t, 1.0, x, 1e-9)
	_, zok := c.GetZ()
	assert.False(t, zok)
}

// TestRoundTrip exercises property 6 of the spec: for any G-command,
// parse(C.to_string()).to_string() == C.to_string(), and the cached
// X/Y/Z/F/fourth match the map.
func TestRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := rapid.IntRange(0, 99).Draw(t, "code")
		c := NewG(code)

		letters := rapid.SliceOfDistinct(rapid.SampledFrom([]byte{'X', 'Y', 'Z', 'I', 'J', 'K', 'F', 'E'}), func(b byte) byte { return b }).Draw(t, "letters")
		for _, l := range letters {
			v := rapid.Float64Range(-1000, 1000).Draw(t, fmt.Sprintf("value-%c", l))
			c.Set(l, v)
		}

		s1 := c.String('E')
		parsed, err := Parse(s1)
		require.NoError(t, err)
		s2 := parsed.String('E')

		assert.Equal(t, s1, s2)

		for _, l := range letters {
			want, wantOk := c.Get(l)
			got, gotOk := parsed.Get(l)
			assert.Equal(t, wantOk, gotOk)
			if wantOk {
				assert.InDelta(t, want, got, 1e-9)
			}
		}
	})
}

func TestRoundTrip_MCommand(t *testing.T) {
	c := NewM(115, "")
	s := c.String(0)
	parsed, err := Parse(s)
	require.NoError(t, err)
	assert.Equal(t, s, parsed.String(0))
}
