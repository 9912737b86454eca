package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/keyframe"
)

// =============================================================================
// Frame Tests
// =============================================================================

func TestParseFrames(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []int
	}{
		{"single", "12", []int{12}},
		{"list", "2,5,9", []int{2, 5, 9}},
		{"range", "3-6", []int{3, 4, 5, 6}},
		{"mixed", "0-2,7,9-10", []int{0, 1, 2, 7, 9, 10}},
		{"unsorted_with_dupes", "9,2,2,1-3", []int{1, 2, 3, 9}},
		{"spaces", " 1 , 4 ", []int{1, 4}},
		{"degenerate_range", "5-5", []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFrames(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFramesInvalid(t *testing.T) {
	inputs := []string{"", "a", "-2", "+3", "1,,2", "6-3", "1-", "-", "1.5", "0-100000"}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFrames(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrInvalidFrame)
		})
	}
}

func TestParseFrame(t *testing.T) {
	f, err := ParseFrame("7")
	require.NoError(t, err)
	assert.Equal(t, 7, f)

	_, err = ParseFrame("-1")
	assert.ErrorIs(t, err, errors.ErrInvalidFrame)
}

func TestParseDelta(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"+3", 3},
		{"-2", -2},
		{"4", 4},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDelta(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseDelta("two")
	assert.ErrorIs(t, err, errors.ErrInvalidFrame)
}

// =============================================================================
// Number Tests
// =============================================================================

func TestParseTime(t *testing.T) {
	v, err := ParseTime("1.25")
	require.NoError(t, err)
	assert.Equal(t, 1.25, v)

	for _, bad := range []string{"-1", "abc", "NaN", "Inf", ""} {
		_, err := ParseTime(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue("-0.5")
	require.NoError(t, err)
	assert.Equal(t, -0.5, v)

	_, err = ParseValue("+Inf")
	assert.Error(t, err)
}

func TestParseValues(t *testing.T) {
	v, err := ParseValues("1,0.5, -2")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0.5, -2}, v)

	_, err = ParseValues("1,,2")
	assert.Error(t, err)
}

func TestParseChannel(t *testing.T) {
	ch, err := ParseChannel("scale.y")
	require.NoError(t, err)
	assert.Equal(t, curve.ScaleY, ch)

	_, err = ParseChannel("pos.w")
	assert.ErrorIs(t, err, errors.ErrInvalidChannel)
}

func TestParseWait(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"150ms", 150 * time.Millisecond},
		{"0.5s", 500 * time.Millisecond},
		{"200", 200 * time.Millisecond},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWait(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"-5", "-1s", "soon"} {
		_, err := ParseWait(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount("")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = ParseCount("3")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = ParseCount("0")
	assert.Error(t, err)
}

// =============================================================================
// Scope Tests
// =============================================================================

func TestParseScope(t *testing.T) {
	tests := []struct {
		input string
		want  keyframe.Scope
	}{
		{"global", keyframe.Global()},
		{"EVENTS", keyframe.EventScope()},
		{"bone:hips", keyframe.BoneScope("hips")},
		{"property:material.alpha", keyframe.PropertyScope("material.alpha")},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseScope(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "camera", "bone", "bone:", "global:hips", "property:.x"} {
		_, err := ParseScope(bad)
		assert.Error(t, err, bad)
	}
}
