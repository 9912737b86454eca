package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/keyframe"
)

// =============================================================================
// ParseLine Tests
// =============================================================================

func TestParseLineSkips(t *testing.T) {
	for _, line := range []string{"", "   ", "# comment", "  # indented", `""`} {
		cmd, err := ParseLine(line, 1)
		assert.NoError(t, err)
		assert.Nil(t, cmd)
	}
}

func TestParseLineKey(t *testing.T) {
	t.Run("bone", func(t *testing.T) {
		cmd, err := ParseLine("key bone hips pos.y 0.5 1.25", 3)
		require.NoError(t, err)
		assert.Equal(t, OpKeyBone, cmd.Op)
		assert.Equal(t, "hips", cmd.Target)
		assert.Equal(t, curve.PosY, cmd.Channel)
		assert.Equal(t, 0.5, cmd.Time)
		assert.Equal(t, 1.25, cmd.Value)
		assert.Equal(t, 3, cmd.Line)
	})

	t.Run("property", func(t *testing.T) {
		cmd, err := ParseLine("key prop material.alpha 1 0.5", 1)
		require.NoError(t, err)
		assert.Equal(t, OpKeyProperty, cmd.Op)
		assert.Equal(t, "material.alpha", cmd.Target)
		assert.Equal(t, keyframe.NoChannel, cmd.Channel)
	})

	t.Run("linear", func(t *testing.T) {
		cmd, err := ParseLine("key linear hips 4 1,0,0", 1)
		require.NoError(t, err)
		assert.Equal(t, OpKeyLinear, cmd.Op)
		assert.Equal(t, 4, cmd.Frame)
		assert.Equal(t, []float64{1, 0, 0}, cmd.Values)
	})

	t.Run("bad_channel_carries_line", func(t *testing.T) {
		_, err := ParseLine("key bone hips pos.q 0 1", 9)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrInvalidChannel)
		se, ok := AsScriptError(err)
		require.True(t, ok)
		assert.Equal(t, 9, se.Line)
	})

	t.Run("bad_bone_name", func(t *testing.T) {
		_, err := ParseLine("key bone 9hips pos.x 0 1", 1)
		se, ok := AsScriptError(err)
		require.True(t, ok)
		assert.Equal(t, "bone", se.Field)
	})

	t.Run("wrong_kind", func(t *testing.T) {
		_, err := ParseLine("key camera cam 0 1", 1)
		se, ok := AsScriptError(err)
		require.True(t, ok)
		assert.Contains(t, se.Suggestion, "key bone")
	})
}

func TestParseLineFrameOps(t *testing.T) {
	cmd, err := ParseLine("move 2,5-6 -1", 1)
	require.NoError(t, err)
	assert.Equal(t, OpMove, cmd.Op)
	assert.Equal(t, []int{2, 5, 6}, cmd.Frames)
	assert.Equal(t, -1, cmd.Delta)

	cmd, err = ParseLine("delete 3", 1)
	require.NoError(t, err)
	assert.Equal(t, OpDelete, cmd.Op)

	cmd, err = ParseLine("COPY 1-2", 1)
	require.NoError(t, err)
	assert.Equal(t, OpCopy, cmd.Op)
	assert.Equal(t, "copy", cmd.Verb)

	cmd, err = ParseLine("paste +10", 1)
	require.NoError(t, err)
	assert.Equal(t, OpPaste, cmd.Op)
	assert.Equal(t, 10, cmd.Delta)

	_, err = ParseLine("move 2", 1)
	assert.Error(t, err)
}

func TestParseLineMode(t *testing.T) {
	tests := []struct {
		line string
		want keyframe.Scope
	}{
		{"mode global", keyframe.Global()},
		{"mode events", keyframe.EventScope()},
		{"mode bone hips", keyframe.BoneScope("hips")},
		{"scope property material.alpha", keyframe.PropertyScope("material.alpha")},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			cmd, err := ParseLine(tt.line, 1)
			require.NoError(t, err)
			assert.Equal(t, OpMode, cmd.Op)
			assert.Equal(t, tt.want, cmd.Scope)
		})
	}

	for _, bad := range []string{"mode", "mode bone", "mode global hips", "mode camera"} {
		_, err := ParseLine(bad, 1)
		assert.Error(t, err, bad)
	}
}

func TestParseLineMisc(t *testing.T) {
	cmd, err := ParseLine(`event "foot step" 0.25`, 1)
	require.NoError(t, err)
	assert.Equal(t, OpEvent, cmd.Op)
	assert.Equal(t, "foot step", cmd.Target)
	assert.Equal(t, 0.25, cmd.Time)

	cmd, err = ParseLine("drag hips rot.w 2 0.7", 1)
	require.NoError(t, err)
	assert.Equal(t, OpDrag, cmd.Op)
	assert.Equal(t, curve.RotW, cmd.Channel)
	assert.Equal(t, 2, cmd.Index)

	cmd, err = ParseLine("tick\t120ms", 1)
	require.NoError(t, err)
	assert.Equal(t, 120*time.Millisecond, cmd.Wait)

	cmd, err = ParseLine("play 2s", 1)
	require.NoError(t, err)
	assert.Equal(t, OpPlay, cmd.Op)
	assert.Equal(t, 2*time.Second, cmd.Wait)

	cmd, err = ParseLine("pose hips 1 2 3", 1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, cmd.Values)

	cmd, err = ParseLine("undo 3", 1)
	require.NoError(t, err)
	assert.Equal(t, 3, cmd.Count)

	cmd, err = ParseLine("redo", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, cmd.Count)

	cmd, err = ParseLine("bake out.json", 1)
	require.NoError(t, err)
	assert.Equal(t, "out.json", cmd.Path)

	cmd, err = ParseLine("remove-bone arm_l", 1)
	require.NoError(t, err)
	assert.Equal(t, OpRemoveBone, cmd.Op)

	_, err = ParseLine("history now", 1)
	assert.Error(t, err)
}

func TestParseLineUnknown(t *testing.T) {
	_, err := ParseLine("jump 3", 2)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownCommand)
	assert.Contains(t, err.Error(), "line 2")
}

// =============================================================================
// ParseScript Tests
// =============================================================================

func TestParseScript(t *testing.T) {
	src := "# walk cycle\r\nkey bone hips pos.x 0 1\r\n\r\nmove 0 +2\nundo\n"
	cmds, err := ParseScript(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, cmds, 3)
	assert.Equal(t, OpKeyBone, cmds[0].Op)
	assert.Equal(t, 2, cmds[0].Line)
	assert.Equal(t, OpMove, cmds[1].Op)
	assert.Equal(t, 4, cmds[1].Line)
	assert.Equal(t, OpUndo, cmds[2].Op)
}

func TestParseScriptStopsAtFirstError(t *testing.T) {
	src := "undo\nmove x 1\njump\n"
	cmds, err := ParseScript(strings.NewReader(src))
	assert.Nil(t, cmds)
	se, ok := AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, 2, se.Line)
	assert.ErrorIs(t, err, errors.ErrInvalidFrame)
}

func TestVerbs(t *testing.T) {
	usages := Verbs()
	assert.NotEmpty(t, usages)
	assert.Equal(t, Usage("add-bone"), usages[0])
	for _, u := range usages {
		assert.NotContains(t, u, "scope global")
	}
	assert.Empty(t, Usage("jump"))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"event", "a b", "1"}, tokenize(`event "a b" 1`))
	assert.Equal(t, []string{"event", "it's", "1"}, tokenize(`event "it's" 1`))
	assert.Equal(t, []string{"a", "b"}, tokenize("a \t b"))
}
