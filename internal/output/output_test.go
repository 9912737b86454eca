package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/history"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/model"
	"github.com/manav03panchal/keyline/internal/storage"
)

func plain() (*Formatter, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Formatter{Writer: &buf, Format: FormatCLI, ColorMode: ColorNever}, &buf
}

func sampleDoc() *model.ClipDoc {
	c := curve.NewClip("walk", 30, 60)
	hips := c.AddBone("hips")
	hips.Main.Ensure(curve.PosX).SetKey(curve.Key{Time: 0.1, Value: 1.5})
	hips.Linear.SetFrame(curve.FrameKey{Frame: 3, Values: []float64{1, 0.25}})
	c.Events().Add(curve.Event{Name: "step", Time: 0.1})
	return model.FromClip(c)
}

// =============================================================================
// Formatter Tests
// =============================================================================

func TestNewFormatter(t *testing.T) {
	f := NewFormatter()
	assert.Equal(t, FormatCLI, f.Format)
	assert.Equal(t, ColorAuto, f.ColorMode)
}

func TestFormatterIsColorEnabled(t *testing.T) {
	t.Run("color_always", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways}
		assert.True(t, f.IsColorEnabled())
	})

	t.Run("color_never", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorNever}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("plain_format_never_colors", func(t *testing.T) {
		f := &Formatter{ColorMode: ColorAlways, Format: FormatPlain}
		assert.False(t, f.IsColorEnabled())
	})

	t.Run("color_auto_non_terminal", func(t *testing.T) {
		f := &Formatter{Writer: &bytes.Buffer{}, ColorMode: ColorAuto}
		assert.False(t, f.IsColorEnabled())
	})
}

func TestParseFormatAndColor(t *testing.T) {
	f, ok := ParseFormat("JSON")
	assert.True(t, ok)
	assert.Equal(t, FormatJSON, f)
	_, ok = ParseFormat("xml")
	assert.False(t, ok)

	m, ok := ParseColorMode("never")
	assert.True(t, ok)
	assert.Equal(t, ColorNever, m)
	_, ok = ParseColorMode("sometimes")
	assert.False(t, ok)
}

func TestFormatHelpers(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"seconds", FormatSeconds(1.25), "1.25s"},
		{"value_trims_zeros", FormatValue(2.5), "2.5"},
		{"value_integer", FormatValue(3), "3"},
		{"value_rounds", FormatValue(0.123456), "0.1235"},
		{"values", FormatValues([]float64{1, 0.5}), "[1 0.5]"},
		{"frames_empty", FormatFrames(nil), "-"},
		{"frames_runs", FormatFrames([]int{0, 1, 2, 3, 7, 9, 10}), "0-3,7,9-10"},
		{"frames_single", FormatFrames([]int{5}), "5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "█████░░░░░", ProgressBar(50, 10))
	assert.Equal(t, "██████████", ProgressBar(150, 10))
	assert.Equal(t, "░░░░░░░░░░", ProgressBar(-5, 10))
}

// =============================================================================
// CLI Tests
// =============================================================================

func TestCLIPrintClip(t *testing.T) {
	f, buf := plain()
	NewCLIFormatter(f).PrintClip(sampleDoc(), true)

	out := buf.String()
	assert.Contains(t, out, "walk (active)")
	assert.Contains(t, out, "61 frames (2s)")
	assert.Contains(t, out, "Keys:   3")
}

func TestCLIPrintClips(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		f, buf := plain()
		NewCLIFormatter(f).PrintClips(nil, "")
		assert.Contains(t, buf.String(), "keyline new")
	})

	t.Run("marks_active", func(t *testing.T) {
		f, buf := plain()
		idle := model.NewClipDoc("idle", 24, 10)
		NewCLIFormatter(f).PrintClips([]*model.ClipDoc{idle, sampleDoc()}, "walk")

		lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
		require.Len(t, lines, 4)
		assert.Contains(t, string(lines[0]), "CLIP")
		assert.True(t, bytes.HasPrefix(lines[3], []byte("*")))
		assert.Contains(t, string(lines[3]), "walk")
	})
}

func TestCLIPrintAggregate(t *testing.T) {
	f, buf := plain()
	agg := &keyframe.Aggregate{
		Frame: 3,
		Scope: keyframe.Global(),
		Sampled: []keyframe.SampledEntry{
			{Target: "hips", Channel: curve.PosX, Key: curve.Key{Time: 0.1, Value: 1.5}},
			{Target: "material.alpha", Property: true, Channel: keyframe.NoChannel, Key: curve.Key{Time: 0.1, Value: 0.5}},
		},
		Linear: []keyframe.LinearEntry{{Target: "hips", Key: curve.FrameKey{Frame: 3, Values: []float64{1}}}},
		Events: []curve.Event{{ID: "e1", Name: "step", Time: 0.1}},
	}
	NewCLIFormatter(f).PrintAggregate(agg)

	out := buf.String()
	assert.Contains(t, out, "f3 global")
	assert.Contains(t, out, "hips pos.x")
	assert.Contains(t, out, "material.alpha ")
	assert.NotContains(t, out, "channel(")
	assert.Contains(t, out, "hips linear")
	assert.Contains(t, out, "event step")
}

func TestCLIPrintHistory(t *testing.T) {
	f, buf := plain()
	NewCLIFormatter(f).PrintHistory([]history.Info{
		{Index: 0, Name: "key hips"},
		{Index: 1, Name: "move frames"},
		{Index: 2, Name: "drag", Undone: true},
	}, 1)

	out := buf.String()
	assert.Contains(t, out, ">   1  move frames")
	assert.Contains(t, out, "drag (undone)")
}

func TestCLIPrintDoctor(t *testing.T) {
	f, buf := plain()
	status := &storage.RecoveryStatus{Errors: []string{"corrupted value at key clip:x"}, ErrorCount: 1, Recoverable: true}
	NewCLIFormatter(f).PrintDoctor(status, "", "Warning: Low disk space (1 MB free)")

	out := buf.String()
	assert.Contains(t, out, "(in memory)")
	assert.Contains(t, out, "1 problem(s)")
	assert.Contains(t, out, "doctor --repair")
	assert.Contains(t, out, "Low disk space")
}

func TestPrintTable(t *testing.T) {
	f, buf := plain()
	NewCLIFormatter(f).PrintTable([]string{"A", "BB"}, []TableRow{{Columns: []string{"xyz", "1"}}})
	assert.Equal(t, "A    BB\n───  ──\nxyz  1\n", buf.String())
}

// =============================================================================
// JSON Tests
// =============================================================================

func TestJSONPrintClips(t *testing.T) {
	f, buf := plain()
	require.NoError(t, NewJSONFormatter(f).PrintClips([]*model.ClipDoc{sampleDoc()}, "walk"))

	var resp ClipsResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	require.Len(t, resp.Clips, 1)
	assert.True(t, resp.Clips[0].Active)
	assert.Equal(t, 3, resp.Clips[0].Keys)
	assert.InDelta(t, 2.0, resp.Clips[0].Duration, 1e-9)
}

func TestJSONPrintFramesNeverNull(t *testing.T) {
	f, buf := plain()
	require.NoError(t, NewJSONFormatter(f).PrintFrames(keyframe.BoneScope("hips"), nil))
	assert.Contains(t, buf.String(), `"frames": []`)
	assert.Contains(t, buf.String(), `"bone:hips"`)
}

func TestNewAggregateOutput(t *testing.T) {
	agg := &keyframe.Aggregate{
		Frame:   0,
		Scope:   keyframe.PropertyScope("material.alpha"),
		Sampled: []keyframe.SampledEntry{{Target: "material.alpha", Property: true, Channel: keyframe.NoChannel, Key: curve.Key{Value: 1}}},
		Events:  []curve.Event{{ID: "e1", Name: "step"}},
	}
	out := NewAggregateOutput(agg)
	require.Len(t, out.Entries, 2)
	assert.Equal(t, "sampled", out.Entries[0].Kind)
	assert.Empty(t, out.Entries[0].Channel)
	assert.Equal(t, "event", out.Entries[1].Kind)
	assert.Equal(t, "e1", out.Entries[1].ID)
}

func TestJSONPrintBaked(t *testing.T) {
	baked := &editor.Baked{Clip: "walk", Frames: 2, Tracks: []*editor.BakedTrack{{Target: "hips", Samples: []float64{0, 1}}}}

	t.Run("inline_samples", func(t *testing.T) {
		f, buf := plain()
		require.NoError(t, NewJSONFormatter(f).PrintBaked(baked, ""))
		assert.Contains(t, buf.String(), `"samples"`)
	})

	t.Run("written_to_file", func(t *testing.T) {
		f, buf := plain()
		require.NoError(t, NewJSONFormatter(f).PrintBaked(baked, "/tmp/walk.json"))
		assert.NotContains(t, buf.String(), `"samples"`)
		assert.Contains(t, buf.String(), `"/tmp/walk.json"`)
	})
}

func TestJSONPrintError(t *testing.T) {
	f, buf := plain()
	require.NoError(t, NewJSONFormatter(f).PrintError("error", "clip not found", "Use 'keyline list'"))

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "clip not found", resp.Error)
}
