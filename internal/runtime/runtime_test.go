package runtime

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/output"
)

func newTestContext(t *testing.T, opts Options) *Context {
	t.Helper()
	opts.InMemory = true
	if opts.ConfigPath == "" {
		opts.ConfigPath = filepath.Join(t.TempDir(), "absent.yaml")
	}
	ctx, err := New(opts)
	require.NoError(t, err)
	t.Cleanup(func() { ctx.Close() })
	return ctx
}

// =============================================================================
// Context Tests
// =============================================================================

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.NotEmpty(t, opts.DBPath)
	assert.False(t, opts.InMemory)
	assert.Equal(t, output.FormatCLI, opts.Format)
	assert.Equal(t, output.ColorAuto, opts.ColorMode)
}

func TestNew(t *testing.T) {
	ctx := newTestContext(t, Options{Format: output.FormatJSON, ColorMode: output.ColorNever, Debug: true})

	assert.NotNil(t, ctx.DB)
	assert.NotNil(t, ctx.Clips)
	assert.NotNil(t, ctx.Active)
	assert.Equal(t, 100, ctx.Config.Editor.MaxHistory)
	assert.Equal(t, output.FormatJSON, ctx.Formatter.Format)
	assert.Equal(t, output.ColorNever, ctx.Formatter.ColorMode)
	assert.True(t, ctx.Debug)
	assert.True(t, ctx.IsJSON())
	assert.False(t, ctx.IsCLI())
}

func TestNewWithEnvVariable(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		t.Setenv("KEYLINE_DATABASE", MemoryDB)
		ctx, err := New(Options{ConfigPath: filepath.Join(t.TempDir(), "none.yaml")})
		require.NoError(t, err)
		defer ctx.Close()
		assert.Equal(t, "", ctx.DB.Path())
	})

	t.Run("path", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "keyline-test.db")
		t.Setenv("KEYLINE_DATABASE", dbPath)
		ctx, err := New(Options{ConfigPath: filepath.Join(t.TempDir(), "none.yaml")})
		require.NoError(t, err)
		defer ctx.Close()
		assert.Equal(t, dbPath, ctx.DB.Path())
	})
}

func TestNewBadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("editor: ["), 0600))

	_, err := New(Options{InMemory: true, ConfigPath: path})
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))
}

func TestContextClose(t *testing.T) {
	nilCtx := &Context{}
	assert.NoError(t, nilCtx.Close())
}

func TestResolveClip(t *testing.T) {
	ctx := newTestContext(t, Options{})

	_, err := ctx.ResolveClip("")
	assert.ErrorIs(t, err, errors.ErrNoActiveClip)

	require.NoError(t, ctx.Clips.Create(ctx.NewClip("walk", 0, 0)))
	require.NoError(t, ctx.Active.SetActive("walk"))

	doc, err := ctx.ResolveClip("")
	require.NoError(t, err)
	assert.Equal(t, "walk", doc.Name)
	assert.Equal(t, 30.0, doc.FrameRate)
	assert.Equal(t, 120, doc.Length)

	_, err = ctx.ResolveClip("run")
	assert.ErrorIs(t, err, errors.ErrClipNotFound)
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := newTestContext(t, Options{})
	doc := ctx.NewClip("walk", 24, 48)
	require.NoError(t, ctx.Clips.Create(doc))

	s := ctx.OpenSession(doc, editor.Hooks{})
	_, err := s.AddBone("hips")
	require.NoError(t, err)
	require.NoError(t, s.KeyBone("hips", curve.PosX, curve.Key{Time: 1, Value: 2}))
	require.True(t, s.IsDirty())

	require.NoError(t, ctx.SaveClip(s.Clip(), doc))

	loaded, err := ctx.Clips.Get("walk")
	require.NoError(t, err)
	assert.True(t, loaded.CreatedAt.Equal(doc.CreatedAt))
	assert.Equal(t, 2.0, loaded.ToClip().Bone("hips").Main.Slot(curve.PosX).Evaluate(1))
}

func TestContextDebugf(t *testing.T) {
	t.Run("debug_enabled", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{Debug: true})
		ctx.Formatter.Writer = &buf
		ctx.Debugf("test message %s", "arg1")

		assert.Contains(t, buf.String(), "[DEBUG] test message arg1")
	})

	t.Run("debug_disabled", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{})
		ctx.Formatter.Writer = &buf
		ctx.Debugf("test message")

		assert.Empty(t, buf.String())
	})

	t.Run("json_stays_clean", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{Debug: true, Format: output.FormatJSON})
		ctx.Formatter.Writer = &buf
		ctx.Debugf("test message")

		assert.Empty(t, buf.String())
	})
}

// =============================================================================
// Error Tests
// =============================================================================

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"user", errors.ErrInvalidFrame, 1},
		{"system", syscall.ENOSPC, 2},
		{"recoverable", errors.ErrLockHeld, 3},
		{"unknown", errors.New("boom"), 1},
		{"pinned_recoverable", errors.WithCategory(errors.New("interrupted"), errors.CategoryRecoverable), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestReportError(t *testing.T) {
	t.Run("cli", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{ColorMode: output.ColorNever})
		ctx.Formatter.Writer = &buf

		ctx.ReportError(errors.Wrap(errors.ErrClipNotFound, `clip "run"`))
		assert.Contains(t, buf.String(), "✗ ")
		assert.Contains(t, buf.String(), errors.GetSuggestion(errors.ErrClipNotFound))
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{Format: output.FormatJSON})
		ctx.Formatter.Writer = &buf

		ctx.ReportError(errors.ErrEmptyClipboard)
		var resp output.ErrorResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "error", resp.Status)
		assert.Equal(t, errors.ErrEmptyClipboard.Error(), resp.Error)
	})

	t.Run("debug", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{Debug: true})
		ctx.Formatter.Writer = &buf

		ctx.ReportError(errors.ErrInvalidChannel)
		assert.Contains(t, buf.String(), "Category:")
		assert.Contains(t, buf.String(), "Stack trace:")
		assert.Contains(t, buf.String(), "ReportError")
	})

	t.Run("nil_is_silent", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{})
		ctx.Formatter.Writer = &buf
		ctx.ReportError(nil)
		assert.Empty(t, buf.String())
	})
}

func TestReportInline(t *testing.T) {
	t.Run("cli_is_short", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{ColorMode: output.ColorNever})
		ctx.Formatter.Writer = &buf

		ctx.ReportInline(errors.ErrInvalidFrame)
		assert.Contains(t, buf.String(), "Try: ")
		assert.NotContains(t, buf.String(), "Examples:")
	})

	t.Run("json_matches_report_error", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{Format: output.FormatJSON})
		ctx.Formatter.Writer = &buf

		ctx.ReportInline(errors.ErrEmptyClipboard)
		var resp output.ErrorResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, errors.ErrEmptyClipboard.Error(), resp.Error)
	})

	t.Run("nil_is_silent", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := newTestContext(t, Options{})
		ctx.Formatter.Writer = &buf
		ctx.ReportInline(nil)
		assert.Empty(t, buf.String())
	})
}
