package record

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/keyline/internal/curve"
)

// Helper to build a registry with one registered sampled curve.
func setupSampled(t *testing.T, keys ...curve.Key) (*curve.Registry, *curve.SampledCurve) {
	t.Helper()
	reg := curve.NewRegistry()
	c := curve.NewSampledCurve(keys...)
	require.NotZero(t, reg.Register(c))
	return reg, c
}

func keyValue(t *testing.T, c *curve.SampledCurve, i int) float64 {
	t.Helper()
	k, ok := c.Key(i)
	require.True(t, ok)
	return k.Value
}

// =============================================================================
// Capture Semantics
// =============================================================================

func TestRoundTrip(t *testing.T) {
	reg, c := setupSampled(t, curve.Key{Time: 1, Value: 0})
	rec := New(reg, Hooks{})

	rec.SetOriginalSampled(c)
	c.UpdateKey(0, curve.Key{Time: 1, Value: 2})
	c.SetKey(curve.Key{Time: 2, Value: 4})
	rec.Seal()
	after := c.Snapshot()

	rec.Revert()
	assert.Equal(t, []curve.Key{{Time: 1, Value: 0}}, c.Keys())

	rec.Reapply()
	assert.Equal(t, after, c.Snapshot())
}

func TestIdempotentOriginalCapture(t *testing.T) {
	reg, c := setupSampled(t, curve.Key{Time: 0, Value: 1})
	rec := New(reg, Hooks{})

	rec.SetOriginalSampled(c)
	c.UpdateKey(0, curve.Key{Time: 0, Value: 5})
	rec.SetOriginalSampled(c)
	c.UpdateKey(0, curve.Key{Time: 0, Value: 9})

	rec.Revert()
	assert.Equal(t, 1.0, keyValue(t, c, 0), "revert restores the first original")
	assert.Equal(t, 1, rec.Count())
}

func TestLastWriteWinsEditedCapture(t *testing.T) {
	reg, c := setupSampled(t, curve.Key{Time: 0, Value: 0})
	rec := New(reg, Hooks{})
	rec.SetOriginalSampled(c)

	for _, v := range []float64{1, 2, 3} {
		c.UpdateKey(0, curve.Key{Time: 0, Value: v})
		rec.RecordSampledEdit(c)
	}
	c.UpdateKey(0, curve.Key{Time: 0, Value: 42})

	rec.Reapply()
	assert.Equal(t, 3.0, keyValue(t, c, 0))
}

func TestSealCapturesCommitTimeState(t *testing.T) {
	reg, c := setupSampled(t, curve.Key{Time: 0, Value: 0})
	rec := New(reg, Hooks{})
	rec.SetOriginalSampled(c)
	c.UpdateKey(0, curve.Key{Time: 0, Value: 1})
	rec.RecordSampledEdit(c)
	c.UpdateKey(0, curve.Key{Time: 0, Value: 7})

	rec.Seal()
	assert.True(t, rec.Sealed())
	rec.Revert()
	rec.Reapply()
	assert.Equal(t, 7.0, keyValue(t, c, 0))
}

func TestUnregisteredEntitiesIgnored(t *testing.T) {
	rec := New(curve.NewRegistry(), Hooks{})
	rec.SetOriginalSampled(curve.NewSampledCurve())
	rec.SetOriginalSampled(nil)
	rec.RecordEdit(nil)
	assert.True(t, rec.IsEmpty())
}

// =============================================================================
// Heterogeneous Kinds
// =============================================================================

func TestAllKindsRestoreIndependently(t *testing.T) {
	clip := curve.NewClip("walk", 30, 60)
	bone := clip.AddBone("hips")
	prop := clip.AddProperty("material.alpha")
	events := clip.Events()

	rec := New(clip, Hooks{})
	rec.SetOriginal(bone.Main)
	rec.SetOriginal(bone.Base)
	rec.SetOriginal(bone.Linear)
	rec.SetOriginal(bone.Node)
	rec.SetOriginal(prop.Main)
	rec.SetOriginal(events)

	bone.Main.Ensure(curve.PosX).SetKey(curve.Key{Time: 0, Value: 1})
	bone.Base.Ensure(curve.PosX).SetKey(curve.Key{Time: 0, Value: -1})
	bone.Linear.SetFrame(curve.FrameKey{Frame: 3, Values: []float64{3}})
	bone.Node.Position = curve.Vec3{X: 2}
	prop.Main.Ensure().SetKey(curve.Key{Time: 0.5, Value: 0.25})
	events.Add(curve.Event{Name: "step", Time: 1})

	rec.Seal()
	assert.Equal(t, 6, rec.Count())

	rec.Revert()
	assert.Nil(t, bone.Main.Slot(curve.PosX))
	assert.Nil(t, bone.Base.Slot(curve.PosX))
	assert.Equal(t, 0, bone.Linear.Len())
	assert.Equal(t, curve.Vec3{}, bone.Node.Position)
	assert.Nil(t, prop.Main.Curve())
	assert.Equal(t, 0, events.Len())

	rec.Reapply()
	assert.Equal(t, 1.0, keyValue(t, bone.Main.Slot(curve.PosX), 0))
	assert.Equal(t, -1.0, keyValue(t, bone.Base.Slot(curve.PosX), 0), "base is restored separately from main")
	assert.True(t, bone.Linear.Has(3))
	assert.Equal(t, 2.0, bone.Node.Position.X)
	assert.Equal(t, 1, prop.Main.Curve().Len())
	assert.Equal(t, 1, events.Len())
}

func TestMissingEntitySkipped(t *testing.T) {
	reg := curve.NewRegistry()
	a := curve.NewSampledCurve(curve.Key{Time: 0, Value: 0})
	b := curve.NewSampledCurve(curve.Key{Time: 0, Value: 0})
	reg.Register(a)
	reg.Register(b)

	rec := New(reg, Hooks{})
	rec.SetOriginalSampled(a)
	rec.SetOriginalSampled(b)
	a.UpdateKey(0, curve.Key{Time: 0, Value: 1})
	b.UpdateKey(0, curve.Key{Time: 0, Value: 1})
	rec.Seal()

	reg.Remove(a.Handle())
	rec.Revert()

	assert.Equal(t, 1.0, keyValue(t, a, 0), "torn-down entity is not touched")
	assert.Equal(t, 0.0, keyValue(t, b, 0), "remaining entities still restore")
}

// =============================================================================
// Hooks
// =============================================================================

func TestHooksFireAfterRestore(t *testing.T) {
	reg, c := setupSampled(t, curve.Key{Time: 0})
	playhead := 0.5
	var calls []string
	var seeks []float64

	rec := New(reg, Hooks{
		Refresh:     func() { calls = append(calls, "refresh") },
		ReconcileIK: func() { calls = append(calls, "ik") },
		Dirty:       func() { calls = append(calls, "dirty") },
		Playhead:    func() float64 { return playhead },
		Seek:        func(t float64) { seeks = append(seeks, t) },
	})
	rec.SetOriginalSampled(c)
	playhead = 1.5
	rec.Seal()

	rec.Revert()
	rec.Reapply()
	assert.Equal(t, []string{"refresh", "ik", "dirty", "refresh", "ik", "dirty"}, calls)
	assert.Equal(t, []float64{0.5, 1.5}, seeks)
}

func TestPanickingHookDoesNotStopReplay(t *testing.T) {
	reg, c := setupSampled(t, curve.Key{Time: 0, Value: 0})
	dirty := 0
	rec := New(reg, Hooks{
		Refresh: func() { panic("widget gone") },
		Dirty:   func() { dirty++ },
	})
	rec.SetOriginalSampled(c)
	c.UpdateKey(0, curve.Key{Time: 0, Value: 3})
	rec.Seal()

	assert.NotPanics(t, rec.Revert)
	assert.Equal(t, 0.0, keyValue(t, c, 0))
	assert.Equal(t, 1, dirty)
}

// =============================================================================
// Recorder
// =============================================================================

func TestRecorderLifecycle(t *testing.T) {
	reg, c := setupSampled(t, curve.Key{Time: 0})
	rc := NewRecorder(reg, Hooks{})
	assert.False(t, rc.Active())

	rec := rc.Current()
	assert.Same(t, rec, rc.Begin(), "one record per gesture")
	assert.True(t, rc.Active())

	rec.SetOriginalSampled(c)
	action, ok := rc.Commit(rec)
	require.True(t, ok)
	assert.Equal(t, "edit", action.Name())
	assert.Same(t, rec, action.Record())
	assert.True(t, rec.Sealed())
	assert.False(t, rc.Active())
	assert.Nil(t, rc.Open())
}

func TestRecorderEmptyCommitDropped(t *testing.T) {
	rc := NewRecorder(curve.NewRegistry(), Hooks{})
	rec := rc.Begin()
	action, ok := rc.Commit(rec)
	assert.False(t, ok)
	assert.Nil(t, action)
	assert.False(t, rc.Active())

	_, ok = rc.Commit(nil)
	assert.False(t, ok)
}

func TestRecorderSealedCommitRefused(t *testing.T) {
	reg, c := setupSampled(t, curve.Key{Time: 0, Value: 0})
	rc := NewRecorder(reg, Hooks{})
	rec := rc.Begin()
	rec.SetOriginalSampled(c)
	c.UpdateKey(0, curve.Key{Time: 0, Value: 3})
	action, ok := rc.Commit(rec)
	require.True(t, ok)

	c.UpdateKey(0, curve.Key{Time: 0, Value: 5})
	again, ok := rc.Commit(rec)
	assert.False(t, ok)
	assert.Nil(t, again)

	action.Revert()
	assert.Equal(t, 0.0, keyValue(t, c, 0))
	action.Reapply()
	assert.Equal(t, 3.0, keyValue(t, c, 0), "edited snapshot is the one sealed at the first commit")
}

func TestRecorderDiscardKeepsMutations(t *testing.T) {
	reg, c := setupSampled(t, curve.Key{Time: 0, Value: 0})
	rc := NewRecorder(reg, Hooks{})
	rec := rc.Begin()
	rec.SetOriginalSampled(c)
	c.UpdateKey(0, curve.Key{Time: 0, Value: 8})

	rc.Discard(rec)
	assert.False(t, rc.Active())
	assert.Equal(t, 8.0, keyValue(t, c, 0), "discard stops capturing, it does not revert")
}

func TestActionLabel(t *testing.T) {
	rec := New(curve.NewRegistry(), Hooks{})
	rec.Label = "move frames"
	a := NewAction(rec)
	assert.Equal(t, "move frames", a.Name())
	assert.NotPanics(t, a.FinalizeApplied)
	assert.NotPanics(t, a.FinalizeUndone)
}

// =============================================================================
// Debouncer
// =============================================================================

func TestDebouncer(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d := NewDebouncer(100 * time.Millisecond)
	assert.False(t, d.Due(base))

	d.Touch(base)
	assert.True(t, d.Pending())
	assert.False(t, d.Due(base.Add(50*time.Millisecond)))

	d.Touch(base.Add(80 * time.Millisecond))
	assert.False(t, d.Due(base.Add(150*time.Millisecond)), "touch pushes the deadline out")
	assert.True(t, d.Due(base.Add(180*time.Millisecond)))
	assert.Equal(t, base.Add(180*time.Millisecond), d.Deadline())

	d.Reset()
	assert.False(t, d.Pending())
	neg := NewDebouncer(-time.Second)
	neg.Touch(base)
	assert.True(t, neg.Due(base), "a negative delay is clamped to zero")
}
