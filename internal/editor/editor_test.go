package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/keyline/internal/curve"
	kerrors "github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/keyframe"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) time.Time {
	c.now = c.now.Add(d)
	return c.now
}

// setupSession builds a 30fps clip with bone "hips" keyed on pos.x at
// t=1.0 and opens a session on it.
func setupSession(t *testing.T, opts Options) (*Session, *curve.Bone, *fakeClock) {
	t.Helper()
	clip := curve.NewClip("walk", 30, 120)
	hips := clip.AddBone("hips")
	hips.Main.Ensure(curve.PosX).SetKey(curve.Key{Time: 1.0, Value: 0})

	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	opts.Clock = clock.Now
	return NewSession(clip, opts), hips, clock
}

func posX(t *testing.T, b *curve.Bone) float64 {
	t.Helper()
	k, ok := b.Main.Slot(curve.PosX).Key(0)
	require.True(t, ok)
	return k.Value
}

// =============================================================================
// Gestures
// =============================================================================

func TestDragScenario(t *testing.T) {
	s, hips, clock := setupSession(t, Options{Debounce: 100 * time.Millisecond})
	slot := hips.Main.Slot(curve.PosX)

	for i := 1; i <= 5; i++ {
		clock.Advance(16 * time.Millisecond)
		v := float64(i) * 2 / 5
		require.NoError(t, s.Mutate(hips.Main, func() {
			slot.UpdateKey(0, curve.Key{Time: 1.0, Value: v})
		}))
		committed, err := s.Tick(clock.now)
		require.NoError(t, err)
		assert.False(t, committed, "tick %d is inside the debounce window", i)
	}

	committed, err := s.Tick(clock.Advance(200 * time.Millisecond))
	require.NoError(t, err)
	assert.True(t, committed)
	assert.Equal(t, 1, s.HistoryLength())
	assert.Equal(t, 2.0, posX(t, hips))
	assert.True(t, s.IsDirty())

	require.NoError(t, s.Undo())
	assert.Equal(t, 0.0, posX(t, hips))

	require.NoError(t, s.Redo())
	assert.Equal(t, 2.0, posX(t, hips))
	assert.Equal(t, 1, s.HistoryLength())
}

func TestUndoFlushesPendingDrag(t *testing.T) {
	s, hips, _ := setupSession(t, Options{})
	slot := hips.Main.Slot(curve.PosX)

	require.NoError(t, s.Mutate(hips.Main, func() {
		slot.UpdateKey(0, curve.Key{Time: 1.0, Value: 7})
	}))
	assert.True(t, s.CanUndo())

	require.NoError(t, s.Undo())
	assert.Equal(t, 0.0, posX(t, hips))
	assert.Equal(t, 1, s.HistoryLength())
	assert.Equal(t, -1, s.HistoryPosition())
	assert.True(t, s.CanRedo())
}

func TestCommitEmptyRecord(t *testing.T) {
	s, _, _ := setupSession(t, Options{})

	rec := s.BeginEditRecord()
	committed, err := s.Commit(rec)
	require.NoError(t, err)
	assert.False(t, committed)
	assert.Zero(t, s.HistoryLength())
	assert.False(t, s.IsDirty())

	assert.ErrorIs(t, s.Undo(), kerrors.ErrNothingToUndo)
	assert.ErrorIs(t, s.Redo(), kerrors.ErrNothingToRedo)
}

func TestDiscardKeepsMutatedState(t *testing.T) {
	s, hips, _ := setupSession(t, Options{})
	rec := s.BeginEditRecord()
	rec.SetOriginalTransform(hips.Main)
	hips.Main.Slot(curve.PosX).UpdateKey(0, curve.Key{Time: 1.0, Value: 3})

	s.Discard(rec)
	assert.Zero(t, s.HistoryLength())
	assert.Equal(t, 3.0, posX(t, hips))
	assert.NotSame(t, rec, s.BeginEditRecord())
}

func TestRecommitIsRefused(t *testing.T) {
	s, hips, _ := setupSession(t, Options{})
	slot := hips.Main.Slot(curve.PosX)

	rec := s.BeginEditRecord()
	rec.SetOriginalTransform(hips.Main)
	slot.UpdateKey(0, curve.Key{Time: 1.0, Value: 3})
	committed, err := s.Commit(rec)
	require.NoError(t, err)
	require.True(t, committed)

	require.NoError(t, s.KeyBone("hips", curve.PosX, curve.Key{Time: 1.0, Value: 5}))
	committed, err = s.Commit(rec)
	require.NoError(t, err)
	assert.False(t, committed, "a sealed record belongs to its action")
	assert.Equal(t, 2, s.HistoryLength())

	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	assert.Equal(t, 0.0, posX(t, hips))
	require.NoError(t, s.Redo())
	assert.Equal(t, 3.0, posX(t, hips), "first gesture still round-trips")
}

func TestOneShotEditLeavesHostGestureIntact(t *testing.T) {
	t.Run("open_gesture_committed_first", func(t *testing.T) {
		s, hips, _ := setupSession(t, Options{})
		rec := s.BeginEditRecord()
		rec.Label = "nudge"
		rec.SetOriginalTransform(hips.Main)
		hips.Main.Slot(curve.PosX).UpdateKey(0, curve.Key{Time: 1.0, Value: 3})

		require.NoError(t, s.KeyBone("hips", curve.PosY, curve.Key{Time: 0.5, Value: 1}))
		entries := s.History()
		require.Len(t, entries, 2)
		assert.Equal(t, "nudge", entries[0].Name)

		committed, err := s.Commit(rec)
		require.NoError(t, err)
		assert.False(t, committed)
		assert.Equal(t, 2, s.HistoryLength())

		require.NoError(t, s.Undo())
		assert.Equal(t, 3.0, posX(t, hips))
		require.NoError(t, s.Undo())
		assert.Equal(t, 0.0, posX(t, hips))
	})

	t.Run("failed_edit_keeps_host_gesture", func(t *testing.T) {
		s, hips, _ := setupSession(t, Options{})
		rec := s.BeginEditRecord()
		rec.SetOriginalTransform(hips.Main)
		hips.Main.Slot(curve.PosX).UpdateKey(0, curve.Key{Time: 1.0, Value: 3})

		_, err := s.MoveFrames([]int{30}, 500)
		require.Error(t, err)
		require.Equal(t, 1, s.HistoryLength(), "host gesture reached history before the move")

		require.NoError(t, s.Undo())
		assert.Equal(t, 0.0, posX(t, hips))
	})
}

// =============================================================================
// Busy Guards
// =============================================================================

func TestBusyGuards(t *testing.T) {
	s, hips, clock := setupSession(t, Options{})
	require.NoError(t, s.KeyBone("hips", curve.PosY, curve.Key{Time: 0, Value: 1}))

	s.SetPreviewing(true)
	assert.True(t, s.Busy())

	assert.ErrorIs(t, s.Undo(), kerrors.ErrSessionBusy)
	assert.ErrorIs(t, s.Redo(), kerrors.ErrSessionBusy)
	assert.ErrorIs(t, s.Mutate(hips.Main, nil), kerrors.ErrSessionBusy)
	_, err := s.MoveFrames([]int{0}, 1)
	assert.ErrorIs(t, err, kerrors.ErrSessionBusy)
	assert.Equal(t, 0, s.HistoryPosition(), "undo was ignored")

	t.Run("commit_keeps_record_open", func(t *testing.T) {
		rec := s.BeginEditRecord()
		rec.SetOriginalTransform(hips.Main)
		committed, err := s.Commit(rec)
		assert.ErrorIs(t, err, kerrors.ErrSessionBusy)
		assert.False(t, committed)
		assert.Same(t, rec, s.BeginEditRecord())

		s.SetPreviewing(false)
		committed, err = s.Commit(rec)
		require.NoError(t, err)
		assert.True(t, committed)
	})

	t.Run("tick_waits_until_idle", func(t *testing.T) {
		require.NoError(t, s.Mutate(hips.Main, func() {
			hips.Main.Slot(curve.PosX).UpdateKey(0, curve.Key{Time: 1.0, Value: 5})
		}))
		s.SetPreviewing(true)
		committed, err := s.Tick(clock.Advance(time.Second))
		require.NoError(t, err)
		assert.False(t, committed)

		s.SetPreviewing(false)
		committed, err = s.Tick(clock.now)
		require.NoError(t, err)
		assert.True(t, committed)
	})
}

// =============================================================================
// Frame Operations
// =============================================================================

func TestMoveFrames(t *testing.T) {
	s, hips, _ := setupSession(t, Options{})
	require.NoError(t, s.KeyLinear("hips", curve.FrameKey{Frame: 30, Values: []float64{1}}))
	_, err := s.AddEvent("footstep", 1.0)
	require.NoError(t, err)
	base := s.HistoryLength()

	n, err := s.MoveFrames([]int{30}, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, base+1, s.HistoryLength())

	frames, err := s.Frames(keyframe.Global())
	require.NoError(t, err)
	assert.Equal(t, []int{34}, frames)

	require.NoError(t, s.Undo())
	frames, err = s.Frames(keyframe.Global())
	require.NoError(t, err)
	assert.Equal(t, []int{30}, frames)

	t.Run("rejected_move_leaves_no_history", func(t *testing.T) {
		require.NoError(t, s.KeyLinear("hips", curve.FrameKey{Frame: 34, Values: []float64{2}}))
		length := s.HistoryLength()

		_, err := s.MoveFrames([]int{30}, 4)
		assert.ErrorIs(t, err, kerrors.ErrFrameOccupied)
		assert.Equal(t, length, s.HistoryLength())
		assert.False(t, s.recorder.Active())
		assert.True(t, hips.Linear.Has(30))
	})
}

func TestDeleteAndPasteFrames(t *testing.T) {
	s, hips, _ := setupSession(t, Options{})
	require.NoError(t, s.KeyBone("hips", curve.PosX, curve.Key{Time: 2.0 / 30, Value: 2}))
	require.NoError(t, s.KeyBone("hips", curve.PosX, curve.Key{Time: 5.0 / 30, Value: 5}))
	require.NoError(t, s.KeyBone("hips", curve.PosX, curve.Key{Time: 9.0 / 30, Value: 9}))
	require.NoError(t, s.SetEditMode(keyframe.BoneScope("hips")))

	n, err := s.CopyFrames([]int{2, 5, 9})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = s.PasteFrames(3)
	require.NoError(t, err)
	frames, err := s.Frames(keyframe.BoneScope("hips"))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5, 8, 9, 12, 30}, frames)

	n, err = s.DeleteFrames([]int{8})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	agg, err := s.FrameEntries(keyframe.BoneScope("hips"), 9)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Len())

	require.NoError(t, s.Undo())
	require.NoError(t, s.Undo())
	frames, err = s.Frames(keyframe.BoneScope("hips"))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 5, 9, 30}, frames)
	assert.Len(t, hips.Main.Slot(curve.PosX).Keys(), 4)

	_, err = s.CopyFrames([]int{100})
	assert.ErrorIs(t, err, kerrors.ErrEmptyClipboard)
}

// =============================================================================
// Modes and Structure
// =============================================================================

func TestSetEditMode(t *testing.T) {
	s, _, _ := setupSession(t, Options{})

	require.NoError(t, s.SetEditMode(keyframe.BoneScope("hips")))
	assert.Equal(t, keyframe.BoneScope("hips"), s.Mode())
	assert.Equal(t, 1, s.HistoryLength())

	require.NoError(t, s.SetEditMode(keyframe.BoneScope("hips")))
	assert.Equal(t, 1, s.HistoryLength(), "same mode is not recorded")

	require.NoError(t, s.Undo())
	assert.Equal(t, keyframe.Global(), s.Mode())
	require.NoError(t, s.Redo())
	assert.Equal(t, keyframe.BoneScope("hips"), s.Mode())

	err := s.SetEditMode(keyframe.BoneScope("tail"))
	assert.ErrorIs(t, err, kerrors.ErrBoneNotFound)
}

func TestSetEditModeOrdering(t *testing.T) {
	t.Run("pending_drag_lands_first", func(t *testing.T) {
		s, hips, _ := setupSession(t, Options{Debounce: time.Second})
		slot := hips.Main.Slot(curve.PosX)
		require.NoError(t, s.Mutate(hips.Main, func() {
			slot.UpdateKey(0, curve.Key{Time: 1.0, Value: 4})
		}))

		require.NoError(t, s.SetEditMode(keyframe.BoneScope("hips")))
		require.Equal(t, 2, s.HistoryLength())
		entries := s.History()
		assert.Equal(t, "drag", entries[0].Name)
		assert.Equal(t, "mode bone:hips", entries[1].Name)

		require.NoError(t, s.Undo())
		assert.Equal(t, keyframe.Global(), s.Mode())
		assert.Equal(t, 4.0, posX(t, hips))
		require.NoError(t, s.Undo())
		assert.Equal(t, 0.0, posX(t, hips))
	})

	t.Run("rejected_switch_keeps_mode", func(t *testing.T) {
		s, _, _ := setupSession(t, Options{})
		s.SetPreviewing(true)
		err := s.SetEditMode(keyframe.BoneScope("hips"))
		assert.ErrorIs(t, err, kerrors.ErrSessionBusy)
		assert.Equal(t, keyframe.Global(), s.Mode())
		assert.Zero(t, s.HistoryLength())
	})
}

func TestRemoveBoneLifecycle(t *testing.T) {
	s, hips, _ := setupSession(t, Options{MaxHistory: 2})
	clip := s.Clip()
	mainHandle := hips.Main.Handle()

	require.NoError(t, s.RemoveBone("hips"))
	assert.Nil(t, clip.Bone("hips"))
	assert.Equal(t, 1, clip.ParkedCount())

	require.NoError(t, s.Undo())
	assert.Same(t, hips, clip.Bone("hips"))
	require.NoError(t, s.Redo())
	assert.Nil(t, clip.Bone("hips"))
	assert.NotNil(t, clip.Lookup(mainHandle), "parked bone stays resolvable")

	_, err := s.AddBone("spine")
	require.NoError(t, err)
	_, err = s.AddBone("neck")
	require.NoError(t, err)

	assert.Equal(t, 2, s.HistoryLength())
	assert.Zero(t, clip.ParkedCount(), "evicted removal destroys the bone")
	assert.Nil(t, clip.Lookup(mainHandle))

	assert.ErrorIs(t, s.RemoveBone("hips"), kerrors.ErrBoneNotFound)
}

func TestAddBoneDiscardedWhileUndone(t *testing.T) {
	s, _, _ := setupSession(t, Options{})
	clip := s.Clip()

	spine, err := s.AddBone("spine")
	require.NoError(t, err)
	handle := spine.Main.Handle()

	require.NoError(t, s.Undo())
	assert.Nil(t, clip.Bone("spine"))
	assert.True(t, clip.IsParked(spine))

	require.NoError(t, s.KeyBone("hips", curve.PosZ, curve.Key{Time: 0, Value: 1}))
	assert.False(t, clip.IsParked(spine))
	assert.Nil(t, clip.Lookup(handle), "branch discard destroys the undone bone")

	_, err = s.AddBone("hips")
	assert.True(t, kerrors.IsUserError(err))
}

func TestSetPoseRoundTrip(t *testing.T) {
	s, hips, _ := setupSession(t, Options{})
	s.SetPlayhead(0.5)

	pose := curve.PoseState{
		Position: curve.Vec3{X: 1, Y: 2, Z: 3},
		Rotation: curve.IdentityQuat,
		Scale:    curve.Vec3{X: 1, Y: 1, Z: 1},
	}
	require.NoError(t, s.SetPose("hips", pose))
	assert.Equal(t, pose, hips.Node.Snapshot())

	s.SetPlayhead(2)
	require.NoError(t, s.Undo())
	assert.Equal(t, curve.Vec3{}, hips.Node.Position)
	assert.Equal(t, 0.5, s.Playhead(), "undo seeks back to the original playhead")
}

// =============================================================================
// Compile
// =============================================================================

func TestCompile(t *testing.T) {
	s, _, _ := setupSession(t, Options{})
	ran := 0
	jobs := []Job{
		{Name: "a", Run: func(context.Context) error { ran++; return nil }},
		{Name: "b", Run: func(context.Context) error { ran++; return nil }},
		{Name: "c", Run: func(context.Context) error { ran++; return nil }},
	}

	t.Run("runs_all_and_blocks_edits", func(t *testing.T) {
		var busyErrs []error
		err := s.Compile(context.Background(), jobs, func(done, total int) {
			assert.Equal(t, 3, total)
			busyErrs = append(busyErrs, s.Undo())
			busyErrs = append(busyErrs, s.Compile(context.Background(), nil, nil))
		})
		require.NoError(t, err)
		assert.Equal(t, 3, ran)
		require.Len(t, busyErrs, 6)
		assert.ErrorIs(t, busyErrs[0], kerrors.ErrSessionBusy)
		assert.ErrorIs(t, busyErrs[1], kerrors.ErrCompileActive)
		assert.False(t, s.Compiling())
	})

	t.Run("cancel_between_jobs", func(t *testing.T) {
		ran = 0
		ctx, cancel := context.WithCancel(context.Background())
		err := s.Compile(ctx, jobs, func(done, total int) {
			if done == 1 {
				cancel()
			}
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, kerrors.CategoryRecoverable, kerrors.GetCategory(err), "a cancelled bake can be rerun")
		assert.Equal(t, 1, ran)
		assert.False(t, s.Compiling())
	})

	t.Run("job_error", func(t *testing.T) {
		boom := errors.New("boom")
		err := s.Compile(context.Background(), []Job{{Name: "x", Run: func(context.Context) error { return boom }}}, nil)
		assert.ErrorIs(t, err, boom)
		assert.Contains(t, err.Error(), "compile x")
	})

	t.Run("refused_while_previewing", func(t *testing.T) {
		s.SetPreviewing(true)
		defer s.SetPreviewing(false)
		assert.ErrorIs(t, s.Compile(context.Background(), jobs, nil), kerrors.ErrSessionBusy)
	})
}

func TestBakeJobs(t *testing.T) {
	s, _, _ := setupSession(t, Options{})
	require.NoError(t, s.KeyBone("hips", curve.PosY, curve.Key{Time: 0, Value: 0, Flags: curve.InterpLinear}))
	require.NoError(t, s.KeyBone("hips", curve.PosY, curve.Key{Time: 1, Value: 1}))
	p := s.Clip().AddProperty("material.alpha")
	require.NoError(t, s.KeyProperty(p.Path, curve.Key{Time: 0, Value: 0.25}))

	jobs, baked := s.BakeJobs()
	require.Len(t, jobs, 3)
	require.NoError(t, s.Compile(context.Background(), jobs, nil))

	require.Len(t, baked.Tracks, 3)
	assert.Equal(t, 121, baked.Frames)
	posY := baked.Tracks[1]
	assert.Equal(t, curve.PosY, posY.Channel)
	require.Len(t, posY.Samples, 121)
	assert.InDelta(t, 0.5, posY.Samples[15], 1e-9)
	assert.InDelta(t, 1.0, posY.Samples[120], 1e-9)

	alpha := baked.Tracks[2]
	assert.True(t, alpha.Property)
	assert.Equal(t, "material.alpha", jobs[2].Name)
	assert.InDelta(t, 0.25, alpha.Samples[60], 1e-9)
}
