package editor

import (
	"context"
	"time"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/logging"
)

// Job is one unit of a compile run.
type Job struct {
	Name string
	Run  func(ctx context.Context) error
}

// Progress is called after every finished job. It is the host's chance to
// redraw while a compile is running.
type Progress func(done, total int)

// Compile runs jobs one after another on the calling goroutine. Edits and
// history moves are refused while it runs. Cancellation is checked before
// each job; a job that has started always finishes.
func (s *Session) Compile(ctx context.Context, jobs []Job, progress Progress) error {
	if s.compiling {
		return errors.ErrCompileActive
	}
	if s.previewing {
		return s.guard("compile")
	}
	if err := s.flush(); err != nil {
		return err
	}

	s.compiling = true
	defer func() { s.compiling = false }()

	ctx = logging.EnsureGestureID(ctx)
	logger := logging.LoggerFromContext(ctx).With(logging.KeyClip, s.clip.Name)
	start := time.Now()

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			logger.Warn("compile cancelled", logging.KeyCount, i, logging.KeyError, err)
			return errors.WithCategory(err, errors.CategoryRecoverable)
		}
		if job.Run != nil {
			if err := job.Run(ctx); err != nil {
				logger.Error("compile job failed", logging.KeyOperation, job.Name, logging.KeyError, err)
				return errors.Wrapf(err, "compile %s", job.Name)
			}
		}
		if progress != nil {
			progress(i+1, len(jobs))
		}
	}

	logger.Debug("compile finished",
		logging.KeyCount, len(jobs),
		logging.KeyDuration, time.Since(start).Milliseconds())
	return nil
}

// BakedTrack is one main-curve slot sampled at every frame of the clip.
type BakedTrack struct {
	Target   string        `json:"target"`
	Property bool          `json:"property,omitempty"`
	Channel  curve.Channel `json:"channel"`
	Samples  []float64     `json:"samples"`
}

// Baked collects the output of the jobs returned by BakeJobs.
type Baked struct {
	Clip   string        `json:"clip"`
	Frames int           `json:"frames"`
	Tracks []*BakedTrack `json:"tracks"`
}

// BakeJobs returns one compile job per keyed main-curve slot. Each job
// samples its slot at frames 0 through the clip length into the returned
// Baked.
func (s *Session) BakeJobs() ([]Job, *Baked) {
	out := &Baked{Clip: s.clip.Name, Frames: s.clip.Length + 1}
	rate := s.clip.Rate

	add := func(target string, property bool, ch curve.Channel, c *curve.SampledCurve) Job {
		track := &BakedTrack{Target: target, Property: property, Channel: ch}
		out.Tracks = append(out.Tracks, track)
		name := target
		if !property {
			name += " " + ch.String()
		}
		return Job{
			Name: name,
			Run: func(context.Context) error {
				track.Samples = make([]float64, 0, out.Frames)
				for f := 0; f < out.Frames; f++ {
					track.Samples = append(track.Samples, c.Evaluate(rate.FrameToTime(f)))
				}
				return nil
			},
		}
	}

	var jobs []Job
	for _, b := range s.clip.Bones() {
		for ch := curve.Channel(0); ch < curve.ChannelCount; ch++ {
			if slot := b.Main.Slot(ch); slot.Len() > 0 {
				jobs = append(jobs, add(b.Name, false, ch, slot))
			}
		}
	}
	for _, p := range s.clip.Properties() {
		if c := p.Main.Curve(); c.Len() > 0 {
			jobs = append(jobs, add(p.Path, true, -1, c))
		}
	}
	return jobs, out
}
