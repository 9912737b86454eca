package output

import (
	"time"

	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/history"
	"github.com/manav03panchal/keyline/internal/keyframe"
	"github.com/manav03panchal/keyline/internal/model"
	"github.com/manav03panchal/keyline/internal/storage"
)

// JSONFormatter provides JSON-specific formatting.
type JSONFormatter struct {
	*Formatter
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(f *Formatter) *JSONFormatter {
	return &JSONFormatter{Formatter: f}
}

// ClipOutput is the JSON summary of a stored clip.
type ClipOutput struct {
	Name       string  `json:"name"`
	FrameRate  float64 `json:"frame_rate"`
	Length     int     `json:"length"`
	Duration   float64 `json:"duration_seconds"`
	Bones      int     `json:"bones"`
	Properties int     `json:"properties"`
	Events     int     `json:"events"`
	Keys       int     `json:"keys"`
	Active     bool    `json:"active"`
	UpdatedAt  string  `json:"updated_at,omitempty"`
}

// NewClipOutput summarises doc.
func NewClipOutput(doc *model.ClipDoc, active bool) *ClipOutput {
	out := &ClipOutput{
		Name:       doc.Name,
		FrameRate:  doc.FrameRate,
		Length:     doc.Length,
		Duration:   doc.Duration(),
		Bones:      len(doc.Bones),
		Properties: len(doc.Properties),
		Events:     len(doc.Events),
		Keys:       doc.KeyCount(),
		Active:     active,
	}
	if !doc.UpdatedAt.IsZero() {
		out.UpdatedAt = doc.UpdatedAt.Format(time.RFC3339)
	}
	return out
}

// ClipsResponse is the output of the list command.
type ClipsResponse struct {
	Clips  []*ClipOutput `json:"clips"`
	Active string        `json:"active,omitempty"`
}

// FramesResponse lists the occupied frames of a scope.
type FramesResponse struct {
	Scope  string `json:"scope"`
	Frames []int  `json:"frames"`
}

// EntryOutput is one key inside an aggregate.
type EntryOutput struct {
	Kind    string    `json:"kind"`
	Target  string    `json:"target,omitempty"`
	Channel string    `json:"channel,omitempty"`
	Time    float64   `json:"time,omitempty"`
	Value   float64   `json:"value,omitempty"`
	Values  []float64 `json:"values,omitempty"`
	ID      string    `json:"id,omitempty"`
	Name    string    `json:"name,omitempty"`
}

// AggregateOutput is the JSON form of a keyframe aggregate.
type AggregateOutput struct {
	Frame   int            `json:"frame"`
	Scope   string         `json:"scope"`
	Entries []*EntryOutput `json:"entries"`
}

// NewAggregateOutput flattens agg into entries.
func NewAggregateOutput(agg *keyframe.Aggregate) *AggregateOutput {
	out := &AggregateOutput{Frame: agg.Frame, Scope: agg.Scope.String(), Entries: []*EntryOutput{}}
	for _, e := range agg.Sampled {
		entry := &EntryOutput{Kind: "sampled", Target: e.Target, Time: e.Key.Time, Value: e.Key.Value}
		if !e.Property {
			entry.Channel = e.Channel.String()
		}
		out.Entries = append(out.Entries, entry)
	}
	for _, e := range agg.Linear {
		out.Entries = append(out.Entries, &EntryOutput{Kind: "linear", Target: e.Target, Values: e.Key.Values})
	}
	for _, ev := range agg.Events {
		out.Entries = append(out.Entries, eventEntry(ev))
	}
	return out
}

func eventEntry(ev curve.Event) *EntryOutput {
	return &EntryOutput{Kind: "event", ID: ev.ID, Name: ev.Name, Time: ev.Time}
}

// HistoryResponse is the JSON form of the undo history.
type HistoryResponse struct {
	Position int            `json:"position"`
	CanUndo  bool           `json:"can_undo"`
	CanRedo  bool           `json:"can_redo"`
	Entries  []history.Info `json:"entries"`
}

// ResultResponse reports the outcome of an edit command.
type ResultResponse struct {
	Status  string `json:"status"`
	Command string `json:"command,omitempty"`
	Count   int    `json:"count,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse represents an error in JSON.
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// BakeResponse wraps a bake result.
type BakeResponse struct {
	Status string        `json:"status"`
	Path   string        `json:"path,omitempty"`
	Baked  *editor.Baked `json:"baked,omitempty"`
}

// DoctorResponse is the output of the doctor command.
type DoctorResponse struct {
	Path        string                  `json:"path"`
	Status      *storage.RecoveryStatus `json:"status"`
	DiskWarning string                  `json:"disk_warning,omitempty"`
}

// PrintClip outputs a clip summary.
func (j *JSONFormatter) PrintClip(doc *model.ClipDoc, active bool) error {
	return j.JSON(NewClipOutput(doc, active))
}

// PrintClips outputs the clip list.
func (j *JSONFormatter) PrintClips(docs []*model.ClipDoc, active string) error {
	resp := ClipsResponse{Clips: make([]*ClipOutput, 0, len(docs)), Active: active}
	for _, d := range docs {
		resp.Clips = append(resp.Clips, NewClipOutput(d, d.Name == active))
	}
	return j.JSON(resp)
}

// PrintFrames outputs the occupied frames of a scope.
func (j *JSONFormatter) PrintFrames(scope keyframe.Scope, frames []int) error {
	if frames == nil {
		frames = []int{}
	}
	return j.JSON(FramesResponse{Scope: scope.String(), Frames: frames})
}

// PrintAggregate outputs one keyframe aggregate.
func (j *JSONFormatter) PrintAggregate(agg *keyframe.Aggregate) error {
	return j.JSON(NewAggregateOutput(agg))
}

// PrintHistory outputs the undo history.
func (j *JSONFormatter) PrintHistory(entries []history.Info, position int, canUndo, canRedo bool) error {
	if entries == nil {
		entries = []history.Info{}
	}
	return j.JSON(HistoryResponse{Position: position, CanUndo: canUndo, CanRedo: canRedo, Entries: entries})
}

// PrintResult outputs the outcome of an edit command.
func (j *JSONFormatter) PrintResult(command string, count int, message string) error {
	return j.JSON(ResultResponse{Status: "ok", Command: command, Count: count, Message: message})
}

// PrintBaked outputs a bake result. The samples are included only when
// they were not written to a file.
func (j *JSONFormatter) PrintBaked(b *editor.Baked, path string) error {
	resp := BakeResponse{Status: "baked", Path: path}
	if path == "" {
		resp.Baked = b
	}
	return j.JSON(resp)
}

// PrintDoctor outputs a database health report.
func (j *JSONFormatter) PrintDoctor(status *storage.RecoveryStatus, path, diskWarning string) error {
	return j.JSON(DoctorResponse{Path: path, Status: status, DiskWarning: diskWarning})
}

// PrintError outputs an error in JSON format.
func (j *JSONFormatter) PrintError(status, errMsg, message string) error {
	return j.JSON(ErrorResponse{Status: status, Error: errMsg, Message: message})
}
