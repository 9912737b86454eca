package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// BackupVersion is written into every exported backup.
const BackupVersion = "1"

// Backup is the export file format: a set of clips plus the active name.
type Backup struct {
	Version    string     `json:"version"`
	ExportedAt time.Time  `json:"exported_at"`
	Active     string     `json:"active,omitempty"`
	Clips      []*ClipDoc `json:"clips"`
}

// NewBackup wraps docs for export.
func NewBackup(docs []*ClipDoc, active string) *Backup {
	if docs == nil {
		docs = []*ClipDoc{}
	}
	return &Backup{
		Version:    BackupVersion,
		ExportedAt: time.Now(),
		Active:     active,
		Clips:      docs,
	}
}

// Import formats recognized by DecodeBackup.
const (
	FormatBackup  = "backup"
	FormatSalvage = "salvage"
	FormatClip    = "clip"
)

// DecodeBackup reads a backup file, a bare array of clips (as written by
// doctor --export) or a single clip document. Every clip is normalized
// through ToClip so stray channels and missing event IDs are fixed on the
// way in. It returns the detected format.
func DecodeBackup(data []byte) (*Backup, string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty file")
	}

	var (
		b      Backup
		format string
	)
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &b.Clips); err != nil {
			return nil, "", fmt.Errorf("parse clip list: %w", err)
		}
		format = FormatSalvage
	case '{':
		var top map[string]json.RawMessage
		if err := json.Unmarshal(data, &top); err != nil {
			return nil, "", fmt.Errorf("parse file: %w", err)
		}
		if _, ok := top["clips"]; ok {
			if err := json.Unmarshal(data, &b); err != nil {
				return nil, "", fmt.Errorf("parse backup: %w", err)
			}
			format = FormatBackup
			break
		}
		var doc ClipDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, "", fmt.Errorf("parse clip: %w", err)
		}
		b.Clips = []*ClipDoc{&doc}
		format = FormatClip
	default:
		return nil, "", fmt.Errorf("unrecognized file format")
	}

	clips := make([]*ClipDoc, 0, len(b.Clips))
	for _, d := range b.Clips {
		if d == nil || d.Name == "" {
			continue
		}
		n := FromClip(d.ToClip())
		n.CreatedAt, n.UpdatedAt = d.CreatedAt, d.UpdatedAt
		clips = append(clips, n)
	}
	b.Clips = clips
	if b.Version == "" {
		b.Version = BackupVersion
	}
	return &b, format, nil
}
