package model

// ActiveClip is a singleton naming the clip commands work on by default.
type ActiveClip struct {
	Key          string `json:"key"`
	ClipName     string `json:"clip_name,omitempty"`
	PreviousName string `json:"previous_name,omitempty"`
}

// SetKey sets the database key for this record.
func (a *ActiveClip) SetKey(key string) {
	a.Key = key
}

// GetKey returns the database key for this record.
func (a *ActiveClip) GetKey() string {
	return a.Key
}

// NewActiveClip creates an empty active clip record.
func NewActiveClip() *ActiveClip {
	return &ActiveClip{Key: KeyActiveClip}
}

// IsSet reports whether a clip is selected.
func (a *ActiveClip) IsSet() bool {
	return a.ClipName != ""
}

// SetActive selects name and remembers the previous selection.
func (a *ActiveClip) SetActive(name string) {
	if a.ClipName != "" && a.ClipName != name {
		a.PreviousName = a.ClipName
	}
	a.ClipName = name
}

// ClearActive deselects the current clip.
func (a *ActiveClip) ClearActive() {
	if a.ClipName != "" {
		a.PreviousName = a.ClipName
	}
	a.ClipName = ""
}
