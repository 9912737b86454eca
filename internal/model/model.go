// Package model defines the persisted documents of keyline.
package model

// Model is the interface every stored document implements.
type Model interface {
	// SetKey sets the database key for this document.
	SetKey(key string)
	// GetKey returns the database key for this document.
	GetKey() string
}

// Key prefixes and singleton keys.
const (
	PrefixClip    = "clip"
	KeyActiveClip = "activeclip"
)

// GenerateClipKey returns the database key of the clip called name.
func GenerateClipKey(name string) string {
	return PrefixClip + ":" + name
}
