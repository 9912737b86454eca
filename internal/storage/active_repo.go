package storage

import (
	"github.com/manav03panchal/keyline/internal/model"
)

// ActiveClipRepo stores which clip commands act on when none is named.
type ActiveClipRepo struct {
	db *DB
}

// NewActiveClipRepo creates a new active clip repository.
func NewActiveClipRepo(db *DB) *ActiveClipRepo {
	return &ActiveClipRepo{db: db}
}

// Get returns the active clip record, empty if none was ever stored.
func (r *ActiveClipRepo) Get() (*model.ActiveClip, error) {
	active := model.NewActiveClip()
	err := r.db.Get(model.KeyActiveClip, active)
	if IsErrKeyNotFound(err) {
		return active, nil
	}
	if err != nil {
		return nil, err
	}
	return active, nil
}

// Save persists the active clip record.
func (r *ActiveClipRepo) Save(active *model.ActiveClip) error {
	active.Key = model.KeyActiveClip
	return r.db.Set(active)
}

func (r *ActiveClipRepo) update(fn func(*model.ActiveClip)) error {
	active, err := r.Get()
	if err != nil {
		return err
	}
	fn(active)
	return r.Save(active)
}

// SetActive selects the clip named name.
func (r *ActiveClipRepo) SetActive(name string) error {
	return r.update(func(a *model.ActiveClip) { a.SetActive(name) })
}

// Clear deselects the active clip.
func (r *ActiveClipRepo) Clear() error {
	return r.update((*model.ActiveClip).ClearActive)
}

// GetActiveClip loads the selected clip, or returns nil when nothing is
// selected.
func (r *ActiveClipRepo) GetActiveClip(clips *ClipRepo) (*model.ClipDoc, error) {
	active, err := r.Get()
	if err != nil || !active.IsSet() {
		return nil, err
	}
	return clips.Get(active.ClipName)
}
