package storage

import (
	"time"

	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/model"
)

// ClipRepo provides CRUD operations for stored clips.
type ClipRepo struct {
	db *DB
}

// NewClipRepo creates a new clip repository.
func NewClipRepo(db *DB) *ClipRepo {
	return &ClipRepo{db: db}
}

// Create stores a new clip. A clip with the same name must not exist.
func (r *ClipRepo) Create(doc *model.ClipDoc) error {
	doc.Key = model.GenerateClipKey(doc.Name)
	exists, err := r.db.Exists(doc.Key)
	if err != nil {
		return err
	}
	if exists {
		return errors.Wrapf(errors.ErrClipExists, "clip %q", doc.Name)
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	return r.db.Set(doc)
}

// Get loads a clip by name.
func (r *ClipRepo) Get(name string) (*model.ClipDoc, error) {
	doc := &model.ClipDoc{}
	if err := r.db.Get(model.GenerateClipKey(name), doc); err != nil {
		if IsErrKeyNotFound(err) {
			return nil, errors.Wrapf(errors.ErrClipNotFound, "clip %q", name)
		}
		return nil, err
	}
	return doc, nil
}

// Save overwrites a clip and bumps its update time.
func (r *ClipRepo) Save(doc *model.ClipDoc) error {
	doc.Key = model.GenerateClipKey(doc.Name)
	doc.UpdatedAt = time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = doc.UpdatedAt
	}
	return r.db.Set(doc)
}

// Delete removes a clip by name.
func (r *ClipRepo) Delete(name string) error {
	ok, err := r.Exists(name)
	if err != nil {
		return err
	}
	if !ok {
		return errors.Wrapf(errors.ErrClipNotFound, "clip %q", name)
	}
	return r.db.Delete(model.GenerateClipKey(name))
}

// Exists reports whether a clip named name is stored.
func (r *ClipRepo) Exists(name string) (bool, error) {
	return r.db.Exists(model.GenerateClipKey(name))
}

// List returns every stored clip ordered by name.
func (r *ClipRepo) List() ([]*model.ClipDoc, error) {
	return GetAllByPrefix(r.db, model.PrefixClip+":", func() *model.ClipDoc {
		return &model.ClipDoc{}
	})
}
