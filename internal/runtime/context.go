// Package runtime wires the pieces a keyline command needs: configuration,
// the clip store, output formatting and edit sessions.
package runtime

import (
	"os"

	"github.com/manav03panchal/keyline/internal/config"
	"github.com/manav03panchal/keyline/internal/curve"
	"github.com/manav03panchal/keyline/internal/editor"
	"github.com/manav03panchal/keyline/internal/errors"
	"github.com/manav03panchal/keyline/internal/model"
	"github.com/manav03panchal/keyline/internal/output"
	"github.com/manav03panchal/keyline/internal/storage"
)

// MemoryDB is the KEYLINE_DATABASE value selecting an in-memory store.
const MemoryDB = ":memory:"

// Context holds the application runtime context.
type Context struct {
	DB        *storage.DB
	Formatter *output.Formatter
	Config    *config.RuntimeConfig

	Clips  *storage.ClipRepo
	Active *storage.ActiveClipRepo

	Debug bool
}

// Options configures the runtime context.
type Options struct {
	DBPath     string
	ConfigPath string
	InMemory   bool
	Format     output.Format
	ColorMode  output.ColorMode
	Debug      bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		DBPath:    storage.DefaultPath(),
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
	}
}

// New loads configuration and opens the clip store. The database path is
// taken from, in order: KEYLINE_DATABASE, opts.DBPath, the config file and
// the XDG default.
func New(opts Options) (*Context, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, errors.NewUserError(err.Error(), "Fix the config file or pass --config with another path.")
	}
	config.Global = cfg

	if opts.DBPath == "" {
		opts.DBPath = cfg.Storage.Path
	}
	if opts.DBPath == "" && !opts.InMemory {
		opts.DBPath = storage.DefaultPath()
	}
	if envPath := os.Getenv("KEYLINE_DATABASE"); envPath != "" {
		if envPath == MemoryDB {
			opts.InMemory = true
		} else {
			opts.DBPath = envPath
		}
	}

	db, err := storage.Open(storage.Options{
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
		NoLock:   cfg.Storage.NoLock,
	})
	if err != nil {
		return nil, err
	}

	formatter := output.NewFormatter()
	if opts.Format != "" {
		formatter.Format = opts.Format
	}
	if opts.ColorMode != "" {
		formatter.ColorMode = opts.ColorMode
	}

	return &Context{
		DB:        db,
		Formatter: formatter,
		Config:    cfg,
		Clips:     storage.NewClipRepo(db),
		Active:    storage.NewActiveClipRepo(db),
		Debug:     opts.Debug,
	}, nil
}

// Close closes the runtime context.
func (c *Context) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// ResolveClip loads the clip named name, or the active clip when name is
// empty.
func (c *Context) ResolveClip(name string) (*model.ClipDoc, error) {
	if name != "" {
		return c.Clips.Get(name)
	}
	doc, err := c.Active.GetActiveClip(c.Clips)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.ErrNoActiveClip
	}
	return doc, nil
}

// NewClip creates an empty clip document using the configured defaults for
// zero rate or length.
func (c *Context) NewClip(name string, rate float64, length int) *model.ClipDoc {
	if rate <= 0 {
		rate = c.Config.Editor.FrameRate
	}
	if length <= 0 {
		length = c.Config.Editor.DefaultLength
	}
	return model.NewClipDoc(name, rate, length)
}

// SessionOptions returns editor options carrying the configured history
// size and debounce.
func (c *Context) SessionOptions(hooks editor.Hooks) editor.Options {
	return editor.Options{
		MaxHistory: c.Config.Editor.MaxHistory,
		Debounce:   c.Config.Editor.Debounce,
		Hooks:      hooks,
	}
}

// OpenSession builds a live clip from doc and opens an edit session on it
// with the configured history size and debounce.
func (c *Context) OpenSession(doc *model.ClipDoc, hooks editor.Hooks) *editor.Session {
	return editor.NewSession(doc.ToClip(), c.SessionOptions(hooks))
}

// SaveClip stores the live clip, keeping the creation time of prev.
func (c *Context) SaveClip(clip *curve.Clip, prev *model.ClipDoc) error {
	doc := model.FromClip(clip)
	if prev != nil {
		doc.CreatedAt = prev.CreatedAt
	}
	return c.Clips.Save(doc)
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI or plain.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format != output.FormatJSON
}

// Debugf prints debug output if debug mode is enabled. JSON output stays
// machine readable, so nothing is printed there.
func (c *Context) Debugf(format string, args ...any) {
	if c.Debug && !c.IsJSON() {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
