// Package directory holds the persona roster and the active persona id, and
// keeps the id consistent with the roster and with persistent storage.
//
// The active id is the empty string when no persona is active. It is never
// assigned to the first roster entry automatically: absence is a state of its
// own.
package directory

import (
	"log/slog"
	"slices"

	store "github.com/goliatone/go-paqs-store"
	"github.com/goliatone/go-paqs-store/pkg/activity"
	"github.com/goliatone/go-paqs-store/pkg/kv"
)

// Option configures a Directory.
type Option func(*config)

type config struct {
	key     string
	emitter *activity.Emitter
	logger  *slog.Logger
}

// WithStorageKey overrides the key the active id is persisted under.
func WithStorageKey(key string) Option {
	return func(cfg *config) {
		if key != "" {
			cfg.key = key
		}
	}
}

// WithEmitter publishes committed changes to emitter.
func WithEmitter(emitter *activity.Emitter) Option {
	return func(cfg *config) {
		cfg.emitter = emitter
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Directory is the user directory state.
type Directory struct {
	cfg    config
	bridge *kv.Bridge

	users      *store.Writable[[]Persona]
	activeID   *store.Writable[string]
	active     *store.Derived[*Persona]
	manageable *store.Derived[[]Persona]
}

// New builds a directory and restores the persisted active id. The id is not
// validated until the first roster arrives.
func New(bridge *kv.Bridge, opts ...Option) *Directory {
	cfg := config{
		key:    kv.KeySelectedUser,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if bridge == nil {
		bridge = kv.NewBridge(nil)
	}

	d := &Directory{
		cfg:      cfg,
		bridge:   bridge,
		users:    store.New([]Persona{}, store.WithName("users")),
		activeID: store.New("", store.WithName("active_id"), store.WithDedupe()),
	}
	if stored, ok := bridge.Read(cfg.key); ok && stored != "" {
		d.activeID.Set(stored)
		cfg.logger.Debug("directory: restored active persona", "id", stored)
	}

	// Construction cannot fail: both sources exist and the combiners are set.
	d.active, _ = store.Derive2[[]Persona, string](d.users, d.activeID, func(users []Persona, id string) *Persona {
		return find(users, id)
	}, store.WithName("active_user"))
	d.manageable, _ = store.Derive1[[]Persona](d.users, func(users []Persona) []Persona {
		out := make([]Persona, 0, len(users))
		for _, persona := range users {
			if !persona.IsAdmin {
				out = append(out, persona.Clone())
			}
		}
		return out
	}, store.WithName("manageable_users"))
	return d
}

// SetUsers replaces the roster. The active id survives only if it is still
// present; otherwise it becomes absent. The resulting id is persisted, or the
// key removed when absent.
func (d *Directory) SetUsers(roster []Persona) {
	next, dropped := cloneRoster(roster)
	if len(dropped) > 0 {
		d.cfg.logger.Warn("directory: duplicate persona ids dropped", "ids", dropped)
	}

	previous := d.activeID.Get()
	nextID := ""
	if find(next, previous) != nil {
		nextID = previous
	}

	d.users.Set(next)
	d.activeID.Set(nextID)
	d.persist(nextID)

	d.cfg.emitter.Publish(activity.BuildRosterReplacedEvent(activity.RosterInput{
		IDs:        ids(next),
		ActiveID:   nextID,
		PreviousID: previous,
	}))
	if previous != "" && nextID == "" {
		d.cfg.emitter.Publish(activity.BuildPersonaClearedEvent(previous, "stale"))
	}
}

// UpdateUser replaces the roster entry with the same id. Unknown ids leave the
// roster untouched. The active id is never changed.
func (d *Directory) UpdateUser(persona Persona) {
	current := d.users.Get()
	index := slices.IndexFunc(current, func(candidate Persona) bool {
		return candidate.ID == persona.ID
	})
	if index < 0 {
		d.cfg.logger.Debug("directory: update for unknown persona ignored", "id", persona.ID)
		return
	}
	next := slices.Clone(current)
	next[index] = persona.Clone()
	d.users.Set(next)
	d.cfg.emitter.Publish(activity.BuildPersonaUpdatedEvent(persona.ID))
}

// SetActiveID selects id without checking the roster; an unknown id simply
// resolves to no active persona. The empty string clears the selection.
func (d *Directory) SetActiveID(id string) {
	previous := d.activeID.Get()
	d.activeID.Set(id)
	d.persist(id)

	if previous == id {
		return
	}
	if id == "" {
		d.cfg.emitter.Publish(activity.BuildPersonaClearedEvent(previous, "explicit"))
		return
	}
	d.cfg.emitter.Publish(activity.BuildPersonaSelectedEvent(id, previous))
}

// ClearActive is SetActiveID("").
func (d *Directory) ClearActive() {
	d.SetActiveID("")
}

// Reset empties the roster and clears the active id and its persisted key.
func (d *Directory) Reset() {
	previous := d.activeID.Get()
	d.users.Set([]Persona{})
	d.activeID.Set("")
	d.persist("")
	if previous != "" {
		d.cfg.emitter.Publish(activity.BuildPersonaClearedEvent(previous, "reset"))
	}
}

// Users is the full roster in source order. Every reader gets its own copy;
// the roster only changes through SetUsers and UpdateUser.
func (d *Directory) Users() store.Readable[[]Persona] {
	return store.Cloned(d.users.Readonly(), cloneUsers)
}

// ActiveID is the active persona id, empty when absent.
func (d *Directory) ActiveID() store.Readable[string] {
	return d.activeID.Readonly()
}

// ActiveUser is the roster entry matching ActiveID, nil when absent or stale.
func (d *Directory) ActiveUser() store.Readable[*Persona] {
	return store.Cloned[*Persona](d.active, clonePersona)
}

// ManageableUsers is the roster without admin personas.
func (d *Directory) ManageableUsers() store.Readable[[]Persona] {
	return store.Cloned[[]Persona](d.manageable, cloneUsers)
}

// Lookup returns a store resolving id against the roster. Callers own the
// returned store and should Close it when the view goes away.
func (d *Directory) Lookup(id string) *store.Derived[*Persona] {
	lookup, _ := store.Derive1[[]Persona](d.users, func(users []Persona) *Persona {
		return find(users, id)
	}, store.WithName("lookup:"+id))
	return lookup
}

// Find resolves id against the current roster.
func (d *Directory) Find(id string) (Persona, bool) {
	found := find(d.users.Get(), id)
	if found == nil {
		return Persona{}, false
	}
	return *found, true
}

func (d *Directory) persist(id string) {
	if id == "" {
		d.bridge.Remove(d.cfg.key)
		return
	}
	d.bridge.Write(d.cfg.key, id)
}
