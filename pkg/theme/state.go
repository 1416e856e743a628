package theme

import (
	"log/slog"
	"sync"

	store "github.com/goliatone/go-paqs-store"
	"github.com/goliatone/go-paqs-store/pkg/activity"
	"github.com/goliatone/go-paqs-store/pkg/kv"
	"github.com/goliatone/go-paqs-store/pkg/preference"
)

// Transition sources reported on theme.changed events.
const (
	SourceToggle   = "toggle"
	SourceExplicit = "explicit"
	SourceSystem   = "system"
	SourceReset    = "reset"
)

// Option configures a State.
type Option func(*config)

type config struct {
	key       string
	attribute string
	darkClass string
	emitter   *activity.Emitter
	logger    *slog.Logger
}

// WithStorageKey overrides the key the pin is persisted under.
func WithStorageKey(key string) Option {
	return func(cfg *config) {
		if key != "" {
			cfg.key = key
		}
	}
}

// WithAttribute overrides the root attribute name.
func WithAttribute(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.attribute = name
		}
	}
}

// WithDarkClass overrides the body class toggled on when dark.
func WithDarkClass(name string) Option {
	return func(cfg *config) {
		if name != "" {
			cfg.darkClass = name
		}
	}
}

// WithEmitter publishes transitions to emitter.
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

// State is the theme state machine.
type State struct {
	cfg      config
	bridge   *kv.Bridge
	signal   preference.Signal
	document Document
	value    *store.Writable[Theme]

	mu        sync.Mutex
	current   Theme
	pinned    bool
	osTheme   Theme
	osKnown   bool
	stopWatch func()
	closed    bool

	// applying is set while one caller copies current into value; dirty
	// asks it to copy again.
	applying bool
	dirty    bool
}

// New resolves the initial theme from the stored pin, the platform preference
// and the default, mirrors it onto document and starts following platform
// changes. Nil collaborators fall back to memory storage, no platform
// preference and no document.
func New(bridge *kv.Bridge, signal preference.Signal, document Document, opts ...Option) *State {
	cfg := config{
		key:       kv.KeyTheme,
		attribute: DefaultAttribute,
		darkClass: DefaultDarkClass,
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if bridge == nil {
		bridge = kv.NewBridge(nil)
	}
	if signal == nil {
		signal = preference.Absent{}
	}
	if document == nil {
		document = NoopDocument{}
	}

	s := &State{
		cfg:      cfg,
		bridge:   bridge,
		signal:   signal,
		document: document,
	}
	if raw, ok := bridge.Read(cfg.key); ok {
		if pin, valid := Parse(raw); valid {
			s.current, s.pinned = pin, true
		} else {
			cfg.logger.Debug("theme: ignoring malformed stored value", "value", raw)
		}
	}
	if dark, ok := signal.PrefersDark(); ok {
		s.osTheme, s.osKnown = FromDark(dark), true
	}
	s.current = resolve(s.current, s.pinned, s.osTheme, s.osKnown).Value

	s.value = store.New(s.current, store.WithName("theme"), store.WithDedupe())
	s.value.Subscribe(s.mirror)
	s.stopWatch = signal.Watch(s.systemChanged)
	return s
}

// Theme is the current theme as a store.
func (s *State) Theme() store.Readable[Theme] {
	return s.value.Readonly()
}

// Current returns the current theme.
func (s *State) Current() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Pinned reports whether an explicit choice overrides the platform.
func (s *State) Pinned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pinned
}

// Toggle flips the theme and pins the result.
func (s *State) Toggle() {
	s.transition(SourceToggle, func() (Theme, bool) {
		return s.current.Flip(), true
	})
}

// Set pins t. Invalid themes are ignored.
func (s *State) Set(t Theme) {
	if _, ok := Parse(string(t)); !ok {
		s.cfg.logger.Debug("theme: ignoring invalid theme", "value", string(t))
		return
	}
	s.transition(SourceExplicit, func() (Theme, bool) {
		return t, true
	})
}

// FollowSystem drops the pin and adopts the platform preference, or the
// default when the platform reports none.
func (s *State) FollowSystem() {
	s.transition(SourceSystem, s.unpinned)
}

// Reset drops the pin and re-resolves as on a fresh start.
func (s *State) Reset() {
	s.transition(SourceReset, s.unpinned)
}

// Trace reports which layers are present and which one produced the
// current theme.
func (s *State) Trace() Trace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return resolve(s.current, s.pinned, s.osTheme, s.osKnown)
}

// Close stops following platform changes. The State stays readable.
func (s *State) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	stop := s.stopWatch
	s.mu.Unlock()
	stop()
}

func (s *State) unpinned() (Theme, bool) {
	if dark, ok := s.signal.PrefersDark(); ok {
		s.osTheme, s.osKnown = FromDark(dark), true
	} else {
		s.osTheme, s.osKnown = "", false
	}
	return resolve("", false, s.osTheme, s.osKnown).Value, false
}

// systemChanged is called by the platform signal.
func (s *State) systemChanged(dark bool) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.osTheme, s.osKnown = FromDark(dark), true
	if s.pinned {
		s.mu.Unlock()
		s.cfg.logger.Debug("theme: platform change ignored while pinned", "dark", dark)
		return
	}
	previous := s.current
	s.current = s.osTheme
	s.mu.Unlock()

	s.publish(previous, SourceSystem)
}

// transition applies next under the lock, persists the pin state and then
// publishes outside the lock so subscribers may call back into the State.
func (s *State) transition(source string, next func() (Theme, bool)) {
	s.mu.Lock()
	previous := s.current
	target, pin := next()
	s.current, s.pinned = target, pin
	if pin {
		s.bridge.Write(s.cfg.key, string(target))
	} else {
		s.bridge.Remove(s.cfg.key)
	}
	s.mu.Unlock()

	s.publish(previous, source)
}

func (s *State) publish(previous Theme, source string) {
	s.mu.Lock()
	latest, pinned := s.current, s.pinned
	s.mu.Unlock()

	s.apply()
	if latest == previous {
		return
	}
	s.cfg.emitter.Publish(activity.BuildThemeChangedEvent(activity.ThemeInput{
		From:   string(previous),
		To:     string(latest),
		Source: source,
		Pinned: pinned,
	}))
}

// apply copies current into the store. Only one caller applies at a time and
// it repeats until no decision arrived during its last Set, so the store and
// the document always end on the newest decision. Calls made while another
// apply is running, including from subscribers, return after marking dirty.
func (s *State) apply() {
	s.mu.Lock()
	s.dirty = true
	if s.applying {
		s.mu.Unlock()
		return
	}
	s.applying = true
	for s.dirty {
		s.dirty = false
		next := s.current
		s.mu.Unlock()
		s.value.Set(next)
		s.mu.Lock()
	}
	s.applying = false
	s.mu.Unlock()
}

func (s *State) mirror(t Theme) {
	s.document.SetAttribute(s.cfg.attribute, string(t))
	s.document.ToggleClass(s.cfg.darkClass, t.IsDark())
}
