// Package session assembles one paqs state engine: storage bridge, persona
// directory, theme state, permission policy and activity emitter. Hosts
// create one Session per user session and own its lifecycle.
package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/goliatone/go-paqs-store/config"
	"github.com/goliatone/go-paqs-store/pkg/activity"
	"github.com/goliatone/go-paqs-store/pkg/directory"
	"github.com/goliatone/go-paqs-store/pkg/kv"
	"github.com/goliatone/go-paqs-store/pkg/kv/boltkv"
	"github.com/goliatone/go-paqs-store/pkg/permission"
	"github.com/goliatone/go-paqs-store/pkg/preference"
	"github.com/goliatone/go-paqs-store/pkg/preference/filesignal"
	"github.com/goliatone/go-paqs-store/pkg/theme"
)

// Option overrides a collaborator that would otherwise be built from config.
type Option func(*options)

type options struct {
	storage  kv.Storage
	signal   preference.Signal
	document theme.Document
	hooks    activity.Hooks
	logger   *slog.Logger
	policy   *permission.Policy
}

// WithStorage uses storage instead of the configured driver.
func WithStorage(storage kv.Storage) Option {
	return func(o *options) {
		o.storage = storage
	}
}

// WithSignal uses signal instead of the configured preference source.
func WithSignal(signal preference.Signal) Option {
	return func(o *options) {
		o.signal = signal
	}
}

// WithDocument mirrors the theme onto document.
func WithDocument(document theme.Document) Option {
	return func(o *options) {
		o.document = document
	}
}

// WithHooks adds activity hooks. Events are only emitted when activity is
// enabled in config.
func WithHooks(hooks ...activity.ActivityHook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks...)
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPolicy uses policy instead of building one from config.
func WithPolicy(policy *permission.Policy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// Session is one assembled state engine.
type Session struct {
	cfg    config.Config
	logger *slog.Logger

	bridge    *kv.Bridge
	signal    preference.Signal
	document  theme.Document
	emitter   *activity.Emitter
	directory *directory.Directory
	theme     *theme.State
	policy    *permission.Policy

	closers []func() error
	closed  bool
}

// New validates cfg and builds a session. Errors come only from
// misconfiguration or from opening the configured storage or signal.
func New(cfg config.Config, opts ...Option) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	s := &Session{cfg: cfg, logger: o.logger}
	storage, err := s.openStorage(o.storage)
	if err != nil {
		return nil, err
	}
	signal, err := s.openSignal(o.signal)
	if err != nil {
		s.Close()
		return nil, err
	}
	policy := o.policy
	if policy == nil {
		if policy, err = s.buildPolicy(); err != nil {
			s.Close()
			return nil, err
		}
	}

	s.signal = signal
	s.policy = policy
	s.document = o.document
	if s.document == nil {
		s.document = theme.NoopDocument{}
	}
	s.bridge = kv.NewBridge(storage, kv.WithLogger(o.logger))
	s.emitter = activity.NewEmitter(o.hooks,
		activity.Config{Enabled: cfg.Activity.Enabled, Channel: cfg.Activity.Channel},
		activity.WithActor(s.activeID),
		activity.WithLogger(o.logger),
	)
	s.directory = directory.New(s.bridge,
		directory.WithStorageKey(cfg.Storage.UserKey),
		directory.WithEmitter(s.emitter),
		directory.WithLogger(o.logger),
	)
	s.theme = theme.New(s.bridge, signal, s.document,
		theme.WithStorageKey(cfg.Storage.ThemeKey),
		theme.WithAttribute(cfg.Theme.Attribute),
		theme.WithDarkClass(cfg.Theme.DarkClass),
		theme.WithEmitter(s.emitter),
		theme.WithLogger(o.logger),
	)
	s.closers = append([]func() error{func() error {
		s.theme.Close()
		return nil
	}}, s.closers...)

	o.logger.Debug("session: ready",
		"storage", cfg.Storage.Driver,
		"preference", cfg.Preference.Source,
		"theme", s.theme.Current().String(),
		"active_id", s.directory.ActiveID().Get(),
	)
	return s, nil
}

func (s *Session) openStorage(override kv.Storage) (kv.Storage, error) {
	if override != nil {
		return override, nil
	}
	switch s.cfg.Storage.Driver {
	case config.StorageBolt:
		storage, err := boltkv.Open(s.cfg.Storage.Path, boltkv.Options{
			Bucket:  s.cfg.Storage.Bucket,
			Timeout: s.cfg.Storage.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("session: open storage: %w", err)
		}
		s.closers = append(s.closers, storage.Close)
		return storage, nil
	case config.StorageNone:
		return kv.NoopStorage{}, nil
	default:
		return kv.NewMemoryStorage(nil), nil
	}
}

func (s *Session) openSignal(override preference.Signal) (preference.Signal, error) {
	if override != nil {
		return override, nil
	}
	switch s.cfg.Preference.Source {
	case config.PreferenceManual:
		return preference.NewManual(s.cfg.Preference.Dark), nil
	case config.PreferenceFile:
		signal, err := filesignal.New(s.cfg.Preference.Path, filesignal.WithLogger(s.logger))
		if err != nil {
			return nil, fmt.Errorf("session: open preference signal: %w", err)
		}
		s.closers = append(s.closers, signal.Close)
		return signal, nil
	default:
		return preference.Absent{}, nil
	}
}

// buildPolicy only instantiates an evaluator when rules are configured, so
// the js engine is never required by a rule-less config.
func (s *Session) buildPolicy() (*permission.Policy, error) {
	var evaluator permission.Evaluator
	if len(s.cfg.Policy.Rules) > 0 {
		var err error
		evaluator, err = permission.NewEvaluator(s.cfg.Policy.Engine, permission.NewMemoryCache())
		if err != nil {
			return nil, fmt.Errorf("session: %w", err)
		}
	}
	policy, err := permission.NewPolicy(evaluator,
		permission.WithRules(s.cfg.Policy.Rules),
		permission.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	return policy, nil
}

func (s *Session) activeID() string {
	if s.directory == nil {
		return ""
	}
	return s.directory.ActiveID().Get()
}

// Config returns the configuration the session was built from.
func (s *Session) Config() config.Config {
	return s.cfg
}

func (s *Session) Directory() *directory.Directory {
	return s.directory
}

func (s *Session) Theme() *theme.State {
	return s.theme
}

func (s *Session) Policy() *permission.Policy {
	return s.policy
}

func (s *Session) Emitter() *activity.Emitter {
	return s.emitter
}

// Signal returns the platform preference signal. Hosts using the manual
// source drive it through a type assertion to *preference.Manual.
func (s *Session) Signal() preference.Signal {
	return s.signal
}

// Bridge returns the storage bridge shared by the directory and theme.
func (s *Session) Bridge() *kv.Bridge {
	return s.bridge
}

// HasPermission reports whether the active persona holds permission.
func (s *Session) HasPermission(name string) bool {
	return permission.HasPermission(s.directory.ActiveUser().Get(), name)
}

// Can reports whether the active persona may perform action under the policy.
func (s *Session) Can(action string) bool {
	return s.policy.Can(s.directory.ActiveUser().Get(), action)
}

// Reset clears the roster, the selection and the theme pin.
func (s *Session) Reset() {
	s.directory.Reset()
	s.theme.Reset()
}

// Close stops the platform watch and releases storage. It is safe to call
// more than once.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}
