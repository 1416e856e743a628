package activity

import (
	"context"
	"log/slog"
	"strings"
)

// DefaultChannel is applied to events emitted without a channel.
const DefaultChannel = "paqs"

// Config controls emission defaults supplied by configuration.
type Config struct {
	Enabled bool
	Channel string
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithActor resolves the actor for events that do not carry one, typically
// the currently active persona id.
func WithActor(actor func() string) EmitterOption {
	return func(e *Emitter) {
		e.actor = actor
	}
}

// WithLogger sets the logger that receives hook failures.
func WithLogger(logger *slog.Logger) EmitterOption {
	return func(e *Emitter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Emitter fans out events to hooks while applying defaults. State stores call
// Publish, which never fails: hook errors are logged and dropped.
type Emitter struct {
	hooks   Hooks
	enabled bool
	channel string
	actor   func() string
	logger  *slog.Logger
}

// NewEmitter constructs an emitter from hooks and configuration.
func NewEmitter(hooks Hooks, cfg Config, opts ...EmitterOption) *Emitter {
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = DefaultChannel
	}
	normalized := cloneHooks(hooks)
	e := &Emitter{
		hooks:   normalized,
		enabled: cfg.Enabled && len(normalized) > 0,
		channel: channel,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Enabled reports whether emissions should be attempted.
func (e *Emitter) Enabled() bool {
	return e != nil && e.enabled && len(e.hooks) > 0
}

// Emit forwards event to all hooks, applying the default channel and actor.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	if strings.TrimSpace(event.ActorID) == "" && e.actor != nil {
		event.ActorID = e.actor()
	}
	return e.hooks.Notify(ctx, event)
}

// Publish emits event and logs instead of returning hook failures.
func (e *Emitter) Publish(event Event) {
	if !e.Enabled() {
		return
	}
	if err := e.Emit(context.Background(), event); err != nil {
		e.logger.Warn("activity: hook failed", "verb", event.Verb, "object_id", event.ObjectID, "error", err)
	}
}

func cloneHooks(hooks Hooks) Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	return Hooks(normalized)
}
