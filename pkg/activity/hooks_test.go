package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " persona.selected ",
		ActorID:    " u1 ",
		ObjectType: " persona ",
		ObjectID:   " u1 ",
		Channel:    " paqs ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "persona.selected" || got.ObjectType != "persona" || got.ObjectID != "u1" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "u1" || got.Channel != "paqs" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() {
		t.Fatalf("expected OccurredAt to be set")
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestHooksNotifyShortCircuitsMissingRequired(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	if err := hooks.Notify(context.Background(), Event{Verb: "theme.changed"}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, BuildPersonaUpdatedEvent("u1"))
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	disabled.Publish(BuildThemeChangedEvent(ThemeInput{To: "dark"}))
	if len(capture.Events) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true}, WithActor(func() string { return "u7" }))
	enabled.Publish(BuildThemeChangedEvent(ThemeInput{To: "dark", Source: "toggle", Pinned: true}))
	if len(capture.Events) != 1 {
		t.Fatalf("expected one event captured, got %d", len(capture.Events))
	}
	got := capture.Events[0]
	if got.Channel != DefaultChannel || got.ActorID != "u7" {
		t.Fatalf("expected defaults applied, got channel=%q actor=%q", got.Channel, got.ActorID)
	}
}

func TestEmitterPreservesExplicitFields(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "default"}, WithActor(func() string { return "ignored" }))

	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	event := BuildPersonaSelectedEvent("u2", "u1")
	event.Channel = "custom"
	event.OccurredAt = at
	if err := emitter.Emit(context.Background(), event); err != nil {
		t.Fatalf("emit: %v", err)
	}

	got := capture.Events[0]
	if got.Channel != "custom" || got.ActorID != "u2" || !got.OccurredAt.Equal(at) {
		t.Fatalf("expected explicit fields preserved, got %+v", got)
	}
	if got.Metadata["previous_id"] != "u1" {
		t.Fatalf("expected previous id metadata, got %v", got.Metadata)
	}
}

func TestPublishSwallowsHookErrors(t *testing.T) {
	capture := &CaptureHook{Err: errors.New("sink down")}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true})
	emitter.Publish(BuildPersonaClearedEvent("u1", "stale"))
	if len(capture.Events) != 1 {
		t.Fatalf("expected event delivered despite error, got %d", len(capture.Events))
	}
}
