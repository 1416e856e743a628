package activity

import "strings"

// Verbs emitted by the state stores.
const (
	VerbRosterReplaced  = "roster.replaced"
	VerbPersonaUpdated  = "persona.updated"
	VerbPersonaSelected = "persona.selected"
	VerbPersonaCleared  = "persona.cleared"
	VerbThemeChanged    = "theme.changed"
)

// Object types.
const (
	ObjectRoster  = "roster"
	ObjectPersona = "persona"
	ObjectTheme   = "theme"
)

// RosterInput describes a roster replacement.
type RosterInput struct {
	IDs        []string
	ActiveID   string
	PreviousID string
}

// BuildRosterReplacedEvent reports a roster replacement and how the active
// persona was reconciled.
func BuildRosterReplacedEvent(input RosterInput) Event {
	metadata := map[string]any{
		"count": len(input.IDs),
		"ids":   append([]string{}, input.IDs...),
	}
	if input.ActiveID != "" {
		metadata["active_id"] = input.ActiveID
	}
	if input.PreviousID != "" && input.PreviousID != input.ActiveID {
		metadata["dropped_active_id"] = input.PreviousID
	}
	return Event{
		Verb:       VerbRosterReplaced,
		ObjectType: ObjectRoster,
		ObjectID:   ObjectRoster,
		Metadata:   metadata,
	}
}

// BuildPersonaUpdatedEvent reports an in-place persona replacement.
func BuildPersonaUpdatedEvent(personaID string) Event {
	return Event{
		Verb:       VerbPersonaUpdated,
		ObjectType: ObjectPersona,
		ObjectID:   fallback(personaID, ObjectPersona),
	}
}

// BuildPersonaSelectedEvent reports a new active persona id. The selected
// persona is also the actor.
func BuildPersonaSelectedEvent(id, previousID string) Event {
	event := Event{
		Verb:       VerbPersonaSelected,
		ActorID:    id,
		ObjectType: ObjectPersona,
		ObjectID:   fallback(id, ObjectPersona),
	}
	if previousID != "" {
		event.Metadata = map[string]any{"previous_id": previousID}
	}
	return event
}

// BuildPersonaClearedEvent reports that no persona is active anymore. reason
// is one of "explicit", "stale" or "reset".
func BuildPersonaClearedEvent(previousID, reason string) Event {
	event := Event{
		Verb:       VerbPersonaCleared,
		ObjectType: ObjectPersona,
		ObjectID:   fallback(previousID, ObjectPersona),
		Metadata:   map[string]any{},
	}
	if reason != "" {
		event.Metadata["reason"] = reason
	}
	if previousID != "" {
		event.Metadata["previous_id"] = previousID
	}
	return event
}

// ThemeInput describes a theme transition.
type ThemeInput struct {
	From   string
	To     string
	Source string
	Pinned bool
}

// BuildThemeChangedEvent reports a theme transition.
func BuildThemeChangedEvent(input ThemeInput) Event {
	metadata := map[string]any{
		"pinned": input.Pinned,
	}
	if input.From != "" {
		metadata["old_value"] = input.From
	}
	if input.Source != "" {
		metadata["source"] = input.Source
	}
	return Event{
		Verb:       VerbThemeChanged,
		ObjectType: ObjectTheme,
		ObjectID:   fallback(input.To, ObjectTheme),
		Metadata:   metadata,
	}
}

func fallback(value, alt string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return alt
}
