package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-paqs-store/config"
	"github.com/goliatone/go-paqs-store/pkg/activity"
	"github.com/goliatone/go-paqs-store/pkg/directory"
	"github.com/goliatone/go-paqs-store/pkg/kv"
	"github.com/goliatone/go-paqs-store/pkg/permission"
	"github.com/goliatone/go-paqs-store/pkg/preference"
	"github.com/goliatone/go-paqs-store/pkg/theme"
)

func roster() []directory.Persona {
	return []directory.Persona{
		{ID: "u1", Name: "Ana", Role: permission.RoleViewer, Permissions: []string{permission.View}},
		{ID: "u2", Name: "Ben", Role: permission.RoleEditor, Permissions: []string{permission.View, permission.Update}},
		{ID: "u4", Name: "Dana", Role: permission.RoleAdmin, Permissions: []string{permission.View, permission.Update, permission.Create, permission.Assign}, IsAdmin: true},
	}
}

func newSession(t *testing.T, cfg config.Config, opts ...Option) *Session {
	t.Helper()
	s, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestDefaultSessionIsInMemory(t *testing.T) {
	doc := theme.NewMemoryDocument()
	s := newSession(t, config.Defaults(), WithDocument(doc))

	if got := s.Theme().Current(); got != theme.Light {
		t.Fatalf("expected light theme, got %q", got)
	}
	if value, _ := doc.Attribute("theme"); value != "light" {
		t.Fatalf("expected document to be mirrored, got %q", value)
	}
	if s.Emitter().Enabled() {
		t.Fatalf("activity should be disabled by default")
	}
	if s.HasPermission(permission.View) {
		t.Fatalf("no active persona means no permissions")
	}
}

func TestSessionPersistsAcrossRestartsWithBolt(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Driver = config.StorageBolt
	cfg.Storage.Path = filepath.Join(t.TempDir(), "paqs.db")

	first, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	first.Directory().SetUsers(roster())
	first.Directory().SetActiveID("u2")
	first.Theme().Toggle()
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second := newSession(t, cfg)
	if got := second.Directory().ActiveID().Get(); got != "u2" {
		t.Fatalf("expected restored active id u2, got %q", got)
	}
	if second.Directory().ActiveUser().Get() != nil {
		t.Fatalf("active persona resolves only once a roster arrives")
	}
	second.Directory().SetUsers(roster())
	if user := second.Directory().ActiveUser().Get(); user == nil || user.Name != "Ben" {
		t.Fatalf("expected Ben after roster load, got %+v", user)
	}
	if !second.Theme().Pinned() || second.Theme().Current() != theme.Dark {
		t.Fatalf("expected pinned dark theme after restart")
	}
}

func TestBoltOpenFailureIsReported(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Driver = config.StorageBolt
	cfg.Storage.Path = filepath.Join(t.TempDir(), "missing", "dir", "paqs.db")

	if _, err := New(cfg); err == nil {
		t.Fatalf("expected bolt open error")
	}
}

func TestManualPreferenceDrivesTheme(t *testing.T) {
	cfg := config.Defaults()
	cfg.Preference.Source = config.PreferenceManual
	cfg.Preference.Dark = true
	s := newSession(t, cfg)

	if got := s.Theme().Current(); got != theme.Dark {
		t.Fatalf("expected dark from manual preference, got %q", got)
	}
	manual, ok := s.Signal().(*preference.Manual)
	if !ok {
		t.Fatalf("expected manual signal, got %T", s.Signal())
	}
	manual.Set(false)
	if got := s.Theme().Current(); got != theme.Light {
		t.Fatalf("expected theme to follow manual signal, got %q", got)
	}
}

func TestFilePreferenceIsReadAtStartup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "color-scheme")
	if err := os.WriteFile(path, []byte("prefer-dark\n"), 0o600); err != nil {
		t.Fatalf("write preference: %v", err)
	}
	cfg := config.Defaults()
	cfg.Preference.Source = config.PreferenceFile
	cfg.Preference.Path = path
	s := newSession(t, cfg)

	if got := s.Theme().Current(); got != theme.Dark {
		t.Fatalf("expected dark from preference file, got %q", got)
	}
	if trace := s.Theme().Trace(); trace.Winner != theme.LayerOS {
		t.Fatalf("expected os layer to win, got %+v", trace)
	}
}

func TestPolicyRulesFromConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Policy.Rules = map[string]string{"manage-users": `isAdmin && hasPermission("assign")`}
	s := newSession(t, cfg)

	s.Directory().SetUsers(roster())
	s.Directory().SetActiveID("u2")
	if s.Can("manage-users") {
		t.Fatalf("editor must not manage users")
	}
	if !s.Can(permission.Update) || !s.HasPermission(permission.Update) {
		t.Fatalf("editor should update")
	}
	s.Directory().SetActiveID("u4")
	if !s.Can("manage-users") {
		t.Fatalf("admin should manage users")
	}
}

func TestInvalidPolicyRuleFailsConstruction(t *testing.T) {
	cfg := config.Defaults()
	cfg.Policy.Engine = "cel"
	cfg.Policy.Rules = map[string]string{"edit": "role"}
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected invalid rule error")
	}

	if !permission.JSAvailable() {
		cfg.Policy.Engine = "js"
		cfg.Policy.Rules = map[string]string{"edit": "isAdmin"}
		if _, err := New(cfg); !errors.Is(err, permission.ErrNoEvaluator) {
			t.Fatalf("expected ErrNoEvaluator, got %v", err)
		}
	}
}

func TestInvalidConfigIsRejected(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Driver = "s3"
	if _, err := New(cfg); !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestActivityEventsCarryActiveActor(t *testing.T) {
	cfg := config.Defaults()
	cfg.Activity.Enabled = true
	capture := &activity.CaptureHook{}
	s := newSession(t, cfg, WithHooks(capture))

	s.Directory().SetUsers(roster())
	s.Directory().SetActiveID("u1")
	s.Theme().Toggle()

	events := capture.Events
	if len(events) != 3 {
		t.Fatalf("expected 3 events, got %v", capture.Verbs())
	}
	last := events[2]
	if last.Verb != activity.VerbThemeChanged || last.ActorID != "u1" {
		t.Fatalf("unexpected theme event %+v", last)
	}
	if last.Channel != "paqs" {
		t.Fatalf("expected default channel, got %q", last.Channel)
	}
}

func TestResetClearsSelectionAndPin(t *testing.T) {
	storage := kv.NewMemoryStorage(nil)
	s := newSession(t, config.Defaults(), WithStorage(storage))

	s.Directory().SetUsers(roster())
	s.Directory().SetActiveID("u1")
	s.Theme().Toggle()
	s.Reset()

	if got := s.Directory().ActiveID().Get(); got != "" {
		t.Fatalf("expected no active id after reset, got %q", got)
	}
	if len(s.Directory().Users().Get()) != 0 {
		t.Fatalf("expected empty roster after reset")
	}
	if s.Theme().Pinned() || s.Theme().Current() != theme.Light {
		t.Fatalf("expected unpinned light theme after reset")
	}
	if snapshot := storage.Snapshot(); len(snapshot) != 0 {
		t.Fatalf("expected storage to be empty, got %v", snapshot)
	}
}

func TestStorageNoneKeepsStateInMemory(t *testing.T) {
	cfg := config.Defaults()
	cfg.Storage.Driver = config.StorageNone
	s := newSession(t, cfg)

	s.Directory().SetUsers(roster())
	s.Directory().SetActiveID("u2")
	if got := s.Directory().ActiveUser().Get(); got == nil || got.ID != "u2" {
		t.Fatalf("expected u2 to be active, got %+v", got)
	}
	if _, ok := s.Bridge().Read(config.Defaults().Storage.UserKey); ok {
		t.Fatalf("none driver must not persist")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	signal := preference.NewManual(false)
	s, err := New(config.Defaults(), WithSignal(signal))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if signal.Watchers() != 0 {
		t.Fatalf("expected theme watch to be released")
	}
}
