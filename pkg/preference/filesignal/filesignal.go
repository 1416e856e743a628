// Package filesignal implements preference.Signal by watching a small text
// file that holds the desktop color scheme ("dark" or "light"). Hosts without
// a native color-scheme API (kiosks, CLIs, headless test rigs) point a
// settings daemon or a shell hook at the file.
package filesignal

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/goliatone/go-paqs-store/pkg/preference"
)

// Option configures a Signal.
type Option func(*Signal)

// WithLogger sets the logger used for watcher errors.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Signal) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Signal watches path and reports its scheme.
type Signal struct {
	path    string
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	mu       sync.Mutex
	dark     bool
	known    bool
	nextID   int
	watchers map[int]func(bool)
	order    []int

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

var _ preference.Signal = (*Signal)(nil)

// New reads path once and starts watching its directory. The file does not
// have to exist yet; the directory does.
func New(path string, opts ...Option) (*Signal, error) {
	if path == "" {
		return nil, errors.New("filesignal: path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("filesignal: resolve %q: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filesignal: watcher: %w", err)
	}
	// Watching the parent directory survives editors and daemons that replace
	// the file atomically.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("filesignal: watch %q: %w", filepath.Dir(abs), err)
	}

	s := &Signal{
		path:     abs,
		watcher:  watcher,
		logger:   slog.New(slog.DiscardHandler),
		watchers: map[int]func(bool){},
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.dark, s.known = s.read()

	s.wg.Add(1)
	go s.loop()
	return s, nil
}

// PrefersDark implements preference.Signal.
func (s *Signal) PrefersDark() (bool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dark, s.known
}

// Watch implements preference.Signal. Callbacks run on the watcher goroutine.
func (s *Signal) Watch(fn func(bool)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.watchers[id] = fn
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.watchers, id)
			s.order = slices.DeleteFunc(s.order, func(candidate int) bool { return candidate == id })
			s.mu.Unlock()
		})
	}
}

// Close stops the watcher goroutine. It is safe to call more than once.
func (s *Signal) Close() error {
	var err error
	s.stopOnce.Do(func() {
		close(s.done)
		err = s.watcher.Close()
		s.wg.Wait()
	})
	return err
}

func (s *Signal) loop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			s.refresh()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warn("filesignal: watcher error", "path", s.path, "error", err)
		}
	}
}

// refresh re-reads the file and notifies watchers when the effective
// preference flips. An unreadable or malformed file counts as light.
func (s *Signal) refresh() {
	dark, known := s.read()

	s.mu.Lock()
	before := s.known && s.dark
	s.dark, s.known = dark, known
	after := known && dark
	if before == after {
		s.mu.Unlock()
		return
	}
	fns := make([]func(bool), 0, len(s.order))
	for _, id := range s.order {
		if fn, ok := s.watchers[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	s.logger.Debug("filesignal: preference changed", "path", s.path, "dark", after)
	for _, fn := range fns {
		fn(after)
	}
}

func (s *Signal) read() (bool, bool) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("filesignal: read failed", "path", s.path, "error", err)
		}
		return false, false
	}
	return preference.ParseScheme(string(raw))
}
