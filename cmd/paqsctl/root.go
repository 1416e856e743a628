package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-paqs-store/config"
	"github.com/goliatone/go-paqs-store/pkg/activity"
	"github.com/goliatone/go-paqs-store/pkg/session"
	"github.com/goliatone/go-paqs-store/pkg/theme"
)

type app struct {
	out    io.Writer
	errOut io.Writer

	configPath string
	dbPath     string
	rosterPath string
	events     bool
}

func newRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "paqsctl",
		Short:         "Inspect and drive paqs persona and theme state",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (.toml, .yaml)")
	flags.StringVar(&a.dbPath, "db", "", "bbolt state file; selects the bolt storage driver")
	flags.StringVar(&a.rosterPath, "roster", "", "JSON roster file; defaults to the built-in demo roster")
	flags.BoolVar(&a.events, "events", false, "print activity events to stderr")

	root.AddCommand(
		a.usersCommand(),
		a.themeCommand(),
		a.canCommand(),
		a.resetCommand(),
	)
	return root
}

// open loads configuration, builds a session and feeds it the roster. The
// caller must Close the returned session.
func (a *app) open() (*session.Session, *theme.MemoryDocument, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, nil, err
	}
	if a.dbPath != "" {
		cfg.Storage.Driver = config.StorageBolt
		cfg.Storage.Path = a.dbPath
	}
	logger, err := config.NewLogger(a.errOut, cfg.Log)
	if err != nil {
		return nil, nil, err
	}

	doc := theme.NewMemoryDocument()
	opts := []session.Option{
		session.WithLogger(logger),
		session.WithDocument(doc),
	}
	if a.events {
		cfg.Activity.Enabled = true
		opts = append(opts, session.WithHooks(activity.HookFunc(a.printEvent)))
	}

	s, err := session.New(cfg, opts...)
	if err != nil {
		return nil, nil, err
	}
	roster, err := loadRoster(a.rosterPath)
	if err != nil {
		s.Close()
		return nil, nil, err
	}
	s.Directory().SetUsers(roster)
	return s, doc, nil
}

func (a *app) printEvent(_ context.Context, event activity.Event) error {
	_, err := fmt.Fprintf(a.errOut, "event %s %s/%s actor=%q\n", event.Verb, event.ObjectType, event.ObjectID, event.ActorID)
	return err
}

func (a *app) withSession(fn func(*session.Session, *theme.MemoryDocument) error) error {
	s, doc, err := a.open()
	if err != nil {
		return err
	}
	runErr := fn(s, doc)
	closeErr := s.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}
