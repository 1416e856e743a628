package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-paqs-store/pkg/session"
	"github.com/goliatone/go-paqs-store/pkg/theme"
)

func (a *app) themeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "theme",
		Short: "Show or change the theme",
	}

	var trace bool
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the current theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session.Session, doc *theme.MemoryDocument) error {
				if err := printTheme(cmd, s, doc); err != nil {
					return err
				}
				if !trace {
					return nil
				}
				payload, err := s.Theme().Trace().ToJSON()
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(payload))
				return err
			})
		},
	}
	show.Flags().BoolVar(&trace, "trace", false, "print the resolution trace as JSON")

	toggle := &cobra.Command{
		Use:   "toggle",
		Short: "Flip the theme and pin it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session.Session, doc *theme.MemoryDocument) error {
				s.Theme().Toggle()
				return printTheme(cmd, s, doc)
			})
		},
	}

	set := &cobra.Command{
		Use:       "set <light|dark>",
		Short:     "Pin a theme",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(theme.Light), string(theme.Dark)},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok := theme.Parse(args[0])
			if !ok {
				return fmt.Errorf("unknown theme %q", args[0])
			}
			return a.withSession(func(s *session.Session, doc *theme.MemoryDocument) error {
				s.Theme().Set(value)
				return printTheme(cmd, s, doc)
			})
		},
	}

	follow := &cobra.Command{
		Use:   "follow-system",
		Short: "Drop the pin and follow the platform preference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session.Session, doc *theme.MemoryDocument) error {
				s.Theme().FollowSystem()
				return printTheme(cmd, s, doc)
			})
		},
	}

	cmd.AddCommand(show, toggle, set, follow)
	return cmd
}

func printTheme(cmd *cobra.Command, s *session.Session, doc *theme.MemoryDocument) error {
	state := s.Theme()
	cfg := s.Config().Theme
	pin := "following system"
	if state.Pinned() {
		pin = "pinned"
	}
	attribute, _ := doc.Attribute(cfg.Attribute)
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "theme %s (%s) %s=%s %s=%t\n",
		state.Current(), pin, cfg.Attribute, attribute, cfg.DarkClass, doc.HasClass(cfg.DarkClass))
	return err
}
