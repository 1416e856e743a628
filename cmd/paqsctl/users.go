package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-paqs-store/pkg/session"
	"github.com/goliatone/go-paqs-store/pkg/theme"
)

func (a *app) usersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List and select personas",
	}

	var manageable bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List the roster, marking the active persona",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session.Session, _ *theme.MemoryDocument) error {
				users := s.Directory().Users().Get()
				if manageable {
					users = s.Directory().ManageableUsers().Get()
				}
				activeID := s.Directory().ActiveID().Get()

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "\tID\tNAME\tROLE\tPERMISSIONS\tADMIN")
				for _, user := range users {
					marker := ""
					if user.ID == activeID {
						marker = "*"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%t\n",
						marker, user.ID, user.Name, user.Role, strings.Join(user.Permissions, ","), user.IsAdmin)
				}
				return w.Flush()
			})
		},
	}
	list.Flags().BoolVar(&manageable, "manageable", false, "only list personas without admin rights")

	selectCmd := &cobra.Command{
		Use:   "select <id>",
		Short: "Select the active persona",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withSession(func(s *session.Session, _ *theme.MemoryDocument) error {
				s.Directory().SetActiveID(args[0])
				user := s.Directory().ActiveUser().Get()
				if user == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "selected %s (not in roster)\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "selected %s (%s, %s)\n", user.ID, user.Name, user.Role)
				return nil
			})
		},
	}

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the active persona",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session.Session, _ *theme.MemoryDocument) error {
				s.Directory().ClearActive()
				fmt.Fprintln(cmd.OutOrStdout(), "no active persona")
				return nil
			})
		},
	}

	active := &cobra.Command{
		Use:   "active",
		Short: "Show the active persona",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session.Session, _ *theme.MemoryDocument) error {
				user := s.Directory().ActiveUser().Get()
				if user == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "no active persona")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %s)\n", user.ID, user.Name, user.Role)
				return nil
			})
		},
	}

	cmd.AddCommand(list, selectCmd, clearCmd, active)
	return cmd
}
