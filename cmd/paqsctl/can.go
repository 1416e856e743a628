package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-paqs-store/pkg/permission"
	"github.com/goliatone/go-paqs-store/pkg/session"
	"github.com/goliatone/go-paqs-store/pkg/theme"
)

func (a *app) canCommand() *cobra.Command {
	var (
		rule   string
		engine string
	)
	cmd := &cobra.Command{
		Use:   "can <action>",
		Short: "Check whether the active persona may perform an action",
		Long: "Without --rule the action is checked against the configured policy, " +
			"which falls back to plain permission membership.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action := args[0]
			return a.withSession(func(s *session.Session, _ *theme.MemoryDocument) error {
				user := s.Directory().ActiveUser().Get()
				allowed := s.Can(action)
				if rule != "" {
					evaluator, err := permission.NewEvaluator(engine, nil)
					if err != nil {
						return err
					}
					policy, err := permission.NewPolicy(evaluator, permission.WithRules(map[string]string{action: rule}))
					if err != nil {
						return err
					}
					allowed = policy.Can(user, action)
				}

				who := "no active persona"
				if user != nil {
					who = user.ID
				}
				verdict := "denied"
				if allowed {
					verdict = "allowed"
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s: %s for %s\n", action, verdict, who)
				return err
			})
		},
	}
	cmd.Flags().StringVar(&rule, "rule", "", "ad hoc rule expression for the action")
	cmd.Flags().StringVar(&engine, "engine", permission.EngineExpr, "rule engine: expr, cel or js")
	return cmd
}

func (a *app) resetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the selection and the theme pin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(func(s *session.Session, _ *theme.MemoryDocument) error {
				s.Reset()
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "state reset")
				return err
			})
		},
	}
}
