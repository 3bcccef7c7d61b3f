package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-surveywizard/pkg/persistence"
	"github.com/goliatone/go-surveywizard/pkg/renderers/tui"
	"github.com/goliatone/go-surveywizard/pkg/summary"
	"github.com/goliatone/go-surveywizard/pkg/wizard"
)

func (a *app) runCmd() *cobra.Command {
	var sessionID string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fill in a survey interactively in the terminal",
		Long: `Prompts every step of the survey. Progress is saved to the configured
session store after each answer, so an interrupted run resumes where it left
off when started again with the same --session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := loadSchema(a.cfg)
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeStore()
			sink, closeSink, err := openSink(ctx, a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer closeSink()
			renderer, err := summary.New()
			if err != nil {
				return err
			}

			w, err := wizard.New(s,
				wizard.WithStore(persistence.Scope(store, sessionID)),
				wizard.WithSink(sink),
				wizard.WithSummary(renderer),
				wizard.WithLogger(a.logger.With(zap.String("session", sessionID))),
			)
			if err != nil {
				return err
			}
			defer w.Close()

			runner, err := tui.New(tui.WithOutput(cmd.OutOrStdout()), tui.WithLogger(a.logger))
			if err != nil {
				return err
			}
			if _, err := runner.Run(ctx, w); err != nil {
				if errors.Is(err, tui.ErrAborted) {
					fmt.Fprintln(cmd.ErrOrStderr(), "Interrupted; your answers are saved.")
					return nil
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "terminal", "session id used to save and resume progress")
	return cmd
}
