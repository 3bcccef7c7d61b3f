package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-surveywizard/pkg/navigation"
	"github.com/goliatone/go-surveywizard/pkg/schema"
)

func (a *app) schemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Inspect survey schemas",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "lint [paths...]",
		Short: "Report every problem in survey schema files",
		Long: `Lints each file and prints one violation per line. Without paths the
configured schema.path is linted, or the embedded survey when none is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			paths := args
			if len(paths) == 0 && a.cfg.Schema.Path != "" {
				paths = []string{a.cfg.Schema.Path}
			}
			if len(paths) == 0 {
				if _, err := schema.Default(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "embedded schema: ok")
				return nil
			}

			total := 0
			for _, path := range paths {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				violations, err := schema.Lint(raw, path)
				if err != nil {
					return fmt.Errorf("lint %s: %w", path, err)
				}
				if len(violations) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
					continue
				}
				fmt.Fprint(cmd.ErrOrStderr(), schema.FormatViolations(path, violations))
				total += len(violations)
			}
			if total > 0 {
				return fmt.Errorf("schema lint: %d violation(s)", total)
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "steps",
		Short: "Print the wizard steps and their guards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := loadSchema(a.cfg)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "#\tLABEL\tROUTE\tGROUP\tGUARD")
			for _, step := range navigation.Steps(s) {
				guard := step.Guard
				if guard == "" {
					guard = "-"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", step.Index+1, step.Label, step.Location(s.Root), step.Group, guard)
			}
			return tw.Flush()
		},
	})
	return cmd
}
