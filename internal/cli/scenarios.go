package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-surveywizard/pkg/scenarios"
)

func (a *app) scenariosCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List and search survey scenarios",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			items, err := newScenarioService(a.cfg, a.logger).List(cmd.Context())
			if err != nil {
				return err
			}
			return printScenarios(cmd.OutOrStdout(), items)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "search [term]",
		Short: "Search scenarios by name",
		Long: `Searches scenario names case-insensitively. Without a term, each line read
from stdin is treated as the search box contents; only the result for the
last line typed within the debounce window is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc := newScenarioService(a.cfg, a.logger)
			if len(args) == 1 {
				items, err := svc.Search(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printScenarios(cmd.OutOrStdout(), items)
			}
			return liveSearch(cmd.Context(), svc.NewLiveSearch(a.cfg.Scenarios.Debounce), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	})
	return cmd
}

// liveSearch feeds lines from in to ls and prints results until in is
// exhausted and the result for the final line has arrived.
func liveSearch(ctx context.Context, ls *scenarios.LiveSearch, in io.Reader, out io.Writer) error {
	defer ls.Close()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-ctx.Done():
				return
			}
		}
	}()

	var (
		src     <-chan string = lines
		last    string
		pending bool
	)
	for {
		if !pending && src == nil {
			return nil
		}
		select {
		case line, ok := <-src:
			if !ok {
				src = nil
				continue
			}
			last, pending = line, true
			ls.Input(line)
		case res := <-ls.Results():
			if res.Err != nil {
				return res.Err
			}
			fmt.Fprintf(out, "search %q:\n", res.Term)
			if err := printScenarios(out, res.Scenarios); err != nil {
				return err
			}
			if res.Term == last {
				pending = false
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func printScenarios(out io.Writer, items []scenarios.Scenario) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tRESPONDENTS\tSCORE RANGE")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", item.ID, item.Name, item.Respondents, item.ScoreRange)
	}
	return tw.Flush()
}
