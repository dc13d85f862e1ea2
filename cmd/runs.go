package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-quality-cli/internal/model"
	"github.com/sells-group/lead-quality-cli/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect scoring run history",
	Long:  "Commands for listing and viewing persisted scoring runs.",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scoring runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		source, _ := cmd.Flags().GetString("source")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := st.ListRuns(ctx, store.RunFilter{Source: source, Limit: limit})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show full details of a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}

		withLeads, _ := cmd.Flags().GetBool("leads")

		doc := struct {
			Run   *model.Run         `json:"run"`
			Leads []model.ScoredLead `json:"leads,omitempty"`
		}{Run: run}

		if withLeads {
			leads, err := st.GetRunLeads(ctx, run.ID)
			if err != nil {
				return eris.Wrap(err, "runs show")
			}
			doc.Leads = leads
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	},
}

func formatRunsList(w io.Writer, runs []model.Run) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSOURCE\tLEADS\tTEST ACC\tCREATED")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.1f%%\t%s\n",
			run.ID,
			run.Source,
			run.LeadCount,
			run.Stats.TestAccuracy*100,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
		)
	}
	tw.Flush() //nolint:errcheck
}

func init() {
	runsListCmd.Flags().String("source", "", "filter by source file")
	runsListCmd.Flags().Int("limit", 20, "maximum runs to list")
	runsShowCmd.Flags().Bool("leads", false, "include the scored leads")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
