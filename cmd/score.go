package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-quality-cli/internal/leadcsv"
	"github.com/sells-group/lead-quality-cli/internal/model"
)

var scoreCmd = &cobra.Command{
	Use:   "score <leads.csv>",
	Short: "Score a lead export with the quality model",
	Long: `Reads a lead CSV export, derives quality features, trains the random
forest on rule-based labels, and prints every lead with its score and
category.

Examples:
  # Score a CSV and print a table
  lead-quality-cli score data/sample_leads.csv

  # Write scored leads to a spreadsheet
  lead-quality-cli score leads.csv --format xlsx --output scored.xlsx

  # Reproduce a previous run and persist it
  lead-quality-cli score leads.csv --seed 42 --save`,
	Args: cobra.ExactArgs(1),
	RunE: runScoreCmd,
}

func init() {
	f := scoreCmd.Flags()
	f.Int64("seed", 0, "random seed (overrides config)")
	f.String("format", "table", "output format: table, csv, or xlsx")
	f.String("output", "", "output file path (default: stdout)")
	f.Bool("save", false, "persist the run to the configured store")

	rootCmd.AddCommand(scoreCmd)
}

func runScoreCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")
	save, _ := cmd.Flags().GetBool("save")

	if format != "table" && format != "csv" && format != "xlsx" {
		return eris.Errorf("score: --format must be table, csv, or xlsx (got %q)", format)
	}

	modelCfg := cfg.Model
	if cmd.Flags().Changed("seed") {
		modelCfg.Seed, _ = cmd.Flags().GetInt64("seed")
	}

	log := zap.L().With(zap.String("command", "score"))

	leads, err := leadcsv.ReadFile(args[0])
	if err != nil {
		return err
	}
	log.Info("loaded leads", zap.String("file", args[0]), zap.Int("count", len(leads)))

	result, err := scoreLeads(leads, cfg.Feature, modelCfg)
	if err != nil {
		return err
	}
	log.Info("scoring complete",
		zap.Int("leads", len(result.Leads)),
		zap.Float64("test_accuracy", result.Stats.TestAccuracy),
	)

	if save {
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		run := &model.Run{
			Source:     args[0],
			Stats:      result.Stats,
			Importance: result.Importance,
		}
		if err := st.SaveRun(ctx, run, result.Leads); err != nil {
			return err
		}
		log.Info("run saved", zap.String("run_id", run.ID))
	}

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close() //nolint:errcheck

	return writeScored(out, result, format)
}
