package main

import (
	"encoding/json"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-quality-cli/internal/export"
	"github.com/sells-group/lead-quality-cli/internal/leadcsv"
)

// exportDocument bundles everything the CRM import needs.
type exportDocument struct {
	Import    export.ImportPayload `json:"hubspot_import" yaml:"hubspot_import"`
	Workflows []export.Workflow    `json:"workflows" yaml:"workflows"`
	Tasks     []export.Task        `json:"tasks" yaml:"tasks"`
}

var exportCmd = &cobra.Command{
	Use:   "export <leads.csv>",
	Short: "Score leads and build a HubSpot import document",
	Long: `Runs the scoring pipeline over a lead CSV and renders the HubSpot
import payload: formatted contacts, recommended workflows, and
prioritized sales tasks.

Examples:
  # Print the import document as JSON
  lead-quality-cli export leads.csv

  # Write it as YAML
  lead-quality-cli export leads.csv --format yaml --output import.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runExportCmd,
}

func init() {
	f := exportCmd.Flags()
	f.Int64("seed", 0, "random seed (overrides config)")
	f.String("format", "json", "output format: json or yaml")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(exportCmd)
}

func runExportCmd(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outputPath, _ := cmd.Flags().GetString("output")

	if format != "json" && format != "yaml" {
		return eris.Errorf("export: --format must be json or yaml (got %q)", format)
	}

	modelCfg := cfg.Model
	if cmd.Flags().Changed("seed") {
		modelCfg.Seed, _ = cmd.Flags().GetInt64("seed")
	}

	leads, err := leadcsv.ReadFile(args[0])
	if err != nil {
		return err
	}

	result, err := scoreLeads(leads, cfg.Feature, modelCfg)
	if err != nil {
		return err
	}

	formatter := export.New(cfg.Export)
	doc := exportDocument{
		Import:    formatter.FormatContacts(result.Leads),
		Workflows: formatter.RecommendWorkflows(result.Leads),
		Tasks:     formatter.SalesTasks(result.Leads),
	}

	zap.L().Info("export built",
		zap.Int("contacts", len(doc.Import.Contacts)),
		zap.Int("workflows", len(doc.Workflows)),
		zap.Int("tasks", len(doc.Tasks)),
	)

	out, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer out.Close() //nolint:errcheck

	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(doc), "export: encode json")
	default:
		return eris.Wrap(yaml.NewEncoder(out).Encode(doc), "export: encode yaml")
	}
}
