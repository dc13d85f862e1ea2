package main

import (
	"math/rand"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-quality-cli/internal/leadcsv"
	"github.com/sells-group/lead-quality-cli/internal/leadgen"
)

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Generate a synthetic lead export",
	Long:  "Generates a synthetic lead CSV with realistic missing-data patterns, useful for demos and for exercising the scoring pipeline.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetInt64("seed")
		outputPath, _ := cmd.Flags().GetString("output")

		gen := leadgen.New(leadgen.DefaultConfig())
		leads := gen.Generate(count, rand.New(rand.NewSource(seed)))

		out, err := openOutput(outputPath)
		if err != nil {
			return err
		}
		defer out.Close() //nolint:errcheck

		if err := leadcsv.Write(out, leads); err != nil {
			return err
		}

		zap.L().Info("sample generated",
			zap.Int("count", count),
			zap.Int64("seed", seed),
			zap.String("output", outputPath),
		)
		return nil
	},
}

func init() {
	f := sampleCmd.Flags()
	f.Int("count", 100, "number of leads to generate")
	f.Int64("seed", 42, "random seed")
	f.String("output", "", "output file path (default: stdout)")

	rootCmd.AddCommand(sampleCmd)
}
