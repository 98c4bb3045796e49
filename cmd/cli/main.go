package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"goinsight/adapters/excel"
	"goinsight/adapters/memory"
	"goinsight/adapters/postgres"
	"goinsight/adapters/report"
	"goinsight/domain/core"
	"goinsight/domain/dataset"
	"goinsight/domain/insight"
	"goinsight/internal/config"
	apperrors "goinsight/internal/errors"
	"goinsight/internal/extractor"
	"goinsight/internal/testkit"
	"goinsight/ports"
)

func main() {
	// Missing .env is fine; environment variables still apply.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "goinsight",
		Short: "Insight extraction engine over tabular data",
	}

	rootCmd.AddCommand(
		newExtractCmd(),
		newCausalityCmd(),
		newPredictCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newExtractCmd() *cobra.Command {
	var inputPath string
	var format string
	var seed int64

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Run the full extraction pipeline over a data file",
		Long: `Run pattern analysis, insight generation, synthesis, and validation
over an Excel or CSV file and print the accepted insights.

Example: goinsight extract --input metrics.xlsx --format markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadData(inputPath, seed)
			if err != nil {
				return err
			}
			ext, err := buildExtractor()
			if err != nil {
				return err
			}

			rep, err := ext.ExtractInsights(cmd.Context(), data)
			if err != nil {
				return err
			}
			return writeReport(rep, format)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to an .xlsx or .csv file (omit for a synthetic demo dataset)")
	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown, html, or json")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the synthetic demo dataset")
	return cmd
}

func newCausalityCmd() *cobra.Command {
	var inputPath string
	var seed int64

	cmd := &cobra.Command{
		Use:   "causality",
		Short: "Discover causal structure in a data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadData(inputPath, seed)
			if err != nil {
				return err
			}
			ext, err := buildExtractor()
			if err != nil {
				return err
			}

			insights, err := ext.DiscoverCausality(cmd.Context(), data)
			if err != nil {
				return err
			}
			fmt.Print(report.NewRenderer().CausalMarkdown(insights))
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to an .xlsx or .csv file (omit for a synthetic demo dataset)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the synthetic demo dataset")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var inputPath string
	var targets string
	var horizon int
	var seed int64

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Forecast target variables from a data file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := loadData(inputPath, seed)
			if err != nil {
				return err
			}
			ext, err := buildExtractor()
			if err != nil {
				return err
			}

			pctx := insight.PredictionContext{Horizon: horizon}
			if targets != "" {
				for _, t := range strings.Split(targets, ",") {
					pctx.TargetVariables = append(pctx.TargetVariables, core.VariableKey(strings.TrimSpace(t)))
				}
			}

			predictions, err := ext.GeneratePredictions(cmd.Context(), data, pctx)
			if err != nil {
				return err
			}
			for _, p := range predictions {
				fmt.Printf("%s: %.3f in %d steps [%.3f, %.3f] (%s, confidence %.2f)\n",
					p.TargetVariable, p.Predicted, p.Horizon, p.Interval[0], p.Interval[1], p.Model, p.Confidence)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to an .xlsx or .csv file (omit for a synthetic demo dataset)")
	cmd.Flags().StringVar(&targets, "targets", "", "Comma-separated variable keys (empty = all)")
	cmd.Flags().IntVar(&horizon, "horizon", 1, "Forecast horizon in steps")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the synthetic demo dataset")
	return cmd
}

// loadData reads the input file, or generates a demo dataset when no
// input is given.
func loadData(inputPath string, seed int64) (*dataset.ProcessedData, error) {
	if inputPath == "" {
		gen := testkit.New(seed)
		return gen.ConfoundedChain(120, 0.5), nil
	}
	return excel.NewDataReader(inputPath).ReadData()
}

// buildExtractor wires the engine with a Postgres repository when
// DATABASE_URL is set, in-memory collaborators otherwise.
func buildExtractor() (*extractor.Extractor, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	var repo ports.InsightRepository = memory.NewInsightRepository()
	if url := os.Getenv("DATABASE_URL"); url != "" {
		db, err := sqlx.Connect("postgres", url)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to connect to database")
		}
		repo = postgres.NewInsightRepository(db)
	}

	return extractor.New(&cfg, repo, memory.NewEMAMetaLearner())
}

func writeReport(rep *extractor.ExtractionReport, format string) error {
	renderer := report.NewRenderer()
	switch format {
	case "markdown":
		fmt.Print(renderer.Markdown(rep))
	case "html":
		os.Stdout.Write(renderer.HTML(rep))
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	default:
		return apperrors.InvalidInput(fmt.Sprintf("unknown format: %s", format))
	}
	return nil
}
