package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coolbeans/billscan/pkg/article"
	"github.com/coolbeans/billscan/pkg/coderef"
	"github.com/coolbeans/billscan/pkg/complexity"
	"github.com/coolbeans/billscan/pkg/config"
	"github.com/coolbeans/billscan/pkg/consistency"
	"github.com/coolbeans/billscan/pkg/library"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "billscan",
		Short: "Legislative bill structure analyzer",
		Long: `Billscan derives three structural views from the raw text of a
legislative bill:

  - its division into ARTICLE/SECTION blocks
  - the statutory code references it makes, with the edit kind of each
  - an overall complexity classification for downstream routing`,
		Version: version,
	}

	rootCmd.PersistentFlags().String("config", "", "path to a billscan.yaml config file")
	rootCmd.PersistentFlags().Bool("compact", false, "emit compact JSON instead of indented")

	rootCmd.AddCommand(articlesCmd())
	rootCmd.AddCommand(referencesCmd())
	rootCmd.AddCommand(complexityCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(ingestCmd())
	rootCmd.AddCommand(listCmd())
	rootCmd.AddCommand(showCmd())
	rootCmd.AddCommand(removeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func articlesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "articles <file>",
		Short: "Segment a bill into its ARTICLE blocks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(args[0])
			if err != nil {
				return err
			}
			return emit(cmd, article.Parse(text))
		},
	}
}

func referencesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "references <file>",
		Short: "Extract statutory code references from a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(args[0])
			if err != nil {
				return err
			}
			return emit(cmd, coderef.Parse(text))
		},
	}
}

func complexityCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complexity <file>",
		Short: "Classify a bill's structural complexity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(args[0])
			if err != nil {
				return err
			}
			return emit(cmd, complexity.Detect(text))
		},
	}
}

// combinedAnalysis is the shape the presentation layer consumes: all three
// views plus the consistency report, in one document.
type combinedAnalysis struct {
	Articles    []article.Article   `json:"articles"`
	References  []coderef.Reference `json:"references"`
	Complexity  complexity.Result   `json:"complexity"`
	Consistency *consistency.Report `json:"consistency"`
}

func analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run all three analyses plus the consistency gate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(args[0])
			if err != nil {
				return err
			}

			articles := article.Parse(text)
			refs := coderef.Parse(text)
			result := complexity.Detect(text)
			report := consistency.Check(articles, refs, result)

			return emit(cmd, combinedAnalysis{
				Articles:    articles,
				References:  refs,
				Complexity:  result,
				Consistency: report,
			})
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file>",
		Short: "Verify the cross-component consistency contract for a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSource(args[0])
			if err != nil {
				return err
			}

			report := consistency.Check(article.Parse(text), coderef.Parse(text), complexity.Detect(text))
			fmt.Print(report.String())
			if !report.Passed {
				return fmt.Errorf("consistency check failed")
			}
			return nil
		},
	}
}

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Analyze a bill and store the results in the library",
		Long: `Analyze a bill and store the results in the library, replacing any
prior results for the same bill ID.

Example:
  billscan ingest --id HB-1234 hb1234.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			billID, _ := cmd.Flags().GetString("id")
			if billID == "" {
				return fmt.Errorf("--id flag is required")
			}

			text, err := readSource(args[0])
			if err != nil {
				return err
			}

			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}

			entry, err := lib.Ingest(billID, text)
			if err != nil {
				return err
			}
			return emit(cmd, entry)
		},
	}
	cmd.Flags().String("id", "", "bill identifier, e.g. HB-1234")
	return cmd
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List ingested bills",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}
			return emit(cmd, lib.List())
		},
	}
}

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <bill-id>",
		Short: "Show the stored analysis for a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}
			analysis, err := lib.Get(args[0])
			if err != nil {
				return err
			}
			return emit(cmd, analysis)
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <bill-id>",
		Short: "Remove a bill from the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := openLibrary(cmd)
			if err != nil {
				return err
			}
			return lib.Remove(args[0])
		},
	}
}

// readSource reads the bill text from a file path, or from stdin when the
// path is "-".
func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source: %w", err)
	}
	return string(data), nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

func openLibrary(cmd *cobra.Command) (*library.Library, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	return library.OpenOrInit(cfg.Library.Path, logger)
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}

func emit(cmd *cobra.Command, v any) error {
	pretty := true
	if cfg, err := loadConfig(cmd); err == nil {
		pretty = cfg.Output.Pretty
	}
	if compact, _ := cmd.Flags().GetBool("compact"); compact {
		pretty = false
	}

	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to serialize output: %w", err)
	}

	fmt.Println(string(data))
	return nil
}
