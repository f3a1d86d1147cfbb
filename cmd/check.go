package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/modernlint/loopconv/convert"
	"github.com/modernlint/loopconv/formatter"
	"github.com/modernlint/loopconv/internal"
	tt "github.com/modernlint/loopconv/internal/types"
)

var (
	checkJsonOutput bool
	outPath         string
	minConfidence   string
)

var checkCmd = &cobra.Command{
	Use:   "check [paths...]",
	Short: "Report convertible loops without modifying files",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine := newEngine()
		runCheck(ctx, logger, engine, args, checkJsonOutput, outPath)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&checkJsonOutput, "json", false, "Output issues in JSON format")
	checkCmd.Flags().StringVarP(&outPath, "output", "o", "", "Output path (when using JSON)")
	checkCmd.Flags().StringVar(&minConfidence, "min-confidence", "", "Lowest confidence tier to convert: risky, reasonable, or safe")
}

// newEngine builds an engine from the configuration file, with flag
// overrides applied on top.
func newEngine() *internal.Engine {
	config, err := convert.LoadConfig(cfgFile)
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if minConfidence != "" {
		config.MinConfidence = minConfidence
	}
	if verbose {
		config.Verbose = true
	}

	policy, err := config.Policy()
	if err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}
	engine := internal.NewEngine(policy)
	engine.Verbose = config.Verbose
	return engine
}

func runCheck(ctx context.Context, logger *zap.Logger, engine convert.Engine, paths []string, isJson bool, jsonOutput string) {
	issues, err := convert.ProcessFiles(ctx, logger, engine, paths)
	if err != nil {
		logger.Error("Error processing files", zap.Error(err))
		os.Exit(1)
	}

	printIssues(logger, issues, isJson, jsonOutput)

	if len(issues) > 0 {
		os.Exit(1)
	}
}

func printIssues(logger *zap.Logger, issues []tt.Issue, isJson bool, jsonOutput string) {
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	sortedFiles := make([]string, 0, len(issuesByFile))
	for filename := range issuesByFile {
		sortedFiles = append(sortedFiles, filename)
	}
	sort.Strings(sortedFiles)

	if !isJson {
		for _, filename := range sortedFiles {
			fileIssues := issuesByFile[filename]
			sourceCode, err := internal.ReadSourceCode(filename)
			if err != nil {
				logger.Error("Error reading source file", zap.String("file", filename), zap.Error(err))
				continue
			}
			output := formatter.GenerateFormattedIssue(fileIssues, sourceCode)
			fmt.Println(output)
		}
		return
	}

	d, err := json.Marshal(issuesByFile)
	if err != nil {
		logger.Error("Error marshalling issues to JSON", zap.Error(err))
		return
	}
	if jsonOutput == "" {
		fmt.Println(string(d))
		return
	}
	if err := os.WriteFile(jsonOutput, d, 0o644); err != nil {
		logger.Error("Error writing JSON output file", zap.Error(err))
	}
}
