package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/modernlint/loopconv/convert"
	"github.com/modernlint/loopconv/internal"
	"github.com/modernlint/loopconv/internal/fixer"
	tt "github.com/modernlint/loopconv/internal/types"
)

var dryRun bool

var fixCmd = &cobra.Command{
	Use:   "fix [paths...]",
	Short: "Rewrite convertible loops in place",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Println("error: Please provide file or directory paths")
			os.Exit(1)
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		engine := newEngine()
		runAutoFix(ctx, logger, engine, args, dryRun)
	},
}

func init() {
	fixCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show rewrites without applying them")
	fixCmd.Flags().StringVar(&minConfidence, "min-confidence", "", "Lowest confidence tier to convert: risky, reasonable, or safe")
}

func runAutoFix(ctx context.Context, logger *zap.Logger, engine *internal.Engine, paths []string, dryRun bool) {
	fix := fixer.New(dryRun, engine.Config().MinConfidence)

	issues, err := convert.ProcessFiles(ctx, logger, engine, paths)
	if err != nil {
		logger.Error("Error processing paths", zap.Error(err))
		os.Exit(1)
	}

	// Edits are applied file by file, each from its own issue batch.
	issuesByFile := make(map[string][]tt.Issue)
	for _, issue := range issues {
		issuesByFile[issue.Filename] = append(issuesByFile[issue.Filename], issue)
	}

	for filename, fileIssues := range issuesByFile {
		if err := fix.Fix(filename, fileIssues); err != nil {
			logger.Error("Error fixing issues", zap.String("file", filename), zap.Error(err))
		}
	}
}
