package analyzer_test

import (
	"testing"

	"golang.org/x/tools/go/analysis/analysistest"

	"github.com/modernlint/loopconv/analyzer"
	tt "github.com/modernlint/loopconv/internal/types"
)

func TestAnalyzer(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()
	analysistest.Run(t, testdata, analyzer.New(), "a")
}

func TestAnalyzerVerbose(t *testing.T) {
	t.Parallel()

	testdata := analysistest.TestData()
	a := analyzer.New(
		analyzer.WithVerbose(true),
		analyzer.WithMinConfidence(tt.ConfidenceSafe),
	)
	analysistest.Run(t, testdata, a, "verbose")
}
