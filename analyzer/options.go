package analyzer

import (
	"github.com/modernlint/loopconv/internal/loop"
	tt "github.com/modernlint/loopconv/internal/types"
)

// Option configures a [New] analyzer instance.
type Option func(*runner)

// WithMaxCopySize sets the largest element size, in bytes, still passed
// by value in a rewritten loop.
func WithMaxCopySize(size int64) Option {
	return func(r *runner) { r.cfg.MaxCopySize = size }
}

// WithMinConfidence sets the lowest confidence tier that is still
// converted.
func WithMinConfidence(c tt.Confidence) Option {
	return func(r *runner) { r.cfg.MinConfidence = c }
}

// WithNamingStyle sets the style of synthesized element names.
func WithNamingStyle(style loop.NamingStyle) Option {
	return func(r *runner) { r.cfg.NamingStyle = style }
}

// WithVerbose also reports loops rejected by the confidence threshold.
func WithVerbose(verbose bool) Option {
	return func(r *runner) { r.verbose = verbose }
}
