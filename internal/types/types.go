package types

import (
	"fmt"
	"go/token"
)

// Issue represents a convertible loop (or a conversion conflict) found in
// the code base.
type Issue struct {
	Rule       string
	Category   string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Start      token.Position
	End        token.Position
	Severity   Severity
	Confidence Confidence
}

// Severity is the reporting level of an issue.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityOff:
		return "off"
	default:
		return "unknown"
	}
}

// Confidence ranks how safe an automatic rewrite is.
// The order matters: ConfidenceRisky < ConfidenceReasonable < ConfidenceSafe.
// A loop accepted at Safe is also accepted at any looser threshold.
type Confidence int

const (
	ConfidenceRisky Confidence = iota
	ConfidenceReasonable
	ConfidenceSafe
)

func (c Confidence) String() string {
	switch c {
	case ConfidenceRisky:
		return "risky"
	case ConfidenceReasonable:
		return "reasonable"
	case ConfidenceSafe:
		return "safe"
	default:
		return "unknown"
	}
}

// ParseConfidence parses a confidence name as used in configuration files
// and command line flags.
func ParseConfidence(s string) (Confidence, error) {
	switch s {
	case "risky":
		return ConfidenceRisky, nil
	case "reasonable":
		return ConfidenceReasonable, nil
	case "safe":
		return ConfidenceSafe, nil
	default:
		return 0, fmt.Errorf("unknown confidence level %q (want risky, reasonable, or safe)", s)
	}
}
