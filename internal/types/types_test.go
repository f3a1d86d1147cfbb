package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfidenceOrdering(t *testing.T) {
	t.Parallel()

	assert.Less(t, ConfidenceRisky, ConfidenceReasonable)
	assert.Less(t, ConfidenceReasonable, ConfidenceSafe)
}

func TestParseConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Confidence
		wantErr bool
	}{
		{in: "risky", want: ConfidenceRisky},
		{in: "reasonable", want: ConfidenceReasonable},
		{in: "safe", want: ConfidenceSafe},
		{in: "Safe", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		got, err := ParseConfidence(tc.in)
		if tc.wantErr {
			require.Error(t, err, "ParseConfidence(%q)", tc.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
		assert.Equal(t, tc.in, got.String())
	}
}

func TestSeverityString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "error", SeverityError.String())
	assert.Equal(t, "warning", SeverityWarning.String())
	assert.Equal(t, "info", SeverityInfo.String())
	assert.Equal(t, "off", SeverityOff.String())
}
