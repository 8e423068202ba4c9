package normalize_test

import (
	"testing"

	"github.com/regpulse/regpulse/backend/internal/models"
	"github.com/regpulse/regpulse/backend/internal/normalize"
	"github.com/stretchr/testify/require"
)

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "runs squeezed", input: "foo\n\n  bar\t baz", want: "foo bar baz"},
		{name: "entities decoded", input: "Smith &amp; Nephew&nbsp;recall", want: "Smith & Nephew recall"},
		{name: "trimmed", input: "  padded  ", want: "padded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, normalize.CollapseWhitespace(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "hello", normalize.Truncate("hello", 10))
	require.Equal(t, "hel", normalize.Truncate("hello", 3))
	// Rune boundaries, not bytes.
	require.Equal(t, "дефи", normalize.Truncate("дефибриллятор", 4))
}

func TestTags(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "none", input: "nothing relevant here", want: nil},
		{name: "single", input: "Class I Recall announced", want: []string{"recall"}},
		{
			name:  "510k variants deduped",
			input: "New 510k pathways for 510(k) submissions",
			want:  []string{"510k"},
		},
		{
			name:  "multiple in keyword order",
			input: "Software recall affects clinical diagnostic medical device",
			want:  []string{"medical device", "recall", "clinical", "diagnostic", "software"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, normalize.Tags(tt.input))
		})
	}
}

func TestEscalatePriority(t *testing.T) {
	require.Equal(t, models.PriorityHigh,
		normalize.EscalatePriority(models.PriorityLow, "URGENT safety notice", ""))
	require.Equal(t, models.PriorityHigh,
		normalize.EscalatePriority(models.PriorityMedium, "Device update", "critical failure mode"))
	require.Equal(t, models.PriorityLow,
		normalize.EscalatePriority(models.PriorityLow, "Routine guidance", "nothing alarming"))
}
