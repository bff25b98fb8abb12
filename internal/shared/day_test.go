package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*60*60)

	got, err := ParseDay("2024-10-03", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.October, 3, 0, 0, 0, 0, loc), got)
	assert.Equal(t, "2024-10-03", FormatDay(got))

	_, err = ParseDay("03/10/2024", loc)
	assert.ErrorContains(t, err, "expected YYYY-MM-DD")
}

func TestStartOfDay(t *testing.T) {
	in := time.Date(2024, time.October, 3, 18, 45, 12, 9, time.UTC)
	assert.Equal(t, time.Date(2024, time.October, 3, 0, 0, 0, 0, time.UTC), StartOfDay(in))
}

func TestMillisRoundTrip(t *testing.T) {
	now := time.Date(2024, time.October, 3, 18, 45, 12, 0, time.UTC)
	assert.True(t, now.Equal(FromMillis(Millis(now))))
}

func TestTokenUsageEmpty(t *testing.T) {
	assert.True(t, TokenUsage{Model: "x"}.Empty())
	assert.False(t, TokenUsage{CompletionTokens: 1}.Empty())
}
