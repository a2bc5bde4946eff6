package numerator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Format(t *testing.T) {
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "ILC-2026-00007", DefaultConfig("ILC").Format(period, 7))
	assert.Equal(t, "DO-042", Config{Prefix: "DO", PadWidth: 3}.Format(period, 42))
	assert.Equal(t, "X-00001", Config{Prefix: "X"}.Format(period, 1))
}

func TestCounter(t *testing.T) {
	ctx := context.Background()
	period := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	var c Counter

	first, err := c.GetNextNumber(ctx, DefaultConfig("ILC"), nil, period)
	require.NoError(t, err)
	second, err := c.GetNextNumber(ctx, DefaultConfig("ILC"), nil, period)
	require.NoError(t, err)
	other, err := c.GetNextNumber(ctx, DefaultConfig("DO"), nil, period)
	require.NoError(t, err)

	assert.Equal(t, "ILC-2026-00001", first)
	assert.Equal(t, "ILC-2026-00002", second)
	assert.Equal(t, "DO-2026-00001", other)
	assert.Len(t, c.Calls, 3)

	require.NoError(t, c.SetNextNumber(ctx, DefaultConfig("ILC"), period, 100))
	next, err := c.GetNextNumber(ctx, DefaultConfig("ILC"), nil, period)
	require.NoError(t, err)
	assert.Equal(t, "ILC-2026-00100", next)
}
