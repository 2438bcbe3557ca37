package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

func TestSelect_KnownKeys(t *testing.T) {
	cases := map[string]types.Variant{
		"1":   types.VariantConnectionLost,
		"2":   types.VariantIncomingEvents,
		" 3 ": types.VariantPatchReport,
	}
	for key, want := range cases {
		sel, err := Select(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, sel.Variant)
		assert.NotEmpty(t, sel.Document)
		assert.Equal(t, want.Header(), sel.Header)
	}
}

func TestSelect_ResultPaths(t *testing.T) {
	sel, err := Select("3")
	require.NoError(t, err)
	assert.Equal(t, "events.result", sel.ResultPath)
	assert.Contains(t, sel.Document, "resourceStates")
}

func TestSelect_RejectsUnknownKey(t *testing.T) {
	for _, key := range []string{"", "0", "4", "patch"} {
		_, err := Select(key)
		assert.ErrorIs(t, err, types.ErrInvalidSelection, key)
	}
}

func TestResolvePeriod_OverrideWins(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	p, err := ResolvePeriod(PeriodInput{Year: "2025", Month: "4"}, PeriodInput{Year: "2024", Month: "1"}, now, nil)
	require.NoError(t, err)
	assert.Equal(t, types.ReportPeriod{Year: 2025, Month: 4}, p)
}

func TestResolvePeriod_EnvThenNow(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

	p, err := ResolvePeriod(PeriodInput{}, PeriodInput{Year: "2024", Month: "2"}, now, nil)
	require.NoError(t, err)
	assert.Equal(t, types.ReportPeriod{Year: 2024, Month: 2}, p)

	p, err = ResolvePeriod(PeriodInput{}, PeriodInput{}, now, nil)
	require.NoError(t, err)
	assert.Equal(t, types.ReportPeriod{Year: 2026, Month: 10}, p)
}

func TestResolvePeriod_InvalidEnvFallsBackToNow(t *testing.T) {
	now := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	var warned []string
	p, err := ResolvePeriod(PeriodInput{}, PeriodInput{Year: "soon", Month: "13"}, now, func(field, value string) {
		warned = append(warned, field+"="+value)
	})
	require.NoError(t, err)
	assert.Equal(t, types.ReportPeriod{Year: 2026, Month: 10}, p)
	assert.Equal(t, []string{"year=soon", "month=13"}, warned)
}

func TestResolvePeriod_InvalidOverrideMonth(t *testing.T) {
	now := time.Now()
	for _, month := range []string{"0", "13", "april", "-1"} {
		_, err := ResolvePeriod(PeriodInput{Year: "2025", Month: month}, PeriodInput{}, now, nil)
		assert.ErrorIs(t, err, types.ErrInvalidPeriod, month)
	}
}

func TestResolvePeriod_InvalidOverrideYear(t *testing.T) {
	_, err := ResolvePeriod(PeriodInput{Year: "20x5", Month: "4"}, PeriodInput{}, time.Now(), nil)
	assert.ErrorIs(t, err, types.ErrInvalidPeriod)
}
