// Package query holds the fixed FleetControl report queries and resolves the
// report period they filter on.
package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

// Selection binds a report variant to its GraphQL document, the JMESPath
// expression locating the result list, and the CSV header.
type Selection struct {
	Key        string        `json:"key"`
	Variant    types.Variant `json:"variant"`
	Title      string        `json:"title"`
	Document   string        `json:"-"`
	ResultPath string        `json:"result_path"`
	Header     []string      `json:"header"`
}

var selections = []Selection{
	{
		Key:        "1",
		Variant:    types.VariantConnectionLost,
		Title:      "List of CONNECTION_LOST Servers",
		Document:   connectionLostDocument,
		ResultPath: "groups.result",
	},
	{
		Key:        "2",
		Variant:    types.VariantIncomingEvents,
		Title:      "Upcoming Events for specific Month (incomingEvents)",
		Document:   incomingEventsDocument,
		ResultPath: "incomingEvents.result",
	},
	{
		Key:        "3",
		Variant:    types.VariantPatchReport,
		Title:      "Patching Report for the specific Month & Year (events)",
		Document:   patchReportDocument,
		ResultPath: "events.result",
	},
}

// Select returns the selection for key "1", "2" or "3".
func Select(key string) (Selection, error) {
	key = strings.TrimSpace(key)
	for _, s := range selections {
		if s.Key == key {
			s.Header = s.Variant.Header()
			return s, nil
		}
	}
	return Selection{}, fmt.Errorf("%w: query %q", types.ErrInvalidSelection, key)
}

// ForVariant returns the selection producing the given variant.
func ForVariant(v types.Variant) (Selection, error) {
	for _, s := range selections {
		if s.Variant == v {
			return Select(s.Key)
		}
	}
	return Selection{}, fmt.Errorf("%w: variant %q", types.ErrInvalidSelection, v)
}

// All lists every selection in menu order.
func All() []Selection {
	out := make([]Selection, 0, len(selections))
	for _, s := range selections {
		s.Header = s.Variant.Header()
		out = append(out, s)
	}
	return out
}

// PeriodInput carries raw year/month strings from one configuration source.
// Empty fields are treated as absent.
type PeriodInput struct {
	Year  string
	Month string
}

// ResolvePeriod picks each of year and month from override, then env, then
// now. A malformed override is an error; a malformed env value is ignored and
// reported through warn (which may be nil).
func ResolvePeriod(override, env PeriodInput, now time.Time, warn func(field, value string)) (types.ReportPeriod, error) {
	year, err := resolveField("year", override.Year, env.Year, now.Year(), warn)
	if err != nil {
		return types.ReportPeriod{}, err
	}
	month, err := resolveField("month", override.Month, env.Month, int(now.Month()), warn)
	if err != nil {
		return types.ReportPeriod{}, err
	}
	period := types.ReportPeriod{Year: year, Month: month}
	if err := period.Validate(); err != nil {
		return types.ReportPeriod{}, err
	}
	return period, nil
}

func resolveField(field, override, env string, fallback int, warn func(field, value string)) (int, error) {
	if v := strings.TrimSpace(override); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || !inRange(field, n) {
			return 0, fmt.Errorf("%w: %s %q", types.ErrInvalidPeriod, field, override)
		}
		return n, nil
	}
	if v := strings.TrimSpace(env); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && inRange(field, n) {
			return n, nil
		}
		if warn != nil {
			warn(field, env)
		}
	}
	return fallback, nil
}

func inRange(field string, n int) bool {
	if field == "month" {
		return n >= 1 && n <= 12
	}
	return n >= 1 && n <= 9999
}
