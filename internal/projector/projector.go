// Package projector flattens FleetControl query results into report rows.
package projector

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/metrics"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/query"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

// DisplayZone is the zone every report timestamp is shown in.
const DisplayZone = "Asia/Kolkata"

const connectionLostStatus = "CONNECTION_LOST"

// ErrTimestampParse is matched by TimestampParseFailure.
var ErrTimestampParse = errors.New("unparseable start time")

// TimestampParseFailure describes an event dropped because of its start time.
type TimestampParseFailure struct {
	Customer string
	Event    string
	Value    string
	Err      error
}

func (e *TimestampParseFailure) Error() string {
	return fmt.Sprintf("[%s] Error parsing startTime '%s' of event %q: %v", e.Customer, e.Value, e.Event, e.Err)
}

func (e *TimestampParseFailure) Is(target error) bool {
	return target == ErrTimestampParse
}

func (e *TimestampParseFailure) Unwrap() error {
	return e.Err
}

// Projector turns one customer's query payload into rows.
type Projector struct {
	logger    *zap.Logger
	display   *time.Location
	extractor *extractor
}

// New creates a Projector rendering times in DisplayZone.
func New(logger *zap.Logger) *Projector {
	if logger == nil {
		logger = zap.NewNop()
	}
	display, err := time.LoadLocation(DisplayZone)
	if err != nil {
		display = time.FixedZone("IST", 5*60*60+30*60)
	}
	return &Projector{logger: logger, display: display, extractor: newExtractor()}
}

// Project extracts sel's result list from data and projects it. period is
// ignored for the connection-lost variant.
func (p *Projector) Project(customer types.Customer, sel query.Selection, period types.ReportPeriod, data json.RawMessage) (types.Rows, error) {
	switch sel.Variant {
	case types.VariantConnectionLost, types.VariantIncomingEvents, types.VariantPatchReport:
	default:
		return types.Rows{}, fmt.Errorf("%w: variant %q", types.ErrInvalidSelection, sel.Variant)
	}

	var list []json.RawMessage
	if err := p.extractor.extract(sel.ResultPath, data, &list); err != nil {
		return types.Rows{}, fmt.Errorf("[%s] %w", customer.Name, err)
	}

	var rows types.Rows
	switch sel.Variant {
	case types.VariantConnectionLost:
		groups := decodeEach[types.ResourceGroup](list, func(raw json.RawMessage, err error) {
			p.logger.Sugar().Warnw("Skipping resource group", "customer", customer.Name, "group", rawField(raw, "name"), "error", err)
		})
		rows = p.connectionLost(customer, groups)
	case types.VariantIncomingEvents:
		events := decodeEach[types.IncomingEvent](list, p.skipUndecodable(customer, types.VariantIncomingEvents))
		rows = p.incomingEvents(customer, period, events)
	case types.VariantPatchReport:
		events := decodeEach[types.Event](list, p.skipUndecodable(customer, types.VariantPatchReport))
		rows = p.patchReport(customer, period, events)
	}

	metrics.RowsProjected.WithLabelValues(customer.Name, string(sel.Variant)).Add(float64(rows.Len()))
	return rows, nil
}

func (p *Projector) connectionLost(customer types.Customer, groups []types.ResourceGroup) types.Rows {
	rows := types.NewRows(types.VariantConnectionLost)
	for _, group := range groups {
		for _, selector := range group.ResourceSelectors {
			resource := selector.Resource
			if resource == nil || resource.State == nil {
				continue
			}
			if resource.State.Status != connectionLostStatus {
				continue
			}
			rows.ConnectionLost = append(rows.ConnectionLost, types.ConnectionLostRow{
				Customer:      customer.Name,
				ResourceGroup: group.Name,
				ResourceName:  resource.Name,
				Status:        resource.State.Status,
			})
		}
	}
	return rows
}

func (p *Projector) incomingEvents(customer types.Customer, period types.ReportPeriod, events []types.IncomingEvent) types.Rows {
	rows := types.NewRows(types.VariantIncomingEvents)
	for _, event := range events {
		if strings.TrimSpace(event.StartTime) == "" {
			continue
		}

		zoneName := types.StringOr(event.ScheduleTimezone, "UTC")
		source, ok := types.LoadLocationOrUTC(zoneName)
		if !ok && zoneName != "UTC" {
			p.logger.Sugar().Warnw("Unknown schedule timezone, using UTC",
				"customer", customer.Name, "event", types.StringOr(event.Name, ""), "timezone", zoneName)
		}

		start, err := types.ParseTimestamp(event.StartTime, source)
		if err != nil {
			p.skipEvent(customer, types.VariantIncomingEvents, types.StringOr(event.Name, ""), event.StartTime, err)
			continue
		}

		local := start.In(p.display)
		if !period.Contains(local) {
			continue
		}

		rows.IncomingEvents = append(rows.IncomingEvents, types.IncomingEventRow{
			Customer:      customer.Name,
			PlanName:      types.StringOr(event.Name, "Unnamed Plan"),
			StartTime:     local.Format(types.DisplayLayout),
			Timezone:      zoneName,
			ResourceCount: patchResourceCount(event.Plan),
		})
	}
	return rows
}

// patchResourceCount sums the resource groups of the first action named
// "patch". Later "patch" actions are ignored.
func patchResourceCount(plan *types.Plan) int {
	if plan == nil {
		return 0
	}
	for _, action := range plan.PlanActions {
		if !strings.EqualFold(action.Name, "patch") {
			continue
		}
		total := 0
		for _, rg := range action.ResourceGroups {
			total += rg.TotalNumberOfResources
		}
		return total
	}
	return 0
}

func (p *Projector) patchReport(customer types.Customer, period types.ReportPeriod, events []types.Event) types.Rows {
	rows := types.NewRows(types.VariantPatchReport)
	for _, event := range events {
		if strings.TrimSpace(event.StartTime) == "" {
			continue
		}

		start, err := types.ParseTimestamp(event.StartTime, time.UTC)
		if err != nil {
			p.skipEvent(customer, types.VariantPatchReport, event.Name, event.StartTime, err)
			continue
		}

		local := start.In(p.display)
		if !period.Contains(local) {
			continue
		}
		eventStart := local.Format(types.DisplayLayout)

		for _, action := range event.Actions {
			if !includeAction(customer, action) {
				continue
			}
			for _, attempt := range action.Attempts {
				for _, rs := range attempt.ResourceStates {
					resource := types.ResourceRef{}
					if rs.Resource != nil {
						resource = *rs.Resource
					}
					rows.Patches = append(rows.Patches, types.PatchRow{
						Customer:       customer.Name,
						EventName:      event.Name,
						EventStartTime: eventStart,
						ActionName:     action.ActionName,
						ResourceName:   resource.Name,
						ResourceStatus: rs.Status,
						Annotation:     rs.Annotation,
						Provider:       resource.Provider,
						FullResourceID: resource.FullCloudResourceID,
					})
				}
			}
		}
	}
	return rows
}

func includeAction(customer types.Customer, action types.Action) bool {
	if strings.EqualFold(action.ActionName, "patch") {
		return true
	}
	return customer.IncludesActionType(action.Type)
}

// skipUndecodable reports an event whose fields have unexpected JSON types,
// e.g. a numeric startTime, and leaves the rest of the list intact.
func (p *Projector) skipUndecodable(customer types.Customer, variant types.Variant) func(json.RawMessage, error) {
	return func(raw json.RawMessage, err error) {
		p.skipEvent(customer, variant, rawField(raw, "name"), rawField(raw, "startTime"), err)
	}
}

func (p *Projector) skipEvent(customer types.Customer, variant types.Variant, event, value string, err error) {
	failure := &TimestampParseFailure{Customer: customer.Name, Event: event, Value: value, Err: err}
	p.logger.Sugar().Warnw("Skipping event", "customer", customer.Name, "event", event, "startTime", value, "error", failure)
	metrics.EventsSkipped.WithLabelValues(customer.Name, string(variant)).Inc()
}
