package types

import "fmt"

// Report row structures. Field order is the CSV column order.
type ConnectionLostRow struct {
	Customer      string `csv:"Customer" json:"customer"`
	ResourceGroup string `csv:"Resource Group" json:"resource_group"`
	ResourceName  string `csv:"Resource Name" json:"resource_name"`
	Status        string `csv:"Status" json:"status"`
}

type IncomingEventRow struct {
	Customer      string `csv:"Customer" json:"customer"`
	PlanName      string `csv:"Plan Name" json:"plan_name"`
	StartTime     string `csv:"Start Time (IST)" json:"start_time"`
	Timezone      string `csv:"Timezone" json:"timezone"`
	ResourceCount int    `csv:"Resource Count" json:"resource_count"`
}

type PatchRow struct {
	Customer       string `csv:"Customer" json:"customer"`
	EventName      string `csv:"Event Name" json:"event_name"`
	EventStartTime string `csv:"Event Start Time (IST)" json:"event_start_time"`
	ActionName     string `csv:"ActionName" json:"action_name"`
	ResourceName   string `csv:"ResourceName" json:"resource_name"`
	ResourceStatus string `csv:"ResourceStatus" json:"resource_status"`
	Annotation     string `csv:"Annotation" json:"annotation"`
	Provider       string `csv:"Provider" json:"provider"`
	FullResourceID string `csv:"FullResourceID" json:"full_resource_id"`
}

// Rows holds the projected rows of a single variant. Only the slice matching
// Variant is ever populated.
type Rows struct {
	Variant        Variant             `json:"variant"`
	ConnectionLost []ConnectionLostRow `json:"connection_lost,omitempty"`
	IncomingEvents []IncomingEventRow  `json:"incoming_events,omitempty"`
	Patches        []PatchRow          `json:"patches,omitempty"`
}

// NewRows returns an empty row set for the variant.
func NewRows(v Variant) Rows {
	return Rows{Variant: v}
}

func (r Rows) Len() int {
	switch r.Variant {
	case VariantConnectionLost:
		return len(r.ConnectionLost)
	case VariantIncomingEvents:
		return len(r.IncomingEvents)
	case VariantPatchReport:
		return len(r.Patches)
	}
	return 0
}

// Append adds other's rows after r's. Both must share a variant.
func (r *Rows) Append(other Rows) error {
	if other.Len() == 0 {
		return nil
	}
	if r.Variant != other.Variant {
		return fmt.Errorf("cannot append %s rows to %s rows", other.Variant, r.Variant)
	}
	r.ConnectionLost = append(r.ConnectionLost, other.ConnectionLost...)
	r.IncomingEvents = append(r.IncomingEvents, other.IncomingEvents...)
	r.Patches = append(r.Patches, other.Patches...)
	return nil
}

// StatusCount is the number of patch rows with a given resource status.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// ReportSummary describes a finished report.
type ReportSummary struct {
	Variant          Variant       `json:"variant"`
	Period           *ReportPeriod `json:"period,omitempty"`
	Filename         string        `json:"filename,omitempty"`
	TotalRows        int           `json:"total_rows"`
	StatusCounts     []StatusCount `json:"status_counts,omitempty"`
	SkippedCustomers []string      `json:"skipped_customers,omitempty"`
	Mailed           bool          `json:"mailed"`
}

// CountStatuses tallies patch rows by ResourceStatus in order of first
// appearance. Other variants yield nil.
func CountStatuses(r Rows) []StatusCount {
	if r.Variant != VariantPatchReport {
		return nil
	}
	index := make(map[string]int)
	var counts []StatusCount
	for _, row := range r.Patches {
		i, ok := index[row.ResourceStatus]
		if !ok {
			i = len(counts)
			index[row.ResourceStatus] = i
			counts = append(counts, StatusCount{Status: row.ResourceStatus})
		}
		counts[i].Count++
	}
	return counts
}
