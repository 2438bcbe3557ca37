package types

// Variant identifies one of the fixed report shapes.
type Variant string

const (
	VariantConnectionLost Variant = "connection-lost"
	VariantIncomingEvents Variant = "incoming-events"
	VariantPatchReport    Variant = "patch-report"
)

// NeedsPeriod reports whether the variant filters by report month.
func (v Variant) NeedsPeriod() bool {
	return v == VariantIncomingEvents || v == VariantPatchReport
}

// Header is the ordered CSV column list for the variant.
func (v Variant) Header() []string {
	switch v {
	case VariantConnectionLost:
		return []string{"Customer", "Resource Group", "Resource Name", "Status"}
	case VariantIncomingEvents:
		return []string{"Customer", "Plan Name", "Start Time (IST)", "Timezone", "Resource Count"}
	case VariantPatchReport:
		return []string{"Customer", "Event Name", "Event Start Time (IST)", "ActionName", "ResourceName", "ResourceStatus", "Annotation", "Provider", "FullResourceID"}
	}
	return nil
}
