package activities

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/mailer"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/query"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/report"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

// Application error types surfaced to the workflow.
const (
	ErrTypeInvalidSelection   = "InvalidSelection"
	ErrTypeInvalidPeriod      = "InvalidPeriod"
	ErrTypeMissingCredentials = "MissingCredentials"
	ErrTypeCustomerSkipped    = "CustomerSkipped"
)

// Activities carries the worker-side dependencies. Credentials stay here and
// never enter workflow history; workflows refer to customers by key.
// Fetched rows are staged under OutputDir, so every worker polling the task
// queue must see the same OutputDir.
type Activities struct {
	Runner    *report.Runner
	OutputDir string
	Mailer    *mailer.Mailer
}

// CustomerRef identifies a customer without its credentials.
type CustomerRef struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// PlanOutput is the validated shape of a report run.
type PlanOutput struct {
	Variant   types.Variant `json:"variant"`
	Customers []CustomerRef `json:"customers"`
	Scope     string        `json:"scope"`
	Filename  string        `json:"filename"`
}

// FetchInput asks for one customer's rows. RunID scopes the staged file.
type FetchInput struct {
	RunID       string             `json:"run_id"`
	CustomerKey string             `json:"customer_key"`
	QueryKey    string             `json:"query_key"`
	Period      types.ReportPeriod `json:"period"`
}

// FetchOutput describes the rows staged for one customer. Rows themselves
// stay on disk.
type FetchOutput struct {
	Customer   string `json:"customer"`
	RowCount   int    `json:"row_count"`
	StagedFile string `json:"staged_file,omitempty"`
}

// SaveInput lists the staged files to assemble, in customer order.
type SaveInput struct {
	RunID       string        `json:"run_id"`
	Variant     types.Variant `json:"variant"`
	Filename    string        `json:"filename"`
	StagedFiles []string      `json:"staged_files"`
}

// SaveOutput describes the written report.
type SaveOutput struct {
	Path         string              `json:"path"`
	TotalRows    int                 `json:"total_rows"`
	StatusCounts []types.StatusCount `json:"status_counts,omitempty"`
}

// MailInput points at the saved report to send.
type MailInput struct {
	Path     string              `json:"path"`
	Filename string              `json:"filename"`
	Summary  types.ReportSummary `json:"summary"`
}

// PrepareReportActivity validates the request against the worker's customer table
func (a *Activities) PrepareReportActivity(ctx context.Context, req report.Request) (*PlanOutput, error) {
	plan, err := a.Runner.Prepare(req)
	if err != nil {
		return nil, nonRetryable(err)
	}

	out := &PlanOutput{
		Variant:  plan.Selection.Variant,
		Scope:    plan.Scope,
		Filename: report.Filename(plan.Scope, plan.Selection, plan.Period),
	}
	for _, c := range plan.Customers {
		out.Customers = append(out.Customers, CustomerRef{Key: c.Key, Name: c.Name})
	}
	activity.GetLogger(ctx).Info("Prepared report", "variant", out.Variant, "customers", len(out.Customers), "filename", out.Filename)
	return out, nil
}

// FetchCustomerRowsActivity queries the API for one customer, projects the
// result and stages the rows under OutputDir
func (a *Activities) FetchCustomerRowsActivity(ctx context.Context, in FetchInput) (*FetchOutput, error) {
	req := report.Request{CustomerKey: in.CustomerKey, QueryKey: in.QueryKey, Period: in.Period}
	plan, err := a.Runner.Prepare(req)
	if err != nil {
		return nil, nonRetryable(err)
	}
	if len(plan.Customers) != 1 {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("customer key %q does not name a single customer", in.CustomerKey), ErrTypeInvalidSelection, nil)
	}
	customer := plan.Customers[0]

	rows, err := a.Runner.Collect(ctx, customer, plan.Selection, plan.Period)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeCustomerSkipped, err)
	}

	out := &FetchOutput{Customer: customer.Name, RowCount: rows.Len()}
	if rows.Len() > 0 {
		if out.StagedFile, err = report.Stage(a.OutputDir, in.RunID, customer.Key, rows); err != nil {
			return nil, err
		}
	}
	activity.GetLogger(ctx).Info("Fetched customer rows", "customer", customer.Name, "rows", out.RowCount)
	return out, nil
}

// SaveReportActivity assembles the staged rows into the CSV report
func (a *Activities) SaveReportActivity(ctx context.Context, in SaveInput) (*SaveOutput, error) {
	rows, err := report.LoadStaged(in.Variant, in.StagedFiles)
	if err != nil {
		return nil, err
	}
	path, _, err := report.WriteFile(a.OutputDir, in.Filename, rows)
	if err != nil {
		return nil, err
	}
	if err := report.ClearStaging(a.OutputDir, in.RunID); err != nil {
		activity.GetLogger(ctx).Warn("Failed to clear staged rows", "runID", in.RunID, "error", err)
	}
	activity.GetLogger(ctx).Info("Successfully saved report", "path", path, "rows", rows.Len())
	return &SaveOutput{Path: path, TotalRows: rows.Len(), StatusCounts: types.CountStatuses(rows)}, nil
}

// MailReportActivity sends the saved CSV as an attachment
func (a *Activities) MailReportActivity(ctx context.Context, in MailInput) error {
	if a.Mailer == nil {
		return temporal.NewNonRetryableApplicationError("mail delivery is not configured on this worker", "MailDisabled", nil)
	}
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return fmt.Errorf("read saved report: %w", err)
	}
	return a.Mailer.Send(ctx, mailer.Message{
		Subject:        Subject(in.Summary, in.Filename),
		Body:           Body(in.Summary),
		AttachmentName: in.Filename,
		Attachment:     data,
	})
}

// Subject is the mail subject line for a report.
func Subject(s types.ReportSummary, filename string) string {
	title := string(s.Variant)
	if sel, err := query.ForVariant(s.Variant); err == nil {
		title = sel.Title
	}
	if s.Period != nil {
		return fmt.Sprintf("FleetControl report: %s (%s)", title, s.Period)
	}
	return fmt.Sprintf("FleetControl report: %s [%s]", title, filename)
}

// Body is the plain-text mail body for a report.
func Body(s types.ReportSummary) string {
	body := fmt.Sprintf("Total resources in this report: %d\n", s.TotalRows)
	for _, c := range s.StatusCounts {
		body += fmt.Sprintf("Count of ResourceStatus '%s': %d\n", c.Status, c.Count)
	}
	if len(s.SkippedCustomers) > 0 {
		body += fmt.Sprintf("Customers skipped because of errors: %v\n", s.SkippedCustomers)
	}
	return body
}

func nonRetryable(err error) error {
	switch {
	case errors.Is(err, types.ErrInvalidSelection):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidSelection, err)
	case errors.Is(err, types.ErrInvalidPeriod):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidPeriod, err)
	case errors.Is(err, types.ErrMissingCredentials):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeMissingCredentials, err)
	}
	return err
}
