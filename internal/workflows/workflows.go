package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/activities"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/report"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

// ReportInput is what the client asks the workflow to produce
type ReportInput struct {
	CustomerKey string             `json:"customer_key"`
	QueryKey    string             `json:"query_key"`
	Period      types.ReportPeriod `json:"period"`
	Mail        bool               `json:"mail"`
}

// ReportSummary is exported for use by client
type ReportSummary = types.ReportSummary

// FleetReportWorkflow fetches every selected customer one after another and
// writes a single CSV. A failing customer is logged and skipped.
func FleetReportWorkflow(ctx workflow.Context, in ReportInput) (*ReportSummary, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting fleet report workflow", "customer", in.CustomerKey, "query", in.QueryKey)

	// Requests are never retried; a failed customer is simply left out.
	activityOptions := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute * 2,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, activityOptions)

	var a *activities.Activities

	// Step 1: Validate selection, period and credentials (Activity)
	var plan activities.PlanOutput
	req := report.Request{CustomerKey: in.CustomerKey, QueryKey: in.QueryKey, Period: in.Period}
	if err := workflow.ExecuteActivity(ctx, a.PrepareReportActivity, req).Get(ctx, &plan); err != nil {
		return nil, fmt.Errorf("invalid report request: %w", err)
	}

	summary := &ReportSummary{Variant: plan.Variant}
	if plan.Variant.NeedsPeriod() {
		period := in.Period
		summary.Period = &period
	}

	// Step 2: Fetch customers strictly in table order (Activities). Rows are
	// staged by the activity; only counts and file paths enter history.
	runID := workflow.GetInfo(ctx).WorkflowExecution.ID
	var staged []string
	for _, customer := range plan.Customers {
		var fetched activities.FetchOutput
		fetch := activities.FetchInput{RunID: runID, CustomerKey: customer.Key, QueryKey: in.QueryKey, Period: in.Period}
		if err := workflow.ExecuteActivity(ctx, a.FetchCustomerRowsActivity, fetch).Get(ctx, &fetched); err != nil {
			logger.Warn("Skipping customer", "customer", customer.Name, "error", err)
			summary.SkippedCustomers = append(summary.SkippedCustomers, customer.Name)
			continue
		}
		if fetched.StagedFile != "" {
			staged = append(staged, fetched.StagedFile)
		}
		summary.TotalRows += fetched.RowCount
	}

	if summary.TotalRows == 0 {
		logger.Info("No data found for the selected query")
		return summary, nil
	}

	// Step 3: Save report (Activity)
	var saved activities.SaveOutput
	save := activities.SaveInput{RunID: runID, Variant: plan.Variant, Filename: plan.Filename, StagedFiles: staged}
	if err := workflow.ExecuteActivity(ctx, a.SaveReportActivity, save).Get(ctx, &saved); err != nil {
		return nil, fmt.Errorf("failed to save report: %w", err)
	}
	summary.Filename = saved.Path
	summary.TotalRows = saved.TotalRows
	summary.StatusCounts = saved.StatusCounts

	// Step 4: Mail report (Activity, optional)
	if in.Mail {
		mail := activities.MailInput{Path: saved.Path, Filename: plan.Filename, Summary: *summary}
		if err := workflow.ExecuteActivity(ctx, a.MailReportActivity, mail).Get(ctx, nil); err != nil {
			logger.Warn("Failed to mail report", "error", err)
		} else {
			summary.Mailed = true
		}
	}

	logger.Info("Workflow completed successfully", "rows", summary.TotalRows, "filename", summary.Filename)
	return summary, nil
}
