// Package report runs the fetch-and-project pipeline across customers and
// writes the resulting CSV.
package report

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/fleetcontrol"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/metrics"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/projector"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/query"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

// Fetcher sends one GraphQL document for one customer.
type Fetcher interface {
	Query(ctx context.Context, customer types.Customer, document string) (*fleetcontrol.Payload, error)
}

// Request is what the user asked for, before validation.
type Request struct {
	CustomerKey string             `json:"customer_key"`
	QueryKey    string             `json:"query_key"`
	Period      types.ReportPeriod `json:"period"`
}

// Plan is a validated Request.
type Plan struct {
	Selection query.Selection
	Customers []types.Customer
	Period    types.ReportPeriod
	Scope     string
}

// Skip records a customer that contributed no rows because of a failure.
type Skip struct {
	Customer string `json:"customer"`
	Reason   string `json:"reason"`
}

// Result is the outcome of a run across all selected customers.
type Result struct {
	Plan    *Plan
	Rows    types.Rows
	Skipped []Skip
}

// Empty reports whether no customer produced any row.
func (r *Result) Empty() bool {
	return r.Rows.Len() == 0
}

// Summary describes the result without its rows.
func (r *Result) Summary() types.ReportSummary {
	s := types.ReportSummary{
		Variant:      r.Plan.Selection.Variant,
		TotalRows:    r.Rows.Len(),
		StatusCounts: types.CountStatuses(r.Rows),
	}
	if r.Plan.Selection.Variant.NeedsPeriod() {
		period := r.Plan.Period
		s.Period = &period
	}
	for _, skip := range r.Skipped {
		s.SkippedCustomers = append(s.SkippedCustomers, skip.Customer)
	}
	return s
}

// Runner fetches and projects each selected customer in table order.
type Runner struct {
	customers *types.CustomerTable
	fetcher   Fetcher
	projector *projector.Projector
	logger    *zap.Logger
}

func NewRunner(customers *types.CustomerTable, fetcher Fetcher, proj *projector.Projector, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if proj == nil {
		proj = projector.New(logger)
	}
	return &Runner{customers: customers, fetcher: fetcher, projector: proj, logger: logger}
}

// Prepare validates req without touching the network. Every error it returns
// is fatal for the run.
func (r *Runner) Prepare(req Request) (*Plan, error) {
	sel, err := query.Select(req.QueryKey)
	if err != nil {
		return nil, err
	}
	customers, err := r.customers.Select(req.CustomerKey)
	if err != nil {
		return nil, err
	}
	if sel.Variant.NeedsPeriod() {
		if err := req.Period.Validate(); err != nil {
			return nil, err
		}
	}
	for _, c := range customers {
		if !c.HasCredentials() {
			return nil, fmt.Errorf("%w for %s: set FC_<NAME>_CUSTOMER_ID and FC_<NAME>_API_KEY", types.ErrMissingCredentials, c.Name)
		}
	}
	return &Plan{
		Selection: sel,
		Customers: customers,
		Period:    req.Period,
		Scope:     r.customers.Scope(req.CustomerKey),
	}, nil
}

// Run validates req and then processes each customer sequentially. A
// customer whose fetch or projection fails is logged and skipped.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	plan, err := r.Prepare(req)
	if err != nil {
		return nil, err
	}
	sugar := r.logger.Sugar()

	result := &Result{Plan: plan, Rows: types.NewRows(plan.Selection.Variant)}
	for _, customer := range plan.Customers {
		sugar.Infow("Processing customer", "customer", customer.Name, "variant", plan.Selection.Variant)

		rows, err := r.Collect(ctx, customer, plan.Selection, plan.Period)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			sugar.Warnw("Skipping customer", "customer", customer.Name, "error", err)
			result.Skipped = append(result.Skipped, Skip{Customer: customer.Name, Reason: err.Error()})
			continue
		}
		if err := result.Rows.Append(rows); err != nil {
			return nil, err
		}
		sugar.Infow("Customer processed", "customer", customer.Name, "rows", rows.Len())
	}
	return result, nil
}

// Collect fetches and projects a single customer.
func (r *Runner) Collect(ctx context.Context, customer types.Customer, sel query.Selection, period types.ReportPeriod) (types.Rows, error) {
	variant := string(sel.Variant)

	payload, err := r.fetcher.Query(ctx, customer, sel.Document)
	if err != nil {
		metrics.CustomersTotal.WithLabelValues(variant, outcome(err)).Inc()
		return types.Rows{}, err
	}

	rows, err := r.projector.Project(customer, sel, period, json.RawMessage(payload.Data))
	if err != nil {
		metrics.CustomersTotal.WithLabelValues(variant, "projection_failed").Inc()
		return types.Rows{}, err
	}
	metrics.CustomersTotal.WithLabelValues(variant, "ok").Inc()
	return rows, nil
}

func outcome(err error) string {
	switch err.(type) {
	case *fleetcontrol.NoDataFailure:
		return "no_data"
	default:
		return "fetch_failed"
	}
}
