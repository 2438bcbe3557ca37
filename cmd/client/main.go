package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/sdk/client"
	"go.uber.org/zap"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/config"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/query"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/shared"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/workflows"
)

type startOptions struct {
	customer string
	query    string
	year     string
	month    string
	mail     bool
}

func newStartCommand() *cobra.Command {
	var opts startOptions
	cmd := &cobra.Command{
		Use:           "client",
		Short:         "Start a fleet report workflow and wait for its summary",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return StartWorkflow(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.customer, "customer", "", `customer key, "0" for all customers (default FC_CUSTOMER)`)
	cmd.Flags().StringVar(&opts.query, "query", "", "query key 1-3 (default FC_QUERY)")
	cmd.Flags().StringVar(&opts.year, "year", "", "report year")
	cmd.Flags().StringVar(&opts.month, "month", "", "report month (1-12)")
	cmd.Flags().BoolVar(&opts.mail, "mail", false, "mail the report (default FC_MAIL_ENABLED)")
	return cmd
}

// StartWorkflow starts the fleet report workflow and waits for its summary
func StartWorkflow(cmd *cobra.Command, opts startOptions) error {
	// Setup zap logger; LOG_LEVEL applies once the config is loaded
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	logger, err := shared.NewLogger(level, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to create logger: %v\n", err)
		return err
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load(logger)
	if err != nil {
		sugar.Errorf("Unable to load configuration: %v", err)
		return err
	}
	level.SetLevel(cfg.ZapLevel().Level())
	if opts.customer == "" {
		opts.customer = cfg.Customer
	}
	if opts.query == "" {
		opts.query = cfg.Query
	}
	if !cmd.Flags().Changed("mail") {
		opts.mail = cfg.Mail.Enabled
	}

	// Validate the selection before anything is started
	sel, err := query.Select(opts.query)
	if err != nil {
		sugar.Errorf("Invalid query selection: %v", err)
		return err
	}
	customers, err := config.LoadCustomers(cfg.CustomersFile, os.LookupEnv)
	if err != nil {
		sugar.Errorf("Unable to load customer table: %v", err)
		return err
	}
	if _, err := customers.Select(opts.customer); err != nil {
		sugar.Errorf("Invalid customer selection: %v", err)
		return err
	}
	var period types.ReportPeriod
	if sel.Variant.NeedsPeriod() {
		period, err = query.ResolvePeriod(
			query.PeriodInput{Year: opts.year, Month: opts.month},
			query.PeriodInput{Year: cfg.ReportYear, Month: cfg.ReportMonth},
			time.Now(),
			func(field, value string) {
				sugar.Warnw("Ignoring invalid period value from environment", "field", field, "value", value)
			},
		)
		if err != nil {
			sugar.Errorf("Invalid report period: %v", err)
			return err
		}
	}

	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    shared.NewZapAdapter(logger),
	}

	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		sugar.Errorf("Unable to create Temporal client: %v", err)
		return err
	}
	defer temporalClient.Close()

	workflowOptions := client.StartWorkflowOptions{
		ID:        shared.WorkflowIDPrefix + "-" + uuid.NewString(),
		TaskQueue: shared.TaskQueue,
	}

	input := workflows.ReportInput{
		CustomerKey: opts.customer,
		QueryKey:    opts.query,
		Period:      period,
		Mail:        opts.mail,
	}

	sugar.Infow("Starting fleet report workflow", "workflowID", workflowOptions.ID, "query", sel.Title)

	workflowRun, err := temporalClient.ExecuteWorkflow(context.Background(), workflowOptions, workflows.FleetReportWorkflow, input)
	if err != nil {
		sugar.Errorf("Unable to execute workflow: %v", err)
		return err
	}

	sugar.Infow("Workflow started", "workflowID", workflowRun.GetID(), "runID", workflowRun.GetRunID())

	var summary workflows.ReportSummary
	if err := workflowRun.Get(context.Background(), &summary); err != nil {
		sugar.Errorf("Unable to get workflow result: %v", err)
		return err
	}

	if summary.TotalRows == 0 {
		sugar.Info("No data found for the selected query.")
		return nil
	}
	sugar.Infow("Workflow completed successfully",
		"file", summary.Filename,
		"rows", summary.TotalRows,
		"statusCounts", summary.StatusCounts,
		"skippedCustomers", summary.SkippedCustomers,
		"mailed", summary.Mailed)

	return nil
}

func main() {
	if err := newStartCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
