package main

import (
	"fmt"
	"os"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.uber.org/zap"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/activities"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/config"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/fleetcontrol"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/mailer"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/projector"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/report"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/shared"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/workflows"
)

func main() {
	// Setup zap logger; LOG_LEVEL applies once the config is loaded
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	logger, err := shared.NewLogger(level, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load(logger)
	if err != nil {
		sugar.Fatalf("Unable to load configuration: %v", err)
	}
	level.SetLevel(cfg.ZapLevel().Level())

	customers, err := config.LoadCustomers(cfg.CustomersFile, os.LookupEnv)
	if err != nil {
		sugar.Fatalf("Unable to load customer table: %v", err)
	}

	acts := &activities.Activities{
		Runner: report.NewRunner(
			customers,
			fleetcontrol.NewClient(cfg.APIURL, logger, fleetcontrol.WithTimeout(cfg.HTTPTimeout)),
			projector.New(logger),
			logger,
		),
		OutputDir: cfg.OutputDir,
	}
	if cfg.Mail.Enabled {
		acts.Mailer, err = mailer.New(mailSettings(cfg.Mail), logger)
		if err != nil {
			sugar.Fatalf("Unable to configure mailer: %v", err)
		}
	}

	// Create Temporal client
	clientOptions := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    shared.NewZapAdapter(logger),
	}

	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		sugar.Fatalf("Unable to create Temporal client: %v", err)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, shared.TaskQueue, worker.Options{})
	registerWorkflowsAndActivities(w, acts)

	sugar.Infow("Starting Temporal worker", "taskQueue", shared.TaskQueue, "customers", len(customers.All()))

	if err := w.Run(worker.InterruptCh()); err != nil {
		sugar.Fatalf("Unable to start worker: %v", err)
	}
}

// registerWorkflowsAndActivities registers all workflows and activities with the worker
func registerWorkflowsAndActivities(w worker.Worker, acts *activities.Activities) {
	w.RegisterWorkflow(workflows.FleetReportWorkflow)
	w.RegisterActivity(acts)
}

func mailSettings(m config.MailConfig) mailer.Settings {
	return mailer.Settings{
		Host:     m.Host,
		Port:     m.Port,
		Username: m.Username,
		Password: m.Password,
		From:     m.From,
		To:       m.To,
	}
}
