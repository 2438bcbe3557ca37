// Package cli is the fcreport command line: it runs a report in-process and
// writes the CSV next to the caller.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/activities"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/config"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/fleetcontrol"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/mailer"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/metrics"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/projector"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/query"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/report"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/shared"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

// App holds the process boundaries the commands talk to.
type App struct {
	In     io.Reader
	Out    io.Writer
	Lookup config.LookupFunc
	Now    func() time.Time
	// IsTerminal reports whether In is an interactive terminal.
	IsTerminal func() bool
	// Logger overrides the logger built from flags and LOG_LEVEL.
	Logger *zap.Logger
	// MailSender overrides the SMTP client.
	MailSender mailer.Sender
	// EnvFiles are passed to godotenv; empty means ".env".
	EnvFiles []string
}

// DefaultApp wires the App to the real process.
func DefaultApp() *App {
	return &App{
		In:     os.Stdin,
		Out:    os.Stdout,
		Lookup: os.LookupEnv,
		Now:    time.Now,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	}
}

// RunOptions are the flags of the run command.
type RunOptions struct {
	Customer      string
	Query         string
	Year          string
	Month         string
	CustomersFile string
	OutputDir     string
	Mail          bool
	Interactive   bool
	Verbose       bool
}

// NewRootCommand builds the fcreport command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "fcreport",
		Short:         "FleetControl reports as CSV",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)
	root.AddCommand(newRunCommand(app))
	return root
}

func newRunCommand(app *App) *cobra.Command {
	var opts RunOptions
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Query FleetControl and write a CSV report",
		Example: `  fcreport run --customer 0 --query 1
  fcreport run --customer 3 --query 3 --year 2025 --month 4 --mail`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), opts, cmd.Flags().Changed("mail"))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Customer, "customer", "", `customer key, "0" for all customers (env FC_CUSTOMER)`)
	flags.StringVar(&opts.Query, "query", "", "query key 1-3 (env FC_QUERY)")
	flags.StringVar(&opts.Year, "year", "", "report year for queries 2 and 3 (env FC_REPORT_YEAR)")
	flags.StringVar(&opts.Month, "month", "", "report month 1-12 for queries 2 and 3 (env FC_REPORT_MONTH)")
	flags.StringVar(&opts.CustomersFile, "customers-file", "", "YAML customer table (env FC_CUSTOMERS_FILE)")
	flags.StringVar(&opts.OutputDir, "output-dir", "", "directory for the CSV file (env FC_OUTPUT_DIR)")
	flags.BoolVar(&opts.Mail, "mail", false, "mail the report (env FC_MAIL_ENABLED)")
	flags.BoolVarP(&opts.Interactive, "interactive", "i", false, "prompt for customer, query and period")
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "debug logging on the console")
	return cmd
}

// Run executes one report. mailSet tells whether --mail was given
// explicitly and therefore overrides FC_MAIL_ENABLED.
func (a *App) Run(ctx context.Context, opts RunOptions, mailSet bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger, level, err := a.logger(opts.Verbose)
	if err != nil {
		return err
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load(logger, a.EnvFiles...)
	if err != nil {
		return err
	}
	applyLogLevel(level, cfg, opts.Verbose)
	applyFlags(cfg, opts, mailSet)
	if err := cfg.Validate(); err != nil {
		return err
	}

	customers, err := config.LoadCustomers(cfg.CustomersFile, a.Lookup)
	if err != nil {
		return err
	}

	req, err := a.resolveRequest(cfg, opts, customers, func(field, value string) {
		sugar.Warnw("Ignoring invalid period value from environment", "field", field, "value", value)
	})
	if err != nil {
		return err
	}

	client := fleetcontrol.NewClient(cfg.APIURL, logger, fleetcontrol.WithTimeout(cfg.HTTPTimeout))
	runner := report.NewRunner(customers, client, projector.New(logger), logger)

	result, err := runner.Run(ctx, req)
	if err != nil {
		return err
	}
	defer a.writeMetrics(cfg.MetricsFile, logger)

	if result.Empty() {
		fmt.Fprintln(a.Out, "\nNo data found for the selected query.")
		return nil
	}

	name := report.Filename(result.Plan.Scope, result.Plan.Selection, result.Plan.Period)
	path, data, err := report.WriteFile(cfg.OutputDir, name, result.Rows)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "\nCSV file '%s' created with %d rows.\n", path, result.Rows.Len())

	summary := result.Summary()
	summary.Filename = path
	if result.Plan.Selection.Variant == types.VariantPatchReport {
		fmt.Fprintf(a.Out, "\nTotal resources in this report: %d\n", summary.TotalRows)
		for _, c := range summary.StatusCounts {
			fmt.Fprintf(a.Out, "Count of ResourceStatus '%s': %d\n", c.Status, c.Count)
		}
	}

	if cfg.Mail.Enabled {
		if err := a.mail(ctx, cfg.Mail, logger, summary, name, data); err != nil {
			sugar.Warnw("Failed to mail report", "file", path, "error", err)
		}
	}
	return nil
}

// logger builds the run logger. The returned level is raised or lowered to
// LOG_LEVEL by applyLogLevel once the config is known.
func (a *App) logger(verbose bool) (*zap.Logger, zap.AtomicLevel, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if verbose {
		level.SetLevel(zap.DebugLevel)
	}
	if a.Logger != nil {
		return a.Logger, level, nil
	}
	logger, err := shared.NewLogger(level, verbose)
	return logger, level, err
}

// applyLogLevel honours LOG_LEVEL unless --verbose asked for debug output.
func applyLogLevel(level zap.AtomicLevel, cfg *config.Config, verbose bool) {
	if verbose {
		return
	}
	level.SetLevel(cfg.ZapLevel().Level())
}

func applyFlags(cfg *config.Config, opts RunOptions, mailSet bool) {
	if opts.Customer != "" {
		cfg.Customer = opts.Customer
	}
	if opts.Query != "" {
		cfg.Query = opts.Query
	}
	if opts.CustomersFile != "" {
		cfg.CustomersFile = opts.CustomersFile
	}
	if opts.OutputDir != "" {
		cfg.OutputDir = opts.OutputDir
	}
	if mailSet {
		cfg.Mail.Enabled = opts.Mail
	}
}

// resolveRequest fills the selection from flags and environment, prompting
// for whatever is still missing when a person is at the terminal.
func (a *App) resolveRequest(cfg *config.Config, opts RunOptions, customers *types.CustomerTable, warn func(field, value string)) (report.Request, error) {
	req := report.Request{CustomerKey: cfg.Customer, QueryKey: cfg.Query}

	interactive := opts.Interactive || (a.IsTerminal != nil && a.IsTerminal() && (req.CustomerKey == "" || req.QueryKey == ""))
	p := newPrompter(a.In, a.Out)

	var err error
	if req.CustomerKey == "" || (opts.Interactive && opts.Customer == "") {
		if !interactive {
			return req, fmt.Errorf("%w: no customer given, use --customer or FC_CUSTOMER", types.ErrInvalidSelection)
		}
		if req.CustomerKey, err = p.customer(customers); err != nil {
			return req, err
		}
	}
	if _, err := customers.Select(req.CustomerKey); err != nil {
		return req, err
	}

	if req.QueryKey == "" || (opts.Interactive && opts.Query == "") {
		if !interactive {
			return req, fmt.Errorf("%w: no query given, use --query or FC_QUERY", types.ErrInvalidSelection)
		}
		if req.QueryKey, err = p.query(); err != nil {
			return req, err
		}
	}
	sel, err := query.Select(req.QueryKey)
	if err != nil {
		return req, err
	}
	if !sel.Variant.NeedsPeriod() {
		return req, nil
	}

	override := query.PeriodInput{Year: opts.Year, Month: opts.Month}
	if interactive {
		if override, err = p.period(opts.Year, opts.Month); err != nil {
			return req, err
		}
	}
	req.Period, err = query.ResolvePeriod(override, query.PeriodInput{Year: cfg.ReportYear, Month: cfg.ReportMonth}, a.now(), warn)
	return req, err
}

func (a *App) mail(ctx context.Context, mc config.MailConfig, logger *zap.Logger, summary types.ReportSummary, name string, data []byte) error {
	settings := mailer.Settings{
		Host:     mc.Host,
		Port:     mc.Port,
		Username: mc.Username,
		Password: mc.Password,
		From:     mc.From,
		To:       mc.To,
	}
	var m *mailer.Mailer
	if a.MailSender != nil {
		m = mailer.NewWithSender(settings, a.MailSender, logger)
	} else {
		var err error
		if m, err = mailer.New(settings, logger); err != nil {
			return err
		}
	}
	return m.Send(ctx, mailer.Message{
		Subject:        activities.Subject(summary, name),
		Body:           activities.Body(summary),
		AttachmentName: name,
		Attachment:     data,
	})
}

func (a *App) writeMetrics(path string, logger *zap.Logger) {
	if err := metrics.WriteTextfile(path); err != nil {
		logger.Warn("Failed to write metrics textfile", zap.String("path", path), zap.Error(err))
	}
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	app := DefaultApp()
	if err := NewRootCommand(app).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if msg := exitMessage(err); msg != "" {
			fmt.Fprintln(os.Stderr, msg)
		}
		return 1
	}
	return 0
}

// exitMessage is the closing line printed for input errors.
func exitMessage(err error) string {
	switch {
	case errors.Is(err, types.ErrInvalidPeriod):
		return "Invalid input for month or year. Exiting."
	case errors.Is(err, types.ErrInvalidSelection):
		return "Invalid selection. Exiting."
	}
	return ""
}
