package activities

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"
	"go.uber.org/zap"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/fleetcontrol"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/report"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

func newActivities(t *testing.T, customers ...types.Customer) *Activities {
	t.Helper()
	table, err := types.NewCustomerTable(customers)
	require.NoError(t, err)
	logger := zap.NewNop()
	return &Activities{
		Runner:    report.NewRunner(table, fleetcontrol.NewClient("http://127.0.0.1:0", logger), nil, logger),
		OutputDir: t.TempDir(),
	}
}

func applicationErrorType(t *testing.T, err error) string {
	t.Helper()
	var appErr *temporal.ApplicationError
	require.True(t, errors.As(err, &appErr), "expected application error, got %v", err)
	assert.True(t, appErr.NonRetryable())
	return appErr.Type()
}

func TestPrepareReportActivity(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := newActivities(t,
		types.Customer{Key: "1", Name: "Brother", ID: "b", APIKey: "k"},
		types.Customer{Key: "2", Name: "Grohe", ID: "g", APIKey: "k"},
	)
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.PrepareReportActivity, report.Request{
		CustomerKey: "0", QueryKey: "2", Period: types.ReportPeriod{Year: 2025, Month: 4},
	})
	require.NoError(t, err)

	var out PlanOutput
	require.NoError(t, val.Get(&out))
	assert.Equal(t, types.VariantIncomingEvents, out.Variant)
	assert.Equal(t, "ALL_CUSTOMERS", out.Scope)
	assert.Equal(t, "ALL_CUSTOMERS_incoming_events_2025_apr.csv", out.Filename)
	assert.Equal(t, []CustomerRef{{Key: "1", Name: "Brother"}, {Key: "2", Name: "Grohe"}}, out.Customers)
}

func TestPrepareReportActivity_FatalErrors(t *testing.T) {
	tests := []struct {
		name    string
		req     report.Request
		errType string
	}{
		{"unknown query", report.Request{CustomerKey: "1", QueryKey: "9"}, ErrTypeInvalidSelection},
		{"unknown customer", report.Request{CustomerKey: "7", QueryKey: "1"}, ErrTypeInvalidSelection},
		{"month out of range", report.Request{CustomerKey: "1", QueryKey: "3", Period: types.ReportPeriod{Year: 2025, Month: 0}}, ErrTypeInvalidPeriod},
		{"no credentials", report.Request{CustomerKey: "2", QueryKey: "1"}, ErrTypeMissingCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts testsuite.WorkflowTestSuite
			env := ts.NewTestActivityEnvironment()
			acts := newActivities(t,
				types.Customer{Key: "1", Name: "Brother", ID: "b", APIKey: "k"},
				types.Customer{Key: "2", Name: "Grohe"},
			)
			env.RegisterActivity(acts)

			_, err := env.ExecuteActivity(acts.PrepareReportActivity, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.errType, applicationErrorType(t, err))
		})
	}
}

func TestFetchCustomerRowsActivity_StagesRows(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"groups":{"result":[{"name":"core","resourceSelectors":[
			{"resource":{"name":"srv-1","state":{"status":"CONNECTION_LOST"}}}]}]}}}`))
	}))
	t.Cleanup(server.Close)

	table, err := types.NewCustomerTable([]types.Customer{{Key: "1", Name: "Brother", ID: "b", APIKey: "k"}})
	require.NoError(t, err)
	logger := zap.NewNop()
	acts := &Activities{
		Runner:    report.NewRunner(table, fleetcontrol.NewClient(server.URL, logger), nil, logger),
		OutputDir: t.TempDir(),
	}

	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	env.RegisterActivity(acts)

	val, err := env.ExecuteActivity(acts.FetchCustomerRowsActivity, FetchInput{RunID: "run-1", CustomerKey: "1", QueryKey: "1"})
	require.NoError(t, err)
	var out FetchOutput
	require.NoError(t, val.Get(&out))
	assert.Equal(t, "Brother", out.Customer)
	assert.Equal(t, 1, out.RowCount)
	assert.Equal(t, filepath.Join(report.StagingDir(acts.OutputDir, "run-1"), "1.csv"), out.StagedFile)

	val, err = env.ExecuteActivity(acts.SaveReportActivity, SaveInput{
		RunID: "run-1", Variant: types.VariantConnectionLost, Filename: "Brother_connection_lost.csv", StagedFiles: []string{out.StagedFile},
	})
	require.NoError(t, err)
	var saved SaveOutput
	require.NoError(t, val.Get(&saved))
	assert.Equal(t, 1, saved.TotalRows)
	assert.FileExists(t, saved.Path)
	assert.NoFileExists(t, out.StagedFile)
}

func TestMailReportActivity_Disabled(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestActivityEnvironment()
	acts := newActivities(t, types.Customer{Key: "1", Name: "Brother", ID: "b", APIKey: "k"})
	env.RegisterActivity(acts)

	_, err := env.ExecuteActivity(acts.MailReportActivity, MailInput{Path: "x.csv", Filename: "x.csv"})
	require.Error(t, err)
	assert.Equal(t, "MailDisabled", applicationErrorType(t, err))
}

func TestSubject_WithoutPeriod(t *testing.T) {
	subject := Subject(types.ReportSummary{Variant: types.VariantConnectionLost}, "ALL_CUSTOMERS_connection_lost.csv")
	assert.Equal(t, "FleetControl report: List of CONNECTION_LOST Servers [ALL_CUSTOMERS_connection_lost.csv]", subject)
}
