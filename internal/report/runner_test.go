package report

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/fleetcontrol"
	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

const oneLostResource = `{"data":{"groups":{"result":[{"name":"core","resourceSelectors":[
	{"resource":{"name":"srv-1","state":{"status":"CONNECTION_LOST"}}},
	{"resource":{"name":"srv-2","state":{"status":"CONNECTED"}}}
]}]}}}`

const aprilPatchEvent = `{"data":{"events":{"result":[{"name":"April","startTime":"2025-04-12T06:00:00Z","actions":[
	{"actionName":"patch","type":"PATCH","attempts":[{"attempt":1,"resourceStates":[{"status":"SUCCESS","resource":{"name":"vm-1"}},{"status":"FAILED","resource":{"name":"vm-2"}}]}]},
	{"actionName":"reboot","type":"CUSTOM","attempts":[{"attempt":1,"resourceStates":[{"status":"SUCCESS","resource":{"name":"vm-1"}}]}]}
]}]}}}`

type fakeAPI struct {
	server    *httptest.Server
	calls     []string
	responses map[string]func(w http.ResponseWriter)
}

func newFakeAPI(t *testing.T, responses map[string]func(w http.ResponseWriter)) *fakeAPI {
	api := &fakeAPI{responses: responses}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Customer-ID")
		api.calls = append(api.calls, id)
		respond, ok := api.responses[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		respond(w)
	}))
	t.Cleanup(api.server.Close)
	return api
}

func body(s string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) { _, _ = w.Write([]byte(s)) }
}

func status(code int, s string) func(w http.ResponseWriter) {
	return func(w http.ResponseWriter) {
		w.WriteHeader(code)
		_, _ = w.Write([]byte(s))
	}
}

func testCustomers(t *testing.T) *types.CustomerTable {
	t.Helper()
	table, err := types.NewCustomerTable([]types.Customer{
		{Key: "1", Name: "Brother", ID: "brother", APIKey: "k1"},
		{Key: "2", Name: "Grohe", ID: "grohe", APIKey: "k2"},
		{Key: "3", Name: "Heineken", ID: "heineken", APIKey: "k3", IncludeAllActionTypes: true},
	})
	require.NoError(t, err)
	return table
}

func newRunner(t *testing.T, api *fakeAPI, logger *zap.Logger) *Runner {
	return NewRunner(testCustomers(t), fleetcontrol.NewClient(api.server.URL, logger), nil, logger)
}

func TestRun_AllCustomersSkipsFailures(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	api := newFakeAPI(t, map[string]func(http.ResponseWriter){
		"brother":  status(http.StatusInternalServerError, "boom"),
		"grohe":    body(oneLostResource),
		"heineken": body(`{"data":null,"errors":[{"message":"forbidden"}]}`),
	})

	result, err := newRunner(t, api, logger).Run(context.Background(), Request{CustomerKey: "0", QueryKey: "1"})
	require.NoError(t, err)

	assert.Equal(t, []string{"brother", "grohe", "heineken"}, api.calls)
	require.Equal(t, 1, result.Rows.Len())
	assert.Equal(t, "Grohe", result.Rows.ConnectionLost[0].Customer)
	assert.Equal(t, "ALL_CUSTOMERS", result.Plan.Scope)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, "Brother", result.Skipped[0].Customer)
	assert.Contains(t, result.Skipped[0].Reason, "500")
	assert.Equal(t, "Heineken", result.Skipped[1].Customer)

	warnings := logs.FilterMessage("Skipping customer").All()
	require.Len(t, warnings, 2)
	assert.Equal(t, "Brother", warnings[0].ContextMap()["customer"])
}

func TestRun_HeinekenPolicy(t *testing.T) {
	api := newFakeAPI(t, map[string]func(http.ResponseWriter){
		"brother":  body(aprilPatchEvent),
		"grohe":    body(aprilPatchEvent),
		"heineken": body(aprilPatchEvent),
	})
	runner := newRunner(t, api, zap.NewNop())
	april := types.ReportPeriod{Year: 2025, Month: 4}

	heineken, err := runner.Run(context.Background(), Request{CustomerKey: "3", QueryKey: "3", Period: april})
	require.NoError(t, err)
	assert.Equal(t, 3, heineken.Rows.Len())
	assert.Equal(t, "Heineken", heineken.Plan.Scope)

	grohe, err := runner.Run(context.Background(), Request{CustomerKey: "2", QueryKey: "3", Period: april})
	require.NoError(t, err)
	assert.Equal(t, 2, grohe.Rows.Len())

	all, err := runner.Run(context.Background(), Request{CustomerKey: "0", QueryKey: "3", Period: april})
	require.NoError(t, err)
	assert.Equal(t, 7, all.Rows.Len())

	summary := all.Summary()
	assert.Equal(t, 7, summary.TotalRows)
	assert.Equal(t, []types.StatusCount{{Status: "SUCCESS", Count: 4}, {Status: "FAILED", Count: 3}}, summary.StatusCounts)
	require.NotNil(t, summary.Period)
	assert.Equal(t, april, *summary.Period)
}

func TestRun_InvalidInputFailsBeforeFetching(t *testing.T) {
	api := newFakeAPI(t, map[string]func(http.ResponseWriter){"brother": body(aprilPatchEvent)})
	runner := newRunner(t, api, zap.NewNop())

	for _, month := range []int{0, 13} {
		_, err := runner.Run(context.Background(), Request{CustomerKey: "1", QueryKey: "3", Period: types.ReportPeriod{Year: 2025, Month: month}})
		assert.ErrorIs(t, err, types.ErrInvalidPeriod)
	}

	_, err := runner.Run(context.Background(), Request{CustomerKey: "1", QueryKey: "9"})
	assert.ErrorIs(t, err, types.ErrInvalidSelection)

	_, err = runner.Run(context.Background(), Request{CustomerKey: "8", QueryKey: "1"})
	assert.ErrorIs(t, err, types.ErrInvalidSelection)

	assert.Empty(t, api.calls)
}

func TestRun_ConnectionLostIgnoresPeriod(t *testing.T) {
	api := newFakeAPI(t, map[string]func(http.ResponseWriter){"brother": body(oneLostResource)})

	result, err := newRunner(t, api, zap.NewNop()).Run(context.Background(), Request{CustomerKey: "1", QueryKey: "1"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Rows.Len())
	assert.Nil(t, result.Summary().Period)
}

func TestPrepare_MissingCredentials(t *testing.T) {
	table, err := types.NewCustomerTable([]types.Customer{
		{Key: "1", Name: "Brother", ID: "brother", APIKey: "k1"},
		{Key: "2", Name: "Grohe"},
	})
	require.NoError(t, err)
	runner := NewRunner(table, fleetcontrol.NewClient("http://127.0.0.1:0", nil), nil, nil)

	_, err = runner.Prepare(Request{CustomerKey: "0", QueryKey: "1"})
	assert.ErrorIs(t, err, types.ErrMissingCredentials)

	plan, err := runner.Prepare(Request{CustomerKey: "1", QueryKey: "1"})
	require.NoError(t, err)
	assert.Len(t, plan.Customers, 1)
}

func TestRun_EmptyResult(t *testing.T) {
	api := newFakeAPI(t, map[string]func(http.ResponseWriter){"brother": body(`{"data":{"groups":{"result":[]}}}`)})

	result, err := newRunner(t, api, zap.NewNop()).Run(context.Background(), Request{CustomerKey: "1", QueryKey: "1"})
	require.NoError(t, err)
	assert.True(t, result.Empty())
}
