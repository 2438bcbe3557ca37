package fleetcontrol

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/TonmoySahaNC/NC-MCE-Automation/internal/types"
)

var testCustomer = types.Customer{Key: "1", Name: "Brother", ID: "cust-1", APIKey: "key-1"}

func TestQuery_SendsHeadersAndDocument(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "key-1", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "cust-1", r.Header.Get("X-Customer-ID"))

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var body map[string]string
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "query { groups { result { name } } }", body["query"])

		_, _ = w.Write([]byte(`{"data":{"groups":{"result":[]}}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, zap.NewNop())
	payload, err := client.Query(context.Background(), testCustomer, "query { groups { result { name } } }")
	require.NoError(t, err)
	assert.JSONEq(t, `{"groups":{"result":[]}}`, string(payload.Data))
	assert.Equal(t, 1, calls)
}

func TestQuery_Non200IsFetchFailure(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("upstream exploded"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, nil).Query(context.Background(), testCustomer, "query {}")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCustomerSkipped)

	var failure *FetchFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, http.StatusInternalServerError, failure.StatusCode)
	assert.Equal(t, "upstream exploded", failure.Body)
	assert.Equal(t, "Brother", failure.Customer)
	assert.Equal(t, 1, calls, "no retry on failure")
}

func TestQuery_NullDataIsNoDataFailure(t *testing.T) {
	for name, body := range map[string]string{
		"null":    `{"data":null,"errors":[{"message":"unauthorized"}]}`,
		"missing": `{"errors":[{"message":"bad query"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL, nil).Query(context.Background(), testCustomer, "query {}")
			assert.ErrorIs(t, err, ErrCustomerSkipped)

			var failure *NoDataFailure
			require.True(t, errors.As(err, &failure))
			assert.Len(t, failure.Errors, 1)
			assert.Contains(t, failure.Error(), "Brother")
		})
	}
}

func TestQuery_TransportErrorIsFetchFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, nil).Query(context.Background(), testCustomer, "query {}")
	assert.ErrorIs(t, err, ErrCustomerSkipped)

	var failure *FetchFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 0, failure.StatusCode)
	assert.Error(t, failure.Err)
}

func TestNewClient_DefaultEndpoint(t *testing.T) {
	c := NewClient("  ", nil)
	assert.Equal(t, DefaultEndpoint, c.endpoint)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}
