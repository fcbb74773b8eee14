package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvider_ScrapesRecordedInstruments(t *testing.T) {
	provider, err := NewProvider("zkgate")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	counter, err := provider.MeterProvider().Meter("zkgate").Int64Counter("zkgate_sample_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	output := scrape(t, provider)
	assert.Regexp(t, `zkgate_sample_total(\{[^}]*\})? 3`, output)
}

func TestProvider_PrivateRegistry(t *testing.T) {
	first, err := NewProvider("zkgate")
	require.NoError(t, err)
	second, err := NewProvider("zkgate")
	require.NoError(t, err, "each provider registers on its own registry")

	counter, err := first.MeterProvider().Meter("zkgate").Int64Counter("zkgate_first_only_total")
	require.NoError(t, err)
	counter.Add(context.Background(), 1)

	assert.Contains(t, scrape(t, first), "zkgate_first_only_total")
	assert.NotContains(t, scrape(t, second), "zkgate_first_only_total")
	assert.NotContains(t, scrape(t, second), "go_goroutines", "runtime collectors are not registered")
}

func TestProvider_OpenMetricsNegotiation(t *testing.T) {
	provider, err := NewProvider("zkgate")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "application/openmetrics-text; version=1.0.0")
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/openmetrics-text")
}

func TestProvider_Shutdown(t *testing.T) {
	provider, err := NewProvider("zkgate")
	require.NoError(t, err)
	assert.NoError(t, provider.Shutdown(context.Background()))

	assert.NoError(t, (&Provider{}).Shutdown(context.Background()), "zero provider")
}
