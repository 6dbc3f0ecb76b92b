package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMetrics_Independent(t *testing.T) {
	a, b := New(), New()

	a.PartsAdded.WithLabelValues("generators", "filters").Add(12)
	a.SubcategoriesAdded.Inc()
	a.CatalogParts.Set(412)

	assert.Equal(t, 12.0, testutil.ToFloat64(a.PartsAdded.WithLabelValues("generators", "filters")))
	assert.Equal(t, 1.0, testutil.ToFloat64(a.SubcategoriesAdded))
	assert.Equal(t, 412.0, testutil.ToFloat64(a.CatalogParts))
	assert.Zero(t, testutil.ToFloat64(b.SubcategoriesAdded))
}

func TestObserveBatch(t *testing.T) {
	m := New()
	m.ObserveBatch("04-electrical", time.Now().Add(-time.Second))

	assert.Equal(t, 1, testutil.CollectAndCount(m.BatchDuration))
}

func TestPush(t *testing.T) {
	var (
		method, path string
		body         []byte
	)
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	m := New()
	m.CatalogParts.Set(7)

	require.NoError(t, m.Push(context.Background(), gateway.URL, "catalog_builder"))
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/catalog_builder", path)
	assert.NotEmpty(t, body)
}

func TestPush_GatewayError(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer gateway.Close()

	require.Error(t, New().Push(context.Background(), gateway.URL, "catalog_builder"))
}
