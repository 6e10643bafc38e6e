package observability

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"campusconnect/pkg/logging"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestRegisterCacheSize(t *testing.T) {
	size := 3
	RegisterCacheSize("test_cache", func() int { return size })

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	var got float64
	found := false
	for _, mf := range families {
		if mf.GetName() != "campus_cache_entries" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "cache" && l.GetValue() == "test_cache" {
					got = m.GetGauge().GetValue()
					found = true
				}
			}
		}
	}
	require.True(t, found)
	assert.Equal(t, float64(3), got)
}

func TestTracerMiddlewareTagsLoggerWithTraceId(t *testing.T) {
	tp := sdktrace.NewTracerProvider()
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	var buf bytes.Buffer
	req := httptest.NewRequest(http.MethodGet, "/chats", nil)
	req = req.WithContext(logging.WithContext(req.Context(), slog.New(slog.NewJSONHandler(&buf, nil))))

	h := TracerMiddleware("test")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logging.FromContext(r.Context()).Info("handled")
	}))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Contains(t, buf.String(), `"trace_id":"`)
}
