package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ComponentRegistered("amphibian")
	m.ComponentRegistered("basics")
	m.Expanded("components", "amphibian")
	m.Expanded("component_groups/baby", "amphibian")
	m.Expanded("components", "basics")
	m.BuildFinished(5*time.Millisecond, "")
	m.BuildFinished(time.Millisecond, "unknown_component")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.componentsRegistered))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.expansions.WithLabelValues("amphibian")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.expansions.WithLabelValues("basics")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.buildErrors.WithLabelValues("unknown_component")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesBuilt))
	assert.Equal(t, 1, testutil.CollectAndCount(m.buildDuration))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Expanded("components", "despawn")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `addonsmith_expansions_total{component="despawn"} 1`))
	assert.Contains(t, body, "addonsmith_build_duration_seconds")
}
