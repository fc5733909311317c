package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPRecorder_RecordRequest(t *testing.T) {
	counter := HTTPRequestsTotal.WithLabelValues(http.MethodGet, "GET /activities", "200")
	before := testutil.ToFloat64(counter)

	HTTPRecorder{}.RecordRequest(context.Background(), http.MethodGet, "GET /activities", http.StatusOK, 15*time.Millisecond)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
