package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCountersAreLabelled(t *testing.T) {
	before := testutil.ToFloat64(ToggleRequests.WithLabelValues("follow", ToggleFailed))
	ToggleRequests.WithLabelValues("follow", ToggleFailed).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(ToggleRequests.WithLabelValues("follow", ToggleFailed)))

	before = testutil.ToFloat64(FormSubmissions.WithLabelValues(FormNetwork))
	FormSubmissions.WithLabelValues(FormNetwork).Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(FormSubmissions.WithLabelValues(FormNetwork)))
}
