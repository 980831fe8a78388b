package observability

import (
	"context"
	"testing"
	"time"

	"mentor-match/internal/common/config"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ExportsThroughRegistry(t *testing.T) {
	reg := promclient.NewRegistry()

	o, err := New(config.ObservabilityConfig{ServiceName: "mentor-match-test", MetricsEnabled: true}, reg)
	require.NoError(t, err)
	defer o.Shutdown(context.Background())

	ctx := context.Background()
	o.RecordJobProcessed(ctx, "recommend-mentors", "completed")
	o.RecordJobDuration(ctx, "recommend-mentors", 12*time.Millisecond, "completed")
	o.RecordMatches(ctx, "scored", 3, 130)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "jobs_processed_total")
	assert.Contains(t, names, "matches_returned_total")
}

func TestNew_MetricsDisabledWithoutTracing(t *testing.T) {
	o, err := New(config.ObservabilityConfig{ServiceName: "quiet"}, nil)
	require.NoError(t, err)

	ctx, span := o.StartSpan(context.Background(), "select")
	defer span.End()

	assert.False(t, span.SpanContext().IsValid())
	assert.NotNil(t, ctx)
	assert.NoError(t, o.Shutdown(context.Background()))
}

func TestNewNoop(t *testing.T) {
	o := NewNoop()

	assert.NotPanics(t, func() {
		o.RecordMatches(context.Background(), "empty", 0, 0)
		o.RecordJobProcessed(context.Background(), "calculate-match-score", "failed")
		_, span := o.StartSpan(context.Background(), "noop")
		span.End()
	})
}
