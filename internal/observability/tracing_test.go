package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTracer_Disabled(t *testing.T) {
	t.Parallel()

	tracer, err := NewTracer(TracerConfig{
		ServiceName: "routeway-test",
		Enabled:     false,
	})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	ctx, span := tracer.Start(context.Background(), "dispatch")
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	span.End()

	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestNewTracer_EnabledWithoutEndpoint(t *testing.T) {
	t.Parallel()

	// No endpoint: spans are sampled but never exported.
	tracer, err := NewTracer(TracerConfig{
		ServiceName:  "routeway-test",
		Enabled:      true,
		SamplingRate: 1.0,
	})
	require.NoError(t, err)
	require.NotNil(t, tracer)

	_, span := tracer.Start(context.Background(), "dispatch")
	span.End()

	assert.NoError(t, tracer.Shutdown(context.Background()))
}

func TestCreateSampler(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "AlwaysOffSampler", createSampler(0).Description())
	assert.Equal(t, "AlwaysOnSampler", createSampler(1).Description())
	assert.Contains(t, createSampler(0.5).Description(), "ParentBased")
}
