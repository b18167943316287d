package tracing_test

import (
	"testing"

	"github.com/aaravmahajanofficial/storefront/internal/config"
	"github.com/aaravmahajanofficial/storefront/internal/tracing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithoutEndpointIsNoop(t *testing.T) {
	shutdown, err := tracing.Init(t.Context(), config.OtelConfig{ServiceName: "test"}, "dev")

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(t.Context()))
}

func TestInitWithEndpoint(t *testing.T) {
	cfg := config.OtelConfig{
		ServiceName:      "test",
		ExporterEndpoint: "http://127.0.0.1:4318/v1/traces",
		SamplerRatio:     0.5,
	}

	shutdown, err := tracing.Init(t.Context(), cfg, "dev")

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	// Nothing was recorded, so shutdown has nothing to flush.
	assert.NoError(t, shutdown(t.Context()))
}
