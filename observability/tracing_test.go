package observability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corvidworks/automata/observability"
)

// ConfigureZipkin is not pointed at a real collector here, since that would require a reachable Zipkin HTTP
// endpoint at test time. The http.Reporter it builds batches spans client-side; the deferred Close flushes the one
// span the test finishes to an address with no collector, and the test does not check the outcome of that send.

func TestTracer_defaultsToNoop(t *testing.T) {
	tracer := observability.NewTracer()
	span := tracer.StartSpan("op")
	require.NotNil(t, span)
	span.Finish()
}

func TestTracer_ChildSpan_nilParentStartsRoot(t *testing.T) {
	tracer := observability.NewTracer()
	span := tracer.ChildSpan("op", nil)
	require.NotNil(t, span)
	span.Finish()
}

func TestTracer_ChildSpan_withParent(t *testing.T) {
	tracer := observability.NewTracer()
	parent := tracer.StartSpan("parent")
	child := tracer.ChildSpan("child", parent)
	require.NotNil(t, child)
	child.Finish()
	parent.Finish()
}

func TestTracer_ConfigureZipkin_constructsWithoutError(t *testing.T) {
	tracer := observability.NewTracer()
	err := tracer.ConfigureZipkin("test-service", "http://127.0.0.1:9999/api/v2/spans", "127.0.0.1:0")
	require.NoError(t, err)
	defer tracer.Close()

	span := tracer.StartSpan("op")
	require.NotNil(t, span)
	span.Finish()
}

func TestTracer_Close_safeWhenUnconfigured(t *testing.T) {
	tracer := observability.NewTracer()
	assert.NoError(t, tracer.Close())
}
