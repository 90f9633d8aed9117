package otel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestDisabledIsNoop(t *testing.T) {
	p, err := New(&Config{})
	require.NoError(t, err)
	assert.False(t, p.Enabled())

	_, span := p.Tracer("test").Start(context.Background(), "op")
	assert.False(t, span.IsRecording())
	span.End()
	require.NoError(t, p.Close())
	assert.ErrorIs(t, p.Close(), ErrProviderClosed)
}

func TestInMemoryExport(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	p, err := New(&Config{Enabled: true, Sampler: SamplerConfig{Type: SamplerAlways}}, WithExporter(exp), WithoutGlobal())
	require.NoError(t, err)
	require.True(t, p.Enabled())

	ctx, parent := p.Tracer("test").Start(context.Background(), "parent")
	_, child := p.Tracer("test").Start(ctx, "child")
	child.End()
	parent.End()

	spans := exp.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "child", spans[0].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestInvalidRatio(t *testing.T) {
	_, err := New(&Config{Enabled: true, Sampler: SamplerConfig{Type: SamplerRatio, Ratio: 3}})
	assert.ErrorIs(t, err, ErrInvalidSamplerRatio)
}
