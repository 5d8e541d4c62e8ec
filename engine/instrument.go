package engine

import (
	"context"
	"time"

	"github.com/artrec/hunterd/engine/metrics"
)

// instrumentedEmbedder decorates an EmbeddingService with call metrics.
type instrumentedEmbedder struct {
	inner    EmbeddingService
	exporter *metrics.PrometheusExporter
}

func newInstrumentedEmbedder(inner EmbeddingService, exporter *metrics.PrometheusExporter) EmbeddingService {
	return &instrumentedEmbedder{inner: inner, exporter: exporter}
}

func (e *instrumentedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vector, err := e.inner.Embed(ctx, text)
	e.exporter.RecordEmbeddingCall(e.inner.Model(), time.Since(start), err == nil)
	return vector, err
}

func (e *instrumentedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, err := e.inner.EmbedBatch(ctx, texts)
	e.exporter.RecordEmbeddingCall(e.inner.Model(), time.Since(start), err == nil)
	return vectors, err
}

func (e *instrumentedEmbedder) Model() string {
	return e.inner.Model()
}

func (e *instrumentedEmbedder) Dimensions() int {
	return e.inner.Dimensions()
}
