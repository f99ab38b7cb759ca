package opt

import (
	"fmt"
	"io"
)

// Tracer receives optimizer state information while the strategy runs.
type Tracer interface {
	// Enabled tests whether generation g is traced.
	Enabled(g uint64) bool
	// Trace receives the generation number, the best fitness, and the
	// minimum and maximum mutation step.
	Trace(g uint64, y, minStep, maxStep float64)
}

// NoTracing discards all state information.
type NoTracing struct{}

// Enabled always returns false.
func (NoTracing) Enabled(g uint64) bool { return false }

// Trace does nothing.
func (NoTracing) Trace(g uint64, y, minStep, maxStep float64) {}

// WriterTracer formats state information to an output writer every
// modulus generations.
type WriterTracer struct {
	w       io.Writer
	modulus uint64
}

// NewWriterTracer creates a tracer writing to w every modulus
// generations. A modulus of zero disables tracing.
func NewWriterTracer(w io.Writer, modulus uint64) *WriterTracer {
	return &WriterTracer{w: w, modulus: modulus}
}

// Enabled tests whether generation g is traced.
func (t *WriterTracer) Enabled(g uint64) bool {
	return t.modulus > 0 && g%t.modulus == 0
}

// Trace writes one formatted state line.
func (t *WriterTracer) Trace(g uint64, y, minStep, maxStep float64) {
	fmt.Fprintf(t.w, "%8d %12.4e %12.4e %12.4e\n", g, y, minStep, maxStep)
}
