// Package combined benchmarks the primitives the stress and SSSP drivers
// combine on every hot-loop iteration: stop-flag polling, tick sampling,
// and ring-buffer enqueue, measured together rather than in isolation so
// the numbers reflect what a worker goroutine actually pays per op.
package combined
