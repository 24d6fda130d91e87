package pq

import "fmt"

// Variant names the concrete queue implementation cmd/pqbench and
// cmd/sssp select at flag-parse time, replacing the original's
// compile-time PQ_* macro selection with runtime polymorphism over the
// PriorityQueue interface.
type Variant string

const (
	VariantMultiQueue Variant = "multiqueue"
	VariantLinden     Variant = "linden"
	VariantSpraylist  Variant = "spraylist"
)

// Variants lists every selectable queue variant, in the order they
// should appear in CLI help text.
var Variants = []Variant{VariantMultiQueue, VariantLinden, VariantSpraylist}

// New builds the named variant for numThreads concurrent handles. seed
// and cfg only affect VariantMultiQueue; the wrapper variants ignore
// them since the underlying structures have no analogous knobs exposed
// through this adapter contract.
func NewVariant(variant Variant, numThreads int, seed uint64, cfg Config) (PriorityQueue, error) {
	switch variant {
	case VariantMultiQueue, "":
		return New(numThreads, seed, cfg), nil
	case VariantLinden:
		return NewWrapperAdapter(NewLindenStyleAdapter(), numThreads, nil)
	case VariantSpraylist:
		return NewWrapperAdapter(NewSpraylistStyleAdapter(), numThreads, nil)
	default:
		return nil, fmt.Errorf("pq: unknown variant %q", variant)
	}
}
