package mapreduce

// Mapper turns one input record into exactly one key/value pair.
//
// Implementations must not share mutable state between calls: the parallel
// strategy invokes Map from many workers at once, in no particular order.
type Mapper[I any, K comparable, V any] interface {
	Map(in I) (KV[K, V], error)
}

// Reducer turns one group into exactly one output record. The same purity rules
// as for Mapper apply.
type Reducer[K comparable, V any, O any] interface {
	Reduce(g Group[K, V]) (O, error)
}

// MapFunc adapts a plain function to the Mapper interface.
type MapFunc[I any, K comparable, V any] func(in I) (KV[K, V], error)

func (f MapFunc[I, K, V]) Map(in I) (KV[K, V], error) {
	return f(in)
}

// ReduceFunc adapts a plain function to the Reducer interface.
type ReduceFunc[K comparable, V any, O any] func(g Group[K, V]) (O, error)

func (f ReduceFunc[K, V, O]) Reduce(g Group[K, V]) (O, error) {
	return f(g)
}
