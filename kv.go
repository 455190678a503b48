package mapreduce

// KV is the key/value pair a mapper emits for one input record.
type KV[K comparable, V any] struct {
	Key   K
	Value V
}

// Group holds every value the map phase emitted under one key, in the order the
// values reached the shuffle stage.
type Group[K comparable, V any] struct {
	Key    K
	Values []V
}
