package mapreduce

import "fmt"

// Shuffle groups pairs by key. Groups come out in first-seen key order and each
// group keeps its values in arrival order.
func Shuffle[K comparable, V any](pairs []KV[K, V]) ([]Group[K, V], error) {
	index := make(map[K]int)
	groups := make([]Group[K, V], 0)
	for _, kv := range pairs {
		i, err := groupIndex(index, kv.Key, len(groups))
		if err != nil {
			return nil, err
		}
		if i == len(groups) {
			groups = append(groups, Group[K, V]{Key: kv.Key})
		}
		groups[i].Values = append(groups[i].Values, kv.Value)
	}
	return groups, nil
}

// groupIndex returns the group slot of key, registering next for unseen keys.
// Hashing an interface key that holds an uncomparable value panics at runtime.
func groupIndex[K comparable](index map[K]int, key K, next int) (slot int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &UnhashableKeyError{Key: key, Reason: fmt.Sprint(r)}
		}
	}()
	if i, ok := index[key]; ok {
		return i, nil
	}
	index[key] = next
	return next, nil
}
