package mapreduce

import "time"

func (e *Engine[I, K, V, O]) runSequential(inputs []I) ([]O, error) {
	start := time.Now()
	mapped := make([]KV[K, V], 0, len(inputs))
	for i, in := range inputs {
		kv, err := e.mapOne(i, in)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, kv)
	}
	e.phaseDone("sequential", "Mapping", start, len(inputs))

	start = time.Now()
	groups, err := Shuffle(mapped)
	if err != nil {
		return nil, err
	}
	e.phaseDone("sequential", "Shuffling", start, len(mapped))

	start = time.Now()
	out := make([]O, 0, len(groups))
	for _, g := range groups {
		o, err := e.reduceOne(g)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	e.phaseDone("sequential", "Reducing", start, len(groups))
	return out, nil
}
