package lut

import "sync"

// Registry builds tables lazily, one per sample rate, and shares them.
type Registry[C Cell[C]] struct {
	grid     Grid
	designer Designer[C]

	mu     sync.Mutex
	tables map[float64]*Table[C]
}

// NewRegistry returns an empty registry for grid and designer.
func NewRegistry[C Cell[C]](grid Grid, designer Designer[C]) *Registry[C] {
	return &Registry[C]{
		grid:     grid,
		designer: designer,
		tables:   make(map[float64]*Table[C]),
	}
}

// Get returns the table for sampleRate, building it on first use.
func (r *Registry[C]) Get(sampleRate float64) (*Table[C], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.tables[sampleRate]; ok {
		return t, nil
	}

	t, err := New(sampleRate, r.grid, r.designer)
	if err != nil {
		return nil, err
	}

	r.tables[sampleRate] = t

	return t, nil
}

// Len returns the number of tables built so far.
func (r *Registry[C]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.tables)
}
