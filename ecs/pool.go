package ecs

// Pool stores the components of one type. Items is indexed by entity id; a
// slot is only meaningful when Has reports true for that entity.
type Pool[T any] struct {
	Items   []T
	present []bool
}

// GetPool returns the pool of T in w, creating it on first use.
func GetPool[T any](w *World) *Pool[T] {
	t := TypeOf[T]()
	if s, ok := w.pools[t]; ok {
		return s.(*Pool[T])
	}
	p := &Pool[T]{}
	w.pools[t] = p
	return p
}

// Set stores v for e, growing the pool as needed.
func (p *Pool[T]) Set(e Entity, v T) {
	if n := int(e) + 1; n > len(p.Items) {
		p.Items = append(p.Items, make([]T, n-len(p.Items))...)
		p.present = append(p.present, make([]bool, n-len(p.present))...)
	}
	p.Items[e] = v
	p.present[e] = true
}

// Get returns the component of e, or nil when e has none.
func (p *Pool[T]) Get(e Entity) *T {
	if !p.has(e) {
		return nil
	}
	return &p.Items[e]
}

// Has reports whether e has a component in the pool.
func (p *Pool[T]) Has(e Entity) bool {
	return p.has(e)
}

// Remove clears the component of e.
func (p *Pool[T]) Remove(e Entity) {
	p.remove(e)
}

func (p *Pool[T]) has(e Entity) bool {
	return int(e) < len(p.present) && p.present[e]
}

func (p *Pool[T]) remove(e Entity) {
	if !p.has(e) {
		return
	}
	var zero T
	p.Items[e] = zero
	p.present[e] = false
}
