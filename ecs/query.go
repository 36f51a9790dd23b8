package ecs

// Query is the cached set of entities that have every included component
// type and none of the excluded ones. Entities is recomputed by Refresh.
type Query struct {
	Entities []Entity

	world   *World
	include []ComponentType
	exclude []ComponentType
}

// NewQuery creates a query over the given component types and evaluates it.
func NewQuery(w *World, include ...ComponentType) *Query {
	q := &Query{world: w, include: include}
	q.Refresh()
	return q
}

// Without adds excluded component types and re-evaluates the query.
func (q *Query) Without(types ...ComponentType) *Query {
	q.exclude = append(q.exclude, types...)
	q.Refresh()
	return q
}

// Refresh recomputes Entities from the current world state.
func (q *Query) Refresh() {
	q.Entities = q.Entities[:0]
	q.world.each(func(e Entity) {
		if q.matches(e) {
			q.Entities = append(q.Entities, e)
		}
	})
}

// Count returns the number of matched entities.
func (q *Query) Count() int {
	return len(q.Entities)
}

func (q *Query) matches(e Entity) bool {
	for _, t := range q.include {
		if !q.world.Has(e, t) {
			return false
		}
	}
	for _, t := range q.exclude {
		if q.world.Has(e, t) {
			return false
		}
	}
	return true
}
