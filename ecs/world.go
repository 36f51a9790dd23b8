// Package ecs is the runtime the generated units are written against: a
// world of entities, one sparse pool per component type and cached queries.
//
// Query evaluation here is a plain reference implementation. Generated code
// only relies on the shapes: Pool.Items indexed by entity, Query.Count and
// Query.Entities.
package ecs

import (
	"reflect"
	"sync"
)

// Entity identifies an entity within a World. It indexes Pool.Items directly.
type Entity uint32

// ComponentType identifies a component type process-wide.
type ComponentType uint32

var (
	typesMu sync.Mutex
	typeIDs = make(map[reflect.Type]ComponentType)
)

// TypeOf returns the ComponentType of T, assigning one on first use.
func TypeOf[T any]() ComponentType {
	rt := reflect.TypeFor[T]()

	typesMu.Lock()
	defer typesMu.Unlock()
	if id, ok := typeIDs[rt]; ok {
		return id
	}
	id := ComponentType(len(typeIDs))
	typeIDs[rt] = id
	return id
}

// store is the type-erased view of a Pool.
type store interface {
	has(e Entity) bool
	remove(e Entity)
}

// World owns entities and their component pools. It is not safe for
// concurrent mutation.
type World struct {
	alive []bool
	free  []Entity
	pools map[ComponentType]store
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{pools: make(map[ComponentType]store)}
}

// NewEntity allocates an entity, reusing destroyed ids first.
func (w *World) NewEntity() Entity {
	if n := len(w.free); n > 0 {
		e := w.free[n-1]
		w.free = w.free[:n-1]
		w.alive[e] = true
		return e
	}
	e := Entity(len(w.alive))
	w.alive = append(w.alive, true)
	return e
}

// Alive reports whether e exists.
func (w *World) Alive(e Entity) bool {
	return int(e) < len(w.alive) && w.alive[e]
}

// Destroy removes e and all of its components.
func (w *World) Destroy(e Entity) {
	if !w.Alive(e) {
		return
	}
	for _, s := range w.pools {
		s.remove(e)
	}
	w.alive[e] = false
	w.free = append(w.free, e)
}

// Has reports whether e carries a component of type t.
func (w *World) Has(e Entity, t ComponentType) bool {
	s, ok := w.pools[t]
	return ok && s.has(e)
}

// each calls fn for every live entity in ascending id order.
func (w *World) each(fn func(Entity)) {
	for i, ok := range w.alive {
		if ok {
			fn(Entity(i))
		}
	}
}
