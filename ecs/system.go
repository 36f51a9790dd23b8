package ecs

// UpdateSystem marks a system. A system is a struct whose first embedded
// field is UpdateSystem and whose Update method, kept in a file built only
// under the ecsgen tag, is expanded into UpdateGenerated.
type UpdateSystem struct {
	Entities Entities
}

// Entities is the receiver of the iteration DSL inside Update:
//
//	s.Entities.Without[Frozen]().Each(func(p *Position, v *Velocity) { ... })
//
// Calls are rewritten by ecsgen and never run. The methods exist so editors
// resolve the plain forms.
type Entities struct{}

// Each visits every entity that has the component types of fn's parameters.
func (Entities) Each(fn any) {
	panic("ecs: Entities.Each must be expanded by ecsgen")
}

// Without excludes entities that carry any of types.
func (e Entities) Without(types ...ComponentType) Entities {
	return e
}
