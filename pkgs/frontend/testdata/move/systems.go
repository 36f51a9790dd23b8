package game

import "github.com/aledsdavies/ecsgen/ecs"

type MoveSystem struct {
	ecs.UpdateSystem
	moveSystemECS

	Scale float32
}

// Helper embeds the marker second and is not a system.
type Helper struct {
	Name string
	ecs.UpdateSystem
}
