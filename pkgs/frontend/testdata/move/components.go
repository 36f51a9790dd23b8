package game

type Position struct{ X, Y float32 }

type Velocity struct{ X, Y float32 }

type Health struct{ HP int }

type Frozen struct{}
