//go:build ecsgen

package game

import (
	"fmt"
	"math"
)

func (s *MoveSystem) Update() {
	dt := float32(0.5)
	// integrate
	s.Entities.Without[Frozen]().Each(func(p *Position, v *Velocity) {
		p.X += v.X * dt * s.Scale
		p.Y = float32(math.Abs(float64(p.Y)))
		s.Entities.Each(func(h *Health) {
			h.HP--
		})
	})
	fmt.Println("moved")
}
