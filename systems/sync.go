package systems

// syncSprites copies engine positions and velocities, converted to pixels,
// onto every particle entity.
func (s *Simulation) syncSprites() {
	s.positions = s.engine.Positions(s.positions)
	s.velocities = s.engine.Velocities(s.velocities)
	if len(s.positions) == 0 {
		return
	}

	held := s.drag.Body()
	dragging := s.drag.Active()
	meter := float32(s.cfg.World.Meter)

	query := s.particleFilter.Query()
	for query.Next() {
		pos, vel, particle, sprite := query.Get()
		i := int(particle.Body)
		if i >= len(s.positions) {
			continue
		}

		pos.X, pos.Y = s.scale.PointToPixels(s.positions[i])
		vel.X = float32(s.velocities[i].X) * meter
		vel.Y = float32(s.velocities[i].Y) * meter
		sprite.Highlight = dragging && particle.Body == held
	}
}
