package arena

// Advance moves p one tick toward its target and returns the new state.
//
// The desired acceleration is target-pos, capped at MaxAcc; the resulting
// velocity is capped at MaxSpeed. A disk that leaves [r, size-r] on an axis
// is mirrored back across the wall and its velocity on that axis negated.
func Advance(p Player, width, height float64) Player {
	acc := p.Target.Sub(p.Pos)
	if acc.Len2() > MaxAcc*MaxAcc {
		acc = acc.Scale(MaxAcc)
	}
	p.Speed = p.Speed.Add(acc)
	if p.Speed.Len2() > MaxSpeed*MaxSpeed {
		p.Speed = p.Speed.Scale(MaxSpeed)
	}
	p.Pos = p.Pos.Add(p.Speed)
	p.Pos.X, p.Speed.X = bounce(p.Pos.X, p.Speed.X, p.Radius, width-p.Radius)
	p.Pos.Y, p.Speed.Y = bounce(p.Pos.Y, p.Speed.Y, p.Radius, height-p.Radius)
	return p
}

// bounce reflects pos back into [lo, hi] and flips the velocity component.
func bounce(pos, v, lo, hi float64) (float64, float64) {
	switch {
	case pos < lo:
		pos = 2*lo - pos
		v = -v
	case pos > hi:
		pos = 2*hi - pos
		v = -v
	}
	// A reflection larger than the corridor would overshoot the far wall.
	if pos > hi {
		pos = hi
	}
	if pos < lo {
		pos = lo
	}
	return pos, v
}

// NextTurn advances every player one tick, resolves item pickups and returns
// the resulting snapshot. gs is not modified.
//
// Players claim items in index order: an item touched by several players in
// the same tick is awarded once, to the lowest-indexed of them. Once Turn
// exceeds MaxTurns the game is over and NextTurn returns an unchanged copy.
func (gs *GameState) NextTurn() *GameState {
	next := gs.Clone()
	if gs.Terminal() {
		return next
	}

	for i := range next.Players {
		next.Players[i] = Advance(next.Players[i], next.Width, next.Height)
	}
	for i := range next.Players {
		p := &next.Players[i]
		kept := next.Items[:0]
		for _, it := range next.Items {
			if it.Touches(p) {
				p.Score++
				continue
			}
			kept = append(kept, it)
		}
		next.Items = kept
	}
	next.Turn++
	return next
}
