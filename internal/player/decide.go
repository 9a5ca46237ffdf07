package player

import (
	"github.com/talgya/polyhex/internal/hex"
	"github.com/talgya/polyhex/internal/polyhex"
)

// Candidate is a cell waiting to be placed.
type Candidate struct {
	Centre polyhex.Feature
	Edges  [6]polyhex.Feature
}

// Rotate returns the candidate turned by steps sides.
func (c Candidate) Rotate(steps int) Candidate {
	out := Candidate{Centre: c.Centre}
	for i := range out.Edges {
		out.Edges[i] = c.Edges[hex.Side(i+steps)]
	}
	return out
}

// Matches counts the sides of slot whose placed neighbour shows the same
// feature as the candidate's edge on that side.
func (c Candidate) Matches(slot BorderSlot) int {
	n := 0
	for i, side := range slot.Sides {
		if side != polyhex.Placeholder && side == c.Edges[i] {
			n++
		}
	}
	return n
}

// Decision is the outcome of one decide step.
type Decision struct {
	Hand      int // index into the hand
	Rotation  int
	Matches   int
	Placement Placement
}

// Decide picks the hand candidate, border slot and rotation with the most
// matching sides. Ties go to the earliest hand entry, then the lowest
// border index, then the smallest rotation. ok is false when either the
// hand or the border is empty.
func Decide(snap *Snapshot, hand []Candidate) (d Decision, ok bool) {
	best := -1
	for h, c := range hand {
		for _, slot := range snap.Border {
			for rot := 0; rot < 6; rot++ {
				turned := c.Rotate(rot)
				if m := turned.Matches(slot); m > best {
					best = m
					d = Decision{
						Hand:     h,
						Rotation: rot,
						Matches:  m,
						Placement: Placement{
							Q:      slot.Q,
							R:      slot.R,
							Centre: turned.Centre,
							Edges:  turned.Edges[:],
						},
					}
				}
			}
		}
	}
	return d, best >= 0
}
