// Package nav2d is the reference model used to exercise the engine
// end-to-end and to ground scenarios S3/S4: straight-line 2-D navigation
// with obstacles and Gaussian speed/turn error, adapted from the ABT
// solver's Nav2DModel.
package nav2d

import (
	"fmt"
	"hash/fnv"
	"math"

	"abtsolver/model"
)

// Point is a 2-D coordinate.
type Point struct{ X, Y float64 }

// Rect is an axis-aligned rectangle, x0<=x1, y0<=y1.
type Rect struct{ X0, Y0, X1, Y1 float64 }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X0 && p.X <= r.X1 && p.Y >= r.Y0 && p.Y <= r.Y1
}

// State holds position and heading direction (radians).
type State struct {
	Position  Point
	Direction float64
}

func (s State) Copy() model.State { return s }

func (s State) Equal(other model.State) bool {
	o, ok := other.(State)
	return ok && o.Position == s.Position && o.Direction == s.Direction
}

func (s State) Hash() uint64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%.6f|%.6f|%.6f", s.Position.X, s.Position.Y, s.Direction)
	return h.Sum64()
}

func (s State) String() string {
	return fmt.Sprintf("(%.3f,%.3f)@%.3f", s.Position.X, s.Position.Y, s.Direction)
}

// Coordinates implements statepool.Locatable.
func (s State) Coordinates() []float64 { return []float64{s.Position.X, s.Position.Y} }

// Action is a discretized (speed, rotationalSpeed) pair; Bin identifies
// which entry of the model's fixed bin table it came from.
type Action struct {
	Speed           float64
	RotationalSpeed float64
	BinNumber       int
}

func (a Action) Copy() model.Action { return a }

func (a Action) Equal(other model.Action) bool {
	o, ok := other.(Action)
	return ok && o.BinNumber == a.BinNumber
}

func (a Action) Hash() uint64 { return uint64(a.BinNumber) + 1 }

func (a Action) String() string {
	return fmt.Sprintf("bin%d(speed=%.3f,rot=%.3f)", a.BinNumber, a.Speed, a.RotationalSpeed)
}

func (a Action) Bin() int { return a.BinNumber }

// Observation is the agent's position when inside an observation area, or
// a "blank" (unobserved) outcome otherwise.
type Observation struct {
	Blank    bool
	Position Point
}

func (o Observation) Copy() model.Observation { return o }

func (o Observation) Equal(other model.Observation) bool {
	p, ok := other.(Observation)
	if !ok {
		return false
	}
	if o.Blank != p.Blank {
		return false
	}
	return o.Blank || o.Position == p.Position
}

func (o Observation) Hash() uint64 {
	if o.Blank {
		return 0
	}
	h := fnv.New64a()
	fmt.Fprintf(h, "%.3f|%.3f", o.Position.X, o.Position.Y)
	return h.Sum64()
}

func (o Observation) String() string {
	if o.Blank {
		return "blank"
	}
	return fmt.Sprintf("obs(%.3f,%.3f)", o.Position.X, o.Position.Y)
}

// Distance implements model.Distancer for the approximate observation
// mapping. Two blank observations are identical (distance 0); a blank and
// a positional observation are maximally distant.
func (o Observation) Distance(other model.Observation) float64 {
	p, ok := other.(Observation)
	if !ok {
		return math.Inf(1)
	}
	if o.Blank && p.Blank {
		return 0
	}
	if o.Blank != p.Blank {
		return math.Inf(1)
	}
	dx := o.Position.X - p.Position.X
	dy := o.Position.Y - p.Position.Y
	return math.Sqrt(dx*dx + dy*dy)
}
