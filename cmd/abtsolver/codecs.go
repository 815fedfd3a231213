package main

import (
	"fmt"

	"abtsolver/model"
	"abtsolver/model/nav2d"
)

// nav2dActionCodec and nav2dObservationCodec let persist.WriteTree/ReadTree
// round-trip nav2d's concrete Action and Observation values, per the
// {serialize} capability the tree format requires of every model.
type nav2dActionCodec struct{}
type nav2dObservationCodec struct{}

func nav2dCodecs() (nav2dActionCodec, nav2dObservationCodec) {
	return nav2dActionCodec{}, nav2dObservationCodec{}
}

func (nav2dActionCodec) Encode(a model.Action) string {
	act := a.(nav2d.Action)
	return fmt.Sprintf("%.17g %.17g %d", act.Speed, act.RotationalSpeed, act.BinNumber)
}

func (nav2dActionCodec) Decode(s string) (model.Action, error) {
	var speed, rot float64
	var bin int
	if _, err := fmt.Sscanf(s, "%g %g %d", &speed, &rot, &bin); err != nil {
		return nil, fmt.Errorf("abtsolver: decode action %q: %w", s, err)
	}
	return nav2d.Action{Speed: speed, RotationalSpeed: rot, BinNumber: bin}, nil
}

func (nav2dObservationCodec) Encode(o model.Observation) string {
	obs := o.(nav2d.Observation)
	if obs.Blank {
		return "blank"
	}
	return fmt.Sprintf("pos %.17g %.17g", obs.Position.X, obs.Position.Y)
}

func (nav2dObservationCodec) Decode(s string) (model.Observation, error) {
	if s == "blank" {
		return nav2d.Observation{Blank: true}, nil
	}
	var x, y float64
	if _, err := fmt.Sscanf(s, "pos %g %g", &x, &y); err != nil {
		return nil, fmt.Errorf("abtsolver: decode observation %q: %w", s, err)
	}
	return nav2d.Observation{Position: nav2d.Point{X: x, Y: y}}, nil
}
