package nav2d

import (
	"abtsolver/actionmap"
	"abtsolver/model"
)

// ActionPool discretizes (speed, rotationalSpeed) into a fixed bin table:
// bin 0 is "stay", bins 1..n-1 are forward motion at MaxSpeed combined
// with a small fixed set of rotational speeds, matching the original
// model's use of a DiscretizedActionPool.
type ActionPool struct {
	bins []Action
}

func newActionPool(cfg Config) *ActionPool {
	rotations := []float64{-cfg.MaxRotationalSpeed, 0, cfg.MaxRotationalSpeed}
	bins := []Action{{Speed: 0, RotationalSpeed: 0, BinNumber: 0}}
	for i, rot := range rotations {
		bins = append(bins, Action{Speed: cfg.MaxSpeed, RotationalSpeed: rot, BinNumber: i + 1})
	}
	return &ActionPool{bins: bins}
}

func (p *ActionPool) CreateMapping() actionmap.Mapping {
	seq := make([]int, len(p.bins))
	for i := range p.bins {
		seq[i] = i
	}
	return actionmap.NewDiscretized(p.sample, seq)
}

func (p *ActionPool) sample(bin int) model.Action {
	return p.bins[bin]
}
