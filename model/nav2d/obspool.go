package nav2d

import "abtsolver/obsmap"

// ObservationPool builds approximate observation mappings parameterized by
// the model's SBT.maxObservationDistance, matching the original model's
// use of an ApproximateObservationMapping.
type ObservationPool struct {
	dmax float64
}

func newObservationPool(dmax float64) *ObservationPool {
	return &ObservationPool{dmax: dmax}
}

func (p *ObservationPool) CreateMapping() obsmap.Mapping {
	return obsmap.NewApproximate(p.dmax)
}
