package main

import (
	"fmt"
	"os"

	"abtsolver/config"
	"abtsolver/mapfile"
	"abtsolver/model/nav2d"
	"abtsolver/session"
)

// loadConfig reads the key=value config file named by --config. Defaults
// for keys it omits are applied later, by buildNav2DConfig.
func loadConfig(path string) (config.Values, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abtsolver: open config: %w", err)
	}
	defer f.Close()
	v, err := config.Load(f)
	if err != nil {
		return nil, fmt.Errorf("abtsolver: parse config: %w", err)
	}
	return v, nil
}

func loadMap(path string) (*mapfile.Map, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, session.NewConfigError(fmt.Errorf("abtsolver: open map: %w", err))
	}
	defer f.Close()
	m, err := mapfile.ReadMap(f)
	if err != nil {
		return nil, session.NewConfigError(fmt.Errorf("abtsolver: parse map: %w", err))
	}
	return m, nil
}

func parseErrorType(s string) nav2d.ErrorType {
	switch s {
	case "proportional":
		return nav2d.ProportionalGaussian
	case "absolute":
		return nav2d.AbsoluteGaussian
	default:
		return nav2d.NoError
	}
}

func rectOf(a mapfile.Area) nav2d.Rect {
	return nav2d.Rect{X0: a.Rect.X0, Y0: a.Rect.Y0, X1: a.Rect.X1, Y1: a.Rect.Y1}
}

// buildNav2DConfig merges a parsed map and a key=value config table into
// the nav2d.Config the model needs, using the fallback values written below
// (config.DefaultDiscountFactor for the discount) for anything the file
// leaves unset.
func buildNav2DConfig(m *mapfile.Map, v config.Values) nav2d.Config {
	cfg := nav2d.Config{
		TimeStepLength:         v.Float(config.KeyTimeStepLength, 1.0),
		CostPerUnitTime:        v.Float(config.KeyCostPerUnitTime, 0.0),
		InterpolationStepCount: v.Int(config.KeyInterpolationStepCount, 20),
		CrashPenalty:           v.Float(config.KeyCrashPenalty, 100.0),
		GoalReward:             v.Float(config.KeyGoalReward, 100.0),
		MaxSpeed:               v.Float(config.KeyMaxSpeed, 1.0),
		CostPerUnitDistance:    v.Float(config.KeyCostPerUnitDistance, 1.0),
		SpeedErrorType:         parseErrorType(v.String(config.KeySpeedErrorType, "none")),
		SpeedErrorSD:           v.Float(config.KeySpeedErrorSD, 0.0),
		MaxRotationalSpeed:     v.Float(config.KeyMaxRotationalSpeed, 1.0),
		CostPerRevolution:      v.Float(config.KeyCostPerRevolution, 1.0),
		RotationErrorType:      parseErrorType(v.String(config.KeyRotationErrorType, "none")),
		RotationErrorSD:        v.Float(config.KeyRotationErrorSD, 0.0),
		MaxObservationDistance: v.Float(config.KeyMaxObservationDistance, 1.0),
		Discount:               v.Float("problem.discount", config.DefaultDiscountFactor),
		MapArea:                rectOf(m.World),
	}
	for _, a := range m.Areas {
		switch a.Type {
		case mapfile.Start:
			cfg.StartAreas = append(cfg.StartAreas, rectOf(a))
		case mapfile.Goal:
			cfg.GoalAreas = append(cfg.GoalAreas, rectOf(a))
		case mapfile.Obstacle:
			cfg.ObstacleAreas = append(cfg.ObstacleAreas, rectOf(a))
		case mapfile.Observation:
			cfg.ObservationAreas = append(cfg.ObservationAreas, rectOf(a))
		}
	}
	return cfg
}

// buildModel loads the map and config files named by the persistent flags
// and wires them into a ready-to-run nav2d.Model.
func buildModel(mapPath, configPath string) (*nav2d.Model, error) {
	m, err := loadMap(mapPath)
	if err != nil {
		return nil, err
	}
	v, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return nav2d.NewModel(buildNav2DConfig(m, v)), nil
}
