package nav2d

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"

	"abtsolver/actionmap"
	"abtsolver/model"
	"abtsolver/obsmap"
)

// ErrorType mirrors the model's problem.speedErrorType /
// problem.rotationErrorType configuration key (§6).
type ErrorType int

const (
	NoError ErrorType = iota
	ProportionalGaussian
	AbsoluteGaussian
)

// Config holds the configuration keys of §6 that nav2d consumes.
type Config struct {
	TimeStepLength         float64
	CostPerUnitTime        float64
	InterpolationStepCount int
	CrashPenalty           float64
	GoalReward             float64
	MaxSpeed               float64
	CostPerUnitDistance    float64
	SpeedErrorType         ErrorType
	SpeedErrorSD           float64
	MaxRotationalSpeed     float64
	CostPerRevolution      float64
	RotationErrorType      ErrorType
	RotationErrorSD        float64
	MaxObservationDistance float64
	Discount               float64

	MapArea          Rect
	StartAreas       []Rect
	GoalAreas        []Rect
	ObstacleAreas    []Rect
	ObservationAreas []Rect
}

// Model is the nav2d generative model.
type Model struct {
	cfg Config

	actionPool      *ActionPool
	observationPool *ObservationPool
}

func NewModel(cfg Config) *Model {
	return &Model{
		cfg:             cfg,
		actionPool:      newActionPool(cfg),
		observationPool: newObservationPool(cfg.MaxObservationDistance),
	}
}

func (m *Model) ActionPool() actionmap.Pool           { return m.actionPool }
func (m *Model) ObservationPool() obsmap.Pool          { return m.observationPool }
func (m *Model) DiscountFactor() float64               { return m.cfg.Discount }
func (m *Model) DefaultValue() float64 {
	return -(m.cfg.CrashPenalty + m.cfg.MaxSpeed*m.cfg.CostPerUnitDistance +
		m.cfg.MaxRotationalSpeed*m.cfg.CostPerRevolution) / (1 - m.cfg.Discount)
}

func (m *Model) isInside(p Point, areas []Rect) bool {
	for _, a := range areas {
		if a.Contains(p) {
			return true
		}
	}
	return false
}

func (m *Model) IsTerminal(s model.State) bool {
	st := s.(State)
	return m.isInside(st.Position, m.cfg.GoalAreas)
}

func (m *Model) SampleInitialState(rng *rand.Rand) model.State {
	area := m.cfg.StartAreas[rng.Intn(len(m.cfg.StartAreas))]
	return State{
		Position:  randomPointIn(rng, area),
		Direction: rng.Float64() * 2 * math.Pi,
	}
}

func (m *Model) SampleStateUniform(rng *rand.Rand) model.State {
	return State{
		Position:  randomPointIn(rng, m.cfg.MapArea),
		Direction: rng.Float64() * 2 * math.Pi,
	}
}

func randomPointIn(rng *rand.Rand, r Rect) Point {
	return Point{
		X: r.X0 + rng.Float64()*(r.X1-r.X0),
		Y: r.Y0 + rng.Float64()*(r.Y1-r.Y0),
	}
}

func (m *Model) applyError(rng *rand.Rand, value float64, errType ErrorType, sd float64) float64 {
	switch errType {
	case ProportionalGaussian:
		return value * (1 + rng.NormFloat64()*sd)
	case AbsoluteGaussian:
		return value + rng.NormFloat64()*sd
	default:
		return value
	}
}

// tryPath walks the interpolated arc from state under (speed,
// rotationalSpeed), stopping early on collision or on reaching the goal.
// The center-of-rotation term is parenthesized per the intended formula
// flagged in the design notes: direction + sign(turnAmount)*(pi/2), not
// the original's unparenthesized (and therefore always-true) comparison.
func (m *Model) tryPath(state State, speed, rotationalSpeed float64) (State, float64, bool) {
	position := state.Position
	direction := state.Direction
	turnAmount := rotationalSpeed * m.cfg.TimeStepLength

	var radius float64
	if rotationalSpeed != 0 {
		radius = speed / (2 * math.Pi * rotationalSpeed)
	}

	hasCollision := false
	inGoal := false

	currentScalar := 0.0
	currentPosition := position
	currentDirection := direction

	rotationSign := 0.25
	if turnAmount <= 0 {
		rotationSign = -0.25
	}
	center := Point{
		X: position.X + radius*math.Cos(direction+rotationSign*math.Pi),
		Y: position.Y + radius*math.Sin(direction+rotationSign*math.Pi),
	}

	steps := m.cfg.InterpolationStepCount
	if steps <= 0 {
		steps = 1
	}
	for step := 1; step <= steps; step++ {
		prevPosition := currentPosition
		prevDirection := currentDirection
		prevScalar := currentScalar

		currentScalar = float64(step) / float64(steps)
		if turnAmount == 0 {
			currentPosition = Point{
				X: position.X + currentScalar*speed*math.Cos(direction),
				Y: position.Y + currentScalar*speed*math.Sin(direction),
			}
		} else {
			currentDirection = direction + currentScalar*turnAmount
			currentPosition = Point{
				X: center.X + radius*math.Cos(currentDirection+rotationSign*math.Pi),
				Y: center.Y + radius*math.Sin(currentDirection+rotationSign*math.Pi),
			}
		}

		if !m.cfg.MapArea.Contains(currentPosition) || m.isInside(currentPosition, m.cfg.ObstacleAreas) {
			currentScalar = prevScalar
			currentPosition = prevPosition
			currentDirection = prevDirection
			hasCollision = true
			break
		}
		if m.isInside(currentPosition, m.cfg.GoalAreas) {
			inGoal = true
			break
		}
	}

	var actualDistance, actualTurn float64
	if turnAmount == 0 {
		dx := currentPosition.X - position.X
		dy := currentPosition.Y - position.Y
		actualDistance = math.Sqrt(dx*dx + dy*dy)
	} else {
		actualTurn = math.Abs(currentScalar * turnAmount)
		actualDistance = 2 * math.Pi * actualTurn * radius
	}

	reward := -m.cfg.CostPerUnitTime * m.cfg.TimeStepLength
	reward -= m.cfg.CostPerUnitDistance * actualDistance
	reward -= m.cfg.CostPerRevolution * actualTurn
	if inGoal {
		reward += m.cfg.GoalReward
	}
	if hasCollision {
		reward -= m.cfg.CrashPenalty
	}

	return State{Position: currentPosition, Direction: currentDirection}, reward, hasCollision
}

func (m *Model) GenerateNextState(rng *rand.Rand, s model.State, a model.Action) (model.State, error) {
	st := s.(State)
	act := a.(Action)
	speed := m.applyError(rng, act.Speed, m.cfg.SpeedErrorType, m.cfg.SpeedErrorSD)
	rot := m.applyError(rng, act.RotationalSpeed, m.cfg.RotationErrorType, m.cfg.RotationErrorSD)
	next, _, _ := m.tryPath(st, speed, rot)
	return next, nil
}

func (m *Model) GenerateObservation(rng *rand.Rand, a model.Action, next model.State) (model.Observation, error) {
	st := next.(State)
	if m.isInside(st.Position, m.cfg.ObservationAreas) {
		return Observation{Position: st.Position}, nil
	}
	return Observation{Blank: true}, nil
}

func (m *Model) Step(rng *rand.Rand, s model.State, a model.Action) (model.StepResult, error) {
	st, ok := s.(State)
	if !ok {
		return model.StepResult{}, fmt.Errorf("nav2d: unexpected state type %T", s)
	}
	act, ok := a.(Action)
	if !ok {
		return model.StepResult{}, fmt.Errorf("nav2d: unexpected action type %T", a)
	}
	speed := m.applyError(rng, act.Speed, m.cfg.SpeedErrorType, m.cfg.SpeedErrorSD)
	rot := m.applyError(rng, act.RotationalSpeed, m.cfg.RotationErrorType, m.cfg.RotationErrorSD)
	next, reward, _ := m.tryPath(st, speed, rot)

	obs, err := m.GenerateObservation(rng, a, next)
	if err != nil {
		return model.StepResult{}, err
	}
	return model.StepResult{
		Action:      a,
		NextState:   next,
		Observation: obs,
		Reward:      reward,
		IsTerminal:  m.IsTerminal(next),
	}, nil
}

// HeuristicValue estimates the remaining discounted cost to the nearest
// goal area assuming straight-line travel at MaxSpeed with no further
// collisions — an admissible-ish lower bound matching §4.1's contract.
func (m *Model) HeuristicValue(s model.State) float64 {
	st := s.(State)
	if len(m.cfg.GoalAreas) == 0 {
		return m.DefaultValue()
	}
	best := math.Inf(1)
	for _, g := range m.cfg.GoalAreas {
		cx := (g.X0 + g.X1) / 2
		cy := (g.Y0 + g.Y1) / 2
		dx := cx - st.Position.X
		dy := cy - st.Position.Y
		d := math.Sqrt(dx*dx + dy*dy)
		if d < best {
			best = d
		}
	}
	if best == 0 {
		return m.cfg.GoalReward
	}
	costPerStep := m.cfg.CostPerUnitDistance*m.cfg.MaxSpeed + m.cfg.CostPerUnitTime
	stepsToGoal := best / m.cfg.MaxSpeed
	// Sum of a discounted per-step cost over stepsToGoal steps, plus the
	// discounted goal reward at arrival.
	value := 0.0
	discount := 1.0
	for i := 0.0; i < stepsToGoal; i++ {
		value -= discount * costPerStep
		discount *= m.cfg.Discount
	}
	value += discount * m.cfg.GoalReward
	return value
}

// LoadChanges is a no-op: nav2d's changes are driven externally through
// mapfile.ReadChanges and session.ApplyChanges rather than through the
// model itself.
func (m *Model) LoadChanges(path string) ([]int64, error) { return nil, nil }
