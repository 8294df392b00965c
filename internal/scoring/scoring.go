package scoring

import (
	"fmt"
	"math"
)

// Strategy maps a single submission to awarded points. Implementations are
// pure: no clock, no randomness, no state.
//
// Callers round elapsed to 0.01s before scoring; strategies only round their
// output.
type Strategy interface {
	Score(correct bool, elapsed float64, maxPoints, minPoints int) int
	Name() string
}

// Timeout is the elapsed-seconds threshold at and beyond which a correct
// answer is worth nothing.
const Timeout = 10.0

// instantWindow is the sub-second window that still earns full points.
const instantWindow = 1.0

// Linear awards maxPoints below one second, decays linearly to minPoints as
// elapsed approaches the timeout, and zero from the timeout on.
type Linear struct{}

func (Linear) Name() string { return "linear" }

func (Linear) Score(correct bool, elapsed float64, maxPoints, minPoints int) int {
	if !correct || elapsed >= Timeout {
		return 0
	}
	if elapsed < instantWindow {
		return maxPoints
	}
	t := (elapsed - instantWindow) / (Timeout - instantWindow)
	score := int(math.Round(float64(maxPoints) - t*float64(maxPoints-minPoints)))
	if score < minPoints {
		return minPoints
	}
	return score
}

// FixedCap is the simplified policy: a fixed cap decayed by a pure linear
// multiplier, floored for any correct in-time answer. The per-question
// max/min parameters are ignored.
type FixedCap struct {
	Cap   int
	Floor int
}

func (FixedCap) Name() string { return "fixedcap" }

func (f FixedCap) Score(correct bool, elapsed float64, _, _ int) int {
	if !correct || elapsed >= Timeout {
		return 0
	}
	score := int(math.Round(float64(f.Cap) * (1.0 - elapsed/Timeout)))
	if score < f.Floor {
		return f.Floor
	}
	return score
}

// DefaultFixedCap mirrors the constants used by the simplified variants.
var DefaultFixedCap = FixedCap{Cap: 1000, Floor: 50}

// ByName resolves a configured policy name to a strategy. Linear is the
// canonical default.
func ByName(name string) (Strategy, error) {
	switch name {
	case "", "linear":
		return Linear{}, nil
	case "fixedcap":
		return DefaultFixedCap, nil
	default:
		return nil, fmt.Errorf("unknown scoring policy %q", name)
	}
}
