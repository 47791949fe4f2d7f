package form

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// ErrNotNumeric is returned when stepping a control that holds no number.
var ErrNotNumeric = errors.New("control is not numeric")

// Round rounds to one decimal, halves towards positive infinity.
func Round(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}

// FormatNumber renders a slider value the shortest way, "9" rather than "9.0".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// StepUp increments a numeric field by its step.
func (s *State) StepUp(id FieldID) (Value, error) { return s.step(id, 1) }

// StepDown decrements a numeric field by its step.
func (s *State) StepDown(id FieldID) (Value, error) { return s.step(id, -1) }

// step leaves disabled fields untouched and returns their current value.
func (s *State) step(id FieldID, dir float64) (Value, error) {
	f, c, err := s.lookup(id)
	if err != nil {
		return Value{}, err
	}
	if f.Kind != KindNumber || f.Step == 0 {
		return c.value, fmt.Errorf("%s: %w", f.Name, ErrNotNumeric)
	}
	if !c.enabled {
		return c.value, nil
	}
	cur, err := c.value.Float()
	if err != nil {
		return c.value, fmt.Errorf("%s: %w", f.Name, ErrNotNumeric)
	}
	next := String(FormatNumber(Round(cur + dir*f.Step)))
	if err := s.SetValue(id, next); err != nil {
		return Value{}, err
	}
	return next, nil
}
