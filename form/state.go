package form

import (
	"errors"
	"fmt"
)

// ErrNotCheckbox is returned when a toggle targets a non-checkbox control.
var ErrNotCheckbox = errors.New("control is not a checkbox")

// ChangeKind tells subscribers what part of a control changed.
type ChangeKind int

const (
	// ValueChanged fires on every value write, even when the value is the same.
	ValueChanged ChangeKind = iota
	// EnabledChanged fires when the enabled flag flips.
	EnabledChanged
	// Reset fires once after every control was restored to its default.
	Reset
)

func (k ChangeKind) String() string {
	switch k {
	case ValueChanged:
		return "value"
	case EnabledChanged:
		return "enabled"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

func (k ChangeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *ChangeKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "value":
		*k = ValueChanged
	case "enabled":
		*k = EnabledChanged
	case "reset":
		*k = Reset
	default:
		return fmt.Errorf("unknown change kind %q", b)
	}
	return nil
}

// Change is delivered to subscribers after a control was written.
type Change struct {
	Kind    ChangeKind `json:"kind"`
	ID      FieldID    `json:"id,omitempty"`
	Name    string     `json:"name,omitempty"`
	Value   Value      `json:"value"`
	Enabled bool       `json:"enabled"`
}

type control struct {
	value   Value
	enabled bool
}

type subscriber struct {
	id int
	fn func(Change)
}

// State owns the current value and enabled flag of every control of one form.
// It is not safe for concurrent use; callers serialize access.
type State struct {
	reg      *Registry
	controls map[FieldID]*control
	subs     []subscriber
	nextSub  int
	exempt   map[FieldID]bool
}

// New creates a form populated with registry defaults. A nil registry means
// Default(). Patch governance and the eco-mode link are subscribed first, so
// they run before any later subscriber.
func New(reg *Registry) *State {
	if reg == nil {
		reg = Default()
	}
	s := &State{
		reg:      reg,
		controls: make(map[FieldID]*control, len(reg.controls)),
		exempt:   make(map[FieldID]bool),
	}
	for _, id := range reg.controls {
		s.controls[id] = &control{}
	}
	s.restore()
	s.Subscribe(s.govern)
	if s.hasEcoFields() {
		s.Subscribe(s.ecoLink)
	}
	return s
}

// Registry returns the registry the form was built from.
func (s *State) Registry() *Registry { return s.reg }

func (s *State) lookup(id FieldID) (Field, *control, error) {
	f, err := s.reg.Lookup(id)
	if err != nil {
		return Field{}, nil, err
	}
	return f, s.controls[id], nil
}

// Value returns the current value. Checkbox controls hold booleans.
func (s *State) Value(id FieldID) (Value, error) {
	_, c, err := s.lookup(id)
	if err != nil {
		return Value{}, err
	}
	return c.value, nil
}

// SetValue writes a value, coercing it to the control's kind, and notifies
// subscribers.
func (s *State) SetValue(id FieldID, v Value) error {
	f, c, err := s.lookup(id)
	if err != nil {
		return err
	}
	c.value = coerce(f.Kind, v)
	s.emit(Change{Kind: ValueChanged, ID: id, Name: f.Name, Value: c.value, Enabled: c.enabled})
	return nil
}

// Toggle sets the checked state of a checkbox control.
func (s *State) Toggle(id FieldID, checked bool) error {
	f, err := s.reg.Lookup(id)
	if err != nil {
		return err
	}
	if f.Kind != KindCheckbox {
		return fmt.Errorf("%s: %w", f.Name, ErrNotCheckbox)
	}
	return s.SetValue(id, Bool(checked))
}

// Enabled reports whether the control accepts input.
func (s *State) Enabled(id FieldID) (bool, error) {
	_, c, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	return c.enabled, nil
}

// SetEnabled sets the enabled flag. Subscribers are notified only when the
// flag actually flips.
func (s *State) SetEnabled(id FieldID, enabled bool) error {
	f, c, err := s.lookup(id)
	if err != nil {
		return err
	}
	if c.enabled == enabled {
		return nil
	}
	c.enabled = enabled
	s.emit(Change{Kind: EnabledChanged, ID: id, Name: f.Name, Value: c.value, Enabled: enabled})
	return nil
}

// Reset restores every control to its registry default and enables all
// controls except static ones. Subscribers see a single Reset change.
func (s *State) Reset() {
	s.restore()
	s.emit(Change{Kind: Reset})
}

func (s *State) restore() {
	for _, id := range s.reg.controls {
		f := s.reg.byID[id]
		c := s.controls[id]
		c.value = f.Default
		c.enabled = !f.Static
	}
}

// Subscribe registers fn for every change. The returned func removes it.
func (s *State) Subscribe(fn func(Change)) (cancel func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *State) emit(c Change) {
	subs := append([]subscriber(nil), s.subs...)
	for _, sub := range subs {
		sub.fn(c)
	}
}

// ControlState is one entry of a Snapshot.
type ControlState struct {
	ID        FieldID `json:"id"`
	Name      string  `json:"name"`
	Kind      Kind    `json:"kind"`
	Value     Value   `json:"value"`
	Enabled   bool    `json:"enabled"`
	Companion bool    `json:"companion,omitempty"`
	Patch     FieldID `json:"patch,omitempty"`
}

// Snapshot is a copy of every control in registry order.
type Snapshot []ControlState

// Get returns the entry for id.
func (sn Snapshot) Get(id FieldID) (ControlState, bool) {
	for _, c := range sn {
		if c.ID == id {
			return c, true
		}
	}
	return ControlState{}, false
}

// Snapshot copies the current state of every control.
func (s *State) Snapshot() Snapshot {
	out := make(Snapshot, 0, len(s.reg.controls))
	for _, id := range s.reg.controls {
		f := s.reg.byID[id]
		c := s.controls[id]
		cs := ControlState{
			ID:        id,
			Name:      f.Name,
			Kind:      f.Kind,
			Value:     c.value,
			Enabled:   c.enabled,
			Companion: f.Companion,
		}
		if f.Patch {
			cs.Patch = PatchID(id)
		}
		out = append(out, cs)
	}
	return out
}
