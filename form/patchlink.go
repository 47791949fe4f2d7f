package form

// Patch selects what SetWithPatch does with a field's companion checkbox.
type Patch int

const (
	// PatchUnchanged leaves the companion alone.
	PatchUnchanged Patch = iota
	PatchOff
	PatchOn
)

// SetWithPatch writes a field value and, unless p is PatchUnchanged, sets the
// field's companion checkbox. Fields without a companion ignore p.
func (s *State) SetWithPatch(id FieldID, v Value, p Patch) error {
	if err := s.SetValue(id, v); err != nil {
		return err
	}
	if p == PatchUnchanged {
		return nil
	}
	cb, ok := s.reg.PatchOf(id)
	if !ok {
		return nil
	}
	return s.SetValue(cb, Bool(p == PatchOn))
}

// SetGovernanceExempt replaces the set of fields whose enabled flag is never
// driven by their governing checkbox.
func (s *State) SetGovernanceExempt(ids ...FieldID) {
	s.exempt = make(map[FieldID]bool, len(ids))
	for _, id := range ids {
		s.exempt[id] = true
	}
}

// Exempt reports whether id is excluded from governance.
func (s *State) Exempt(id FieldID) bool { return s.exempt[id] }

// Govern applies the checkbox rule to one field: a field holding a non-zero
// value is enabled exactly when its checkbox is checked. Zero-valued and
// exempt fields keep their enabled flag.
func (s *State) Govern(id FieldID, checked bool) error {
	_, c, err := s.lookup(id)
	if err != nil {
		return err
	}
	if c.value.neutral() || s.exempt[id] {
		return nil
	}
	return s.SetEnabled(id, checked)
}

// govern runs on every checkbox write and gates the fields it governs.
func (s *State) govern(c Change) {
	if c.Kind != ValueChanged {
		return
	}
	for _, id := range s.reg.Governs(c.ID) {
		// governed ids were validated by NewRegistry
		_ = s.Govern(id, c.Value.Bool())
	}
}
