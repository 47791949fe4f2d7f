package form

var ecoFields = []FieldID{EcoMode, PNB, SL, SLPed, Amps, AmpsPed, AmpsMax, AmpsPedMax}

func (s *State) hasEcoFields() bool {
	for _, id := range ecoFields {
		if _, ok := s.reg.byID[id]; !ok {
			return false
		}
	}
	return true
}

// ecoLink turns pedestrian mode into eco mode. While a group toggle is off,
// the pedestrian field it would gate follows the eco checkbox instead.
func (s *State) ecoLink(c Change) {
	if c.Kind != ValueChanged || c.ID != EcoMode {
		return
	}
	on := c.Value.Bool()
	pairs := []struct{ group, ped FieldID }{
		{SL, SLPed},
		{Amps, AmpsPed},
		{AmpsMax, AmpsPedMax},
	}
	for _, p := range pairs {
		if !s.controls[p.group].value.Bool() {
			_ = s.Govern(p.ped, on)
		}
	}
	_ = s.SetValue(PNB, Bool(on))
	if !on {
		return
	}
	_ = s.SetWithPatch(SLPed, String("15"), PatchOff)
	_ = s.SetWithPatch(AmpsPed, String("13000"), PatchOff)
	_ = s.SetWithPatch(AmpsPedMax, String("26000"), PatchOff)
}
