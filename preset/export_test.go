package preset

import "ngfw-form/form"

// Touched lists the controls a device preset writes, directly or through a
// patch companion.
func Touched(id DeviceID) map[form.FieldID]bool {
	d, err := Lookup(id)
	if err != nil {
		return nil
	}
	out := make(map[form.FieldID]bool)
	for p := d.preset; p != nil; p = p.Base {
		if p.DisableAdvanced {
			for _, a := range Advanced {
				out[a] = true
			}
		}
		for _, a := range p.Values {
			out[a.Field] = true
			if a.Patch != form.PatchUnchanged {
				out[form.PatchID(a.Field)] = true
			}
		}
		for _, t := range p.Enabled {
			out[t.Field] = true
		}
	}
	return out
}
