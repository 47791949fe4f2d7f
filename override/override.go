// Package override pre-populates a form from the page query string.
package override

import (
	"strings"

	"ngfw-form/form"
)

// Override is one recognised name=value pair of the query string.
type Override struct {
	Field form.FieldID `json:"field"`
	Name  string       `json:"name"`
	Raw   string       `json:"raw"`
}

// Value interprets the raw token: "on" is a checked box, anything else is
// taken literally.
func (o Override) Value() form.Value {
	if o.Raw == "on" {
		return form.Bool(true)
	}
	return form.String(o.Raw)
}

// Parse extracts overrides from a raw query string, with or without the
// leading '?'. Pairs without '=' and names that are not registered fields are
// dropped. Values are kept verbatim up to the next '=': no percent or '+'
// decoding.
func Parse(rawQuery string, reg *form.Registry) []Override {
	if reg == nil {
		reg = form.Default()
	}
	rawQuery = strings.TrimPrefix(rawQuery, "?")
	var out []Override
	for _, pair := range strings.Split(rawQuery, "&") {
		name, rest, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		id, known := reg.ByName(name)
		if !known {
			continue
		}
		raw, _, _ := strings.Cut(rest, "=")
		out = append(out, Override{Field: id, Name: name, Raw: raw})
	}
	return out
}

// Apply writes each override with its patch checkbox forced on.
func Apply(state *form.State, overrides []Override) error {
	for _, o := range overrides {
		if err := state.SetWithPatch(o.Field, o.Value(), form.PatchOn); err != nil {
			return err
		}
	}
	return nil
}

// Load parses rawQuery against the state's registry and applies the result.
func Load(state *form.State, rawQuery string) ([]Override, error) {
	ovs := Parse(rawQuery, state.Registry())
	return ovs, Apply(state, ovs)
}
