package preset

import (
	"fmt"

	"ngfw-form/form"
)

// Resolver applies presets to a form.
type Resolver struct {
	state *form.State
}

// NewResolver returns a resolver writing to state.
func NewResolver(state *form.State) *Resolver {
	return &Resolver{state: state}
}

// ApplyDefault resets the form and applies the baseline shared by all
// devices. No device-specific governance exemption stays active.
func (r *Resolver) ApplyDefault() error {
	r.state.SetGovernanceExempt()
	return r.applyDefault()
}

func (r *Resolver) applyDefault() error {
	r.state.Reset()
	if err := r.DisableAllAdvanced(false); err != nil {
		return err
	}
	return r.assign(defaults)
}

// ApplyDevice applies the default preset followed by the device's table.
func (r *Resolver) ApplyDevice(id DeviceID) error {
	d, err := Lookup(id)
	if err != nil {
		return err
	}
	r.state.SetGovernanceExempt(exemptions(d.preset)...)
	if err := r.applyDefault(); err != nil {
		return err
	}
	if err := r.apply(d.preset); err != nil {
		return fmt.Errorf("preset %s: %w", id, err)
	}
	return nil
}

// DisableAllAdvanced switches every control in Advanced off, or back on.
func (r *Resolver) DisableAllAdvanced(disable bool) error {
	for _, id := range Advanced {
		if err := r.state.SetEnabled(id, !disable); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) apply(p *Preset) error {
	if p.Base != nil {
		if err := r.apply(p.Base); err != nil {
			return err
		}
	}
	if p.DisableAdvanced {
		if err := r.DisableAllAdvanced(true); err != nil {
			return err
		}
	}
	if err := r.assign(p.Values); err != nil {
		return err
	}
	for _, t := range p.Enabled {
		if err := r.state.SetEnabled(t.Field, t.Enabled); err != nil {
			return err
		}
	}
	return nil
}

func (r *Resolver) assign(values []Assignment) error {
	for _, a := range values {
		if err := r.state.SetWithPatch(a.Field, a.Value, a.Patch); err != nil {
			return err
		}
	}
	return nil
}

// exemptions collects the exempt fields of p and its bases.
func exemptions(p *Preset) []form.FieldID {
	var out []form.FieldID
	for ; p != nil; p = p.Base {
		out = append(out, p.Exempt...)
	}
	return out
}
