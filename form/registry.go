package form

import (
	"errors"
	"fmt"
)

// FieldID identifies one logical configuration parameter.
type FieldID string

const (
	Version            FieldID = "VERSION"
	DPC                FieldID = "DPC"
	MotorStartSpeed    FieldID = "MOTOR_START_SPEED"
	RemoveKERS         FieldID = "REMOVE_KERS"
	RemoveAutobrake    FieldID = "REMOVE_AUTOBRAKE"
	RemoveChargingMode FieldID = "REMOVE_CHARGING_MODE"
	CCDelay            FieldID = "CC_DELAY"
	CRC                FieldID = "CRC"
	WheelSize          FieldID = "WHEELSIZE"
	ShutdownTime       FieldID = "SHUTDOWN_TIME"
	SL                 FieldID = "SL"
	SLSport            FieldID = "SL_SPORT"
	SLDrive            FieldID = "SL_DRIVE"
	SLPed              FieldID = "SL_PED"
	Amps               FieldID = "AMPS"
	AmpsSport          FieldID = "AMPS_SPORT"
	AmpsDrive          FieldID = "AMPS_DRIVE"
	AmpsPed            FieldID = "AMPS_PED"
	AmpsMax            FieldID = "AMPS_MAX"
	AmpsSportMax       FieldID = "AMPS_SPORT_MAX"
	AmpsDriveMax       FieldID = "AMPS_DRIVE_MAX"
	AmpsPedMax         FieldID = "AMPS_PED_MAX"
	AmpsBrakeMin       FieldID = "AMPS_BRAKE_MIN"
	AmpsBrakeMax       FieldID = "AMPS_BRAKE_MAX"
	Ammeter            FieldID = "AMMETER"
	RFM                FieldID = "RFM"
	RML                FieldID = "RML"
	DMN                FieldID = "DMN"
	EmbedEncKey        FieldID = "EMBED_ENC_KEY"
	CustomEncKey       FieldID = "CUSTOM_ENC_KEY"
	EmbedRandCode      FieldID = "EMBED_RAND_CODE"
	USRegionSpoof      FieldID = "US_REGION_SPOOF"
	AllowSNChange      FieldID = "ALLOW_SN_CHANGE"
	BLM                FieldID = "BLM"
	BLMAlm             FieldID = "BLM_ALM"
	Baud               FieldID = "BAUD"
	Volt               FieldID = "VOLT"
	EcoMode            FieldID = "ECO_MODE"
	PNB                FieldID = "PNB"
	BTS                FieldID = "BTS"
	KML                FieldID = "KML"
	KMLL0              FieldID = "KML_L0"
	KMLL1              FieldID = "KML_L1"
	KMLL2              FieldID = "KML_L2"
)

// Kind is the input type backing a control.
type Kind int

const (
	KindText Kind = iota
	KindNumber
	KindCheckbox
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindCheckbox:
		return "checkbox"
	default:
		return "text"
	}
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "text":
		*k = KindText
	case "number":
		*k = KindNumber
	case "checkbox":
		*k = KindCheckbox
	default:
		return fmt.Errorf("unknown kind %q", b)
	}
	return nil
}

// ErrUnknownField is matched by every *UnknownFieldError.
var ErrUnknownField = errors.New("unknown field")

// UnknownFieldError reports a lookup of an unregistered control.
type UnknownFieldError struct {
	ID FieldID
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", string(e.ID))
}

func (e *UnknownFieldError) Is(target error) bool { return target == ErrUnknownField }

// Field describes one control of the form.
type Field struct {
	ID      FieldID `json:"id"`
	Name    string  `json:"name"`
	Kind    Kind    `json:"kind"`
	Default Value   `json:"default"`
	// Step is the slider increment of numeric fields.
	Step float64 `json:"step,omitempty"`
	// Patch marks fields owning an "include in patch" companion checkbox.
	Patch bool `json:"patch,omitempty"`
	// Governor is the group toggle gating this field, if any.
	Governor FieldID `json:"governor,omitempty"`
	// Static fields only display status and stay disabled.
	Static bool `json:"static,omitempty"`
	// Companion is set on the generated patch checkboxes.
	Companion bool `json:"companion,omitempty"`
}

const defaultEncKey = "FE 80 1C B2 D1 EF 41 A6 A4 17 31 F5 A0 68 24 F0"

func text(id FieldID, name, def string) Field {
	return Field{ID: id, Name: name, Kind: KindText, Default: String(def)}
}

func number(id FieldID, name, def string, step float64) Field {
	return Field{ID: id, Name: name, Kind: KindNumber, Default: String(def), Step: step}
}

func checkbox(id FieldID, name string) Field {
	return Field{ID: id, Name: name, Kind: KindCheckbox, Default: Bool(false)}
}

func patched(f Field) Field {
	f.Patch = true
	return f
}

func governedBy(g FieldID, f Field) Field {
	f.Governor = g
	return f
}

var fields = []Field{
	{ID: Version, Name: "version", Kind: KindText, Default: String(""), Static: true},
	checkbox(DPC, "dpc"),
	patched(number(MotorStartSpeed, "motor_start_speed", "5.0", 0.5)),
	checkbox(RemoveKERS, "remove_kers"),
	checkbox(RemoveAutobrake, "remove_autobrake"),
	checkbox(RemoveChargingMode, "remove_charging_mode"),
	patched(number(CCDelay, "cc_delay", "5", 1)),
	patched(number(CRC, "crc", "300", 10)),
	patched(number(WheelSize, "wheelsize", "8.5", 0.5)),
	patched(number(ShutdownTime, "shutdown_time", "3.0", 0.5)),
	checkbox(SL, "sl_cb"),
	governedBy(SL, number(SLSport, "sl_sport", "25", 1)),
	governedBy(SL, number(SLDrive, "sl_drive", "20", 1)),
	governedBy(SL, number(SLPed, "sl_ped", "5", 1)),
	checkbox(Amps, "amps_cb"),
	governedBy(Amps, number(AmpsSport, "amps_sport", "25000", 500)),
	governedBy(Amps, number(AmpsDrive, "amps_drive", "17000", 500)),
	governedBy(Amps, number(AmpsPed, "amps_ped", "7000", 500)),
	checkbox(AmpsMax, "amps_max_cb"),
	governedBy(AmpsMax, number(AmpsSportMax, "amps_sport_max", "55000", 500)),
	governedBy(AmpsMax, number(AmpsDriveMax, "amps_drive_max", "32000", 500)),
	governedBy(AmpsMax, number(AmpsPedMax, "amps_ped_max", "8000", 500)),
	patched(number(AmpsBrakeMin, "amps_brake_min", "8000", 500)),
	patched(number(AmpsBrakeMax, "amps_brake_max", "52000", 500)),
	checkbox(Ammeter, "ammeter"),
	checkbox(RFM, "rfm"),
	checkbox(RML, "rml"),
	checkbox(DMN, "dmn"),
	patched(text(EmbedEncKey, "embed_enc_key", defaultEncKey)),
	patched(text(CustomEncKey, "custom_enc_key", defaultEncKey)),
	patched(text(EmbedRandCode, "embed_rand_code", "cfw.sh")),
	checkbox(USRegionSpoof, "us_region_spoof"),
	checkbox(AllowSNChange, "allow_sn_change"),
	checkbox(BLM, "blm"),
	governedBy(BLM, checkbox(BLMAlm, "blm_alm")),
	checkbox(Baud, "baud"),
	patched(number(Volt, "volt", "43.01", 0.5)),
	checkbox(EcoMode, "eco_mode"),
	checkbox(PNB, "pnb"),
	checkbox(BTS, "bts"),
	checkbox(KML, "kml"),
	governedBy(KML, number(KMLL0, "kml_l0", "6", 1)),
	governedBy(KML, number(KMLL1, "kml_l1", "12", 1)),
	governedBy(KML, number(KMLL2, "kml_l2", "20", 1)),
}

// Registry is the fixed table of form controls.
type Registry struct {
	fields   []FieldID
	controls []FieldID
	byID     map[FieldID]Field
	byName   map[string]FieldID
	governs  map[FieldID][]FieldID
}

var defaultRegistry = mustRegistry(fields)

// Default returns the registry of the firmware preset form.
func Default() *Registry { return defaultRegistry }

// NewRegistry builds a registry from primary field definitions, generating a
// companion checkbox for every field with Patch set.
func NewRegistry(defs []Field) (*Registry, error) {
	r := &Registry{
		byID:    make(map[FieldID]Field, len(defs)*2),
		byName:  make(map[string]FieldID, len(defs)),
		governs: make(map[FieldID][]FieldID),
	}
	for _, f := range defs {
		if _, dup := r.byID[f.ID]; dup {
			return nil, fmt.Errorf("duplicate field %q", f.ID)
		}
		if _, dup := r.byName[f.Name]; dup {
			return nil, fmt.Errorf("duplicate field name %q", f.Name)
		}
		f.Default = coerce(f.Kind, f.Default)
		f.Companion = false
		r.byID[f.ID] = f
		r.byName[f.Name] = f.ID
		r.fields = append(r.fields, f.ID)
		r.controls = append(r.controls, f.ID)
	}
	for _, id := range r.fields {
		f := r.byID[id]
		if f.Governor != "" {
			g, ok := r.byID[f.Governor]
			if !ok {
				return nil, fmt.Errorf("field %q: %w", f.ID, &UnknownFieldError{ID: f.Governor})
			}
			if g.Kind != KindCheckbox {
				return nil, fmt.Errorf("field %q: governor %q is not a checkbox", f.ID, g.ID)
			}
			r.governs[g.ID] = append(r.governs[g.ID], f.ID)
		}
		if f.Patch {
			c := Field{
				ID:        PatchID(f.ID),
				Name:      f.Name + "_cb",
				Kind:      KindCheckbox,
				Default:   Bool(false),
				Companion: true,
			}
			if _, dup := r.byID[c.ID]; dup {
				return nil, fmt.Errorf("companion %q collides with a field", c.ID)
			}
			r.byID[c.ID] = c
			r.controls = append(r.controls, c.ID)
			r.governs[c.ID] = []FieldID{f.ID}
		}
	}
	return r, nil
}

func mustRegistry(defs []Field) *Registry {
	r, err := NewRegistry(defs)
	if err != nil {
		panic(err)
	}
	return r
}

// PatchID names the companion checkbox of id. The companion only exists when
// the field is registered with Patch set.
func PatchID(id FieldID) FieldID { return id + "_CB" }

// AllFieldIDs returns the primary fields in registration order.
func (r *Registry) AllFieldIDs() []FieldID {
	return append([]FieldID(nil), r.fields...)
}

// Controls returns every control, primary fields first, then companions.
func (r *Registry) Controls() []FieldID {
	return append([]FieldID(nil), r.controls...)
}

// Lookup returns the definition of a field or companion.
func (r *Registry) Lookup(id FieldID) (Field, error) {
	f, ok := r.byID[id]
	if !ok {
		return Field{}, &UnknownFieldError{ID: id}
	}
	return f, nil
}

// Resolve maps a FieldID to its form field name.
func (r *Registry) Resolve(id FieldID) (string, error) {
	f, err := r.Lookup(id)
	if err != nil {
		return "", err
	}
	return f.Name, nil
}

// ByName finds a primary field by its exact field name. Companion names are
// not addressable.
func (r *Registry) ByName(name string) (FieldID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// ControlByName finds any control, companions included, by field name.
func (r *Registry) ControlByName(name string) (FieldID, bool) {
	if id, ok := r.byName[name]; ok {
		return id, true
	}
	for _, id := range r.controls {
		if r.byID[id].Name == name {
			return id, true
		}
	}
	return "", false
}

// PatchOf returns the companion checkbox of id.
func (r *Registry) PatchOf(id FieldID) (FieldID, bool) {
	f, ok := r.byID[id]
	if !ok || !f.Patch {
		return "", false
	}
	return PatchID(id), true
}

// Governs returns the fields whose enabled state follows checkbox id.
func (r *Registry) Governs(id FieldID) []FieldID {
	return r.governs[id]
}
