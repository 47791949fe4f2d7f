package form

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Value is the content of a control: a string for text and numeric inputs,
// a bool for checkboxes.
type Value struct {
	s      string
	b      bool
	isBool bool
}

// String returns a text value.
func String(s string) Value { return Value{s: s} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{b: b, isBool: true} }

// IsBool reports whether v holds a boolean.
func (v Value) IsBool() bool { return v.isBool }

// Bool coerces v to a boolean. Non-empty strings are true.
func (v Value) Bool() bool {
	if v.isBool {
		return v.b
	}
	return v.s != ""
}

// String coerces v to text.
func (v Value) String() string {
	if v.isBool {
		return strconv.FormatBool(v.b)
	}
	return v.s
}

// Float parses the value as a number.
func (v Value) Float() (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
}

// neutral reports whether a text value reads as zero: empty, blank or a
// number equal to 0. Booleans are never neutral.
func (v Value) neutral() bool {
	if v.isBool {
		return false
	}
	s := strings.TrimSpace(v.s)
	if s == "" {
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f == 0
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.isBool {
		return json.Marshal(v.b)
	}
	return json.Marshal(v.s)
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*v = Bool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = String(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*v = String(n.String())
	return nil
}

// coerce converts v to the representation a control of kind k stores.
func coerce(k Kind, v Value) Value {
	if k == KindCheckbox {
		return Bool(v.Bool())
	}
	return String(v.String())
}

func (v Value) MarshalYAML() (any, error) {
	if v.isBool {
		return v.b, nil
	}
	return v.s, nil
}
