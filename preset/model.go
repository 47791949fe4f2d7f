package preset

import (
	"errors"
	"fmt"

	"ngfw-form/form"
)

// DeviceID names a supported scooter model as used by the device selector.
type DeviceID string

const (
	Pro2    DeviceID = "pro2"
	Mi1S    DeviceID = "1s"
	Lite    DeviceID = "lite"
	Mi3     DeviceID = "mi3"
	Mi4Pro  DeviceID = "4pro"
	Mi4Plus DeviceID = "4plus"
	Mi4Max  DeviceID = "4max"
	F2Pro   DeviceID = "f2pro"
	F2Plus  DeviceID = "f2plus"
	F2      DeviceID = "f2"
	G2      DeviceID = "g2"
	ZT3Pro  DeviceID = "zt3pro"
	G3      DeviceID = "g3"
)

// Family groups devices sharing one firmware lineage.
type Family string

const (
	Xiaomi  Family = "xiaomi"
	Ninebot Family = "ninebot"
)

// ErrUnsupportedDevice is matched by every *UnsupportedDeviceError.
var ErrUnsupportedDevice = errors.New("unsupported device")

// UnsupportedDeviceError reports a device outside the known selection.
type UnsupportedDeviceError struct {
	Device string
}

func (e *UnsupportedDeviceError) Error() string {
	return fmt.Sprintf("unsupported device %q", e.Device)
}

func (e *UnsupportedDeviceError) Is(target error) bool { return target == ErrUnsupportedDevice }

// Assignment writes a value to a field. Patch controls the field's companion
// checkbox the same way form.State.SetWithPatch does.
type Assignment struct {
	Field form.FieldID
	Value form.Value
	Patch form.Patch
}

// Toggle sets the enabled flag of a field or companion checkbox.
type Toggle struct {
	Field   form.FieldID
	Enabled bool
}

// Preset is the literal configuration of one device. It is applied on top of
// the default preset in this order: Base, DisableAdvanced, Values, Enabled.
type Preset struct {
	// Base is applied first when several devices share one table.
	Base *Preset
	// DisableAdvanced disables every advanced field before Values.
	DisableAdvanced bool
	Values          []Assignment
	Enabled         []Toggle
	// Exempt fields ignore their governing checkbox on this device.
	Exempt []form.FieldID
}

// Device is one entry of the device selector.
type Device struct {
	ID     DeviceID `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Family Family   `json:"family" yaml:"family"`

	preset *Preset
}

// ParseDevice validates a selector value.
func ParseDevice(s string) (DeviceID, error) {
	id := DeviceID(s)
	if _, ok := byID[id]; !ok {
		return "", &UnsupportedDeviceError{Device: s}
	}
	return id, nil
}

// Lookup returns the device entry for id.
func Lookup(id DeviceID) (Device, error) {
	d, ok := byID[id]
	if !ok {
		return Device{}, &UnsupportedDeviceError{Device: string(id)}
	}
	return d, nil
}

// Devices returns the selector entries in display order.
func Devices() []Device {
	return append([]Device(nil), devices...)
}

// FamilyOf returns the firmware family of id.
func FamilyOf(id DeviceID) (Family, error) {
	d, err := Lookup(id)
	if err != nil {
		return "", err
	}
	return d.Family, nil
}
