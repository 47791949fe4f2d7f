package preset

import "ngfw-form/form"

func set(id form.FieldID, v string) Assignment {
	return Assignment{Field: id, Value: form.String(v), Patch: form.PatchOff}
}

func flag(id form.FieldID, b bool) Assignment {
	return Assignment{Field: id, Value: form.Bool(b)}
}

func seed(id form.FieldID, v string) Assignment {
	return Assignment{Field: id, Value: form.String(v)}
}

func disable(ids ...form.FieldID) []Toggle {
	out := make([]Toggle, 0, len(ids))
	for _, id := range ids {
		out = append(out, Toggle{Field: id})
	}
	return out
}

func enable(ids ...form.FieldID) []Toggle {
	out := make([]Toggle, 0, len(ids))
	for _, id := range ids {
		out = append(out, Toggle{Field: id, Enabled: true})
	}
	return out
}

func patchOf(id form.FieldID) form.FieldID { return form.PatchID(id) }

// Advanced lists the expert controls switched as a block by
// Resolver.DisableAllAdvanced.
var Advanced = []form.FieldID{
	patchOf(form.EmbedEncKey),
	patchOf(form.CustomEncKey),
	patchOf(form.EmbedRandCode),
	form.DMN,
	form.RML,
	form.RFM,
	form.BTS,
	form.BLM,
	form.DPC,
	form.SL,
	patchOf(form.MotorStartSpeed),
	form.RemoveAutobrake,
	form.RemoveChargingMode,
	form.RemoveKERS,
	patchOf(form.CCDelay),
	patchOf(form.CRC),
	patchOf(form.WheelSize),
	patchOf(form.ShutdownTime),
	form.Amps,
	form.AmpsMax,
	patchOf(form.AmpsBrakeMin),
	patchOf(form.AmpsBrakeMax),
	form.Ammeter,
	patchOf(form.Volt),
	form.Baud,
	form.EcoMode,
	form.PNB,
	form.KML,
	form.USRegionSpoof,
	form.AllowSNChange,
}

const stockEncKey = "FE 80 1C B2 D1 EF 41 A6 A4 17 31 F5 A0 68 24 F0"

// defaults is applied before every device preset. The KML thresholds leave
// their companions alone.
var defaults = []Assignment{
	flag(form.DPC, false),
	set(form.MotorStartSpeed, "5.0"),
	flag(form.RemoveAutobrake, false),
	flag(form.RemoveKERS, false),
	flag(form.RemoveChargingMode, false),
	set(form.CCDelay, "5"),
	set(form.CRC, "300"),
	set(form.WheelSize, "8.5"),
	set(form.ShutdownTime, "3.0"),
	flag(form.SL, false),
	set(form.SLSport, "25"),
	set(form.SLDrive, "20"),
	set(form.SLPed, "5"),
	flag(form.Amps, false),
	flag(form.AmpsMax, false),
	set(form.AmpsPed, "7000"),
	set(form.AmpsPedMax, "8000"),
	set(form.AmpsBrakeMin, "8000"),

	flag(form.Ammeter, false),
	flag(form.RFM, false),
	flag(form.RML, false),
	set(form.EmbedEncKey, stockEncKey),
	set(form.CustomEncKey, stockEncKey),
	set(form.EmbedRandCode, "cfw.sh"),
	flag(form.USRegionSpoof, false),
	flag(form.AllowSNChange, false),
	flag(form.BLM, false),
	flag(form.BLMAlm, false),

	flag(form.Baud, false),
	set(form.Volt, "43.01"),

	flag(form.EcoMode, false),
	flag(form.PNB, false),
	flag(form.BTS, false),

	flag(form.KML, false),
	seed(form.KMLL0, "6"),
	seed(form.KMLL1, "12"),
	seed(form.KMLL2, "20"),
}

// xiaomiLocked are the controls the older Xiaomi firmwares cannot patch.
var xiaomiLocked = []form.FieldID{
	form.DMN,
	patchOf(form.EmbedEncKey),
	patchOf(form.EmbedRandCode),
	form.USRegionSpoof,
	form.AllowSNChange,
}

var pro2 = &Preset{
	Values: []Assignment{
		set(form.AmpsSport, "25000"),
		set(form.AmpsDrive, "17000"),
		set(form.AmpsSportMax, "55000"),
		set(form.AmpsDriveMax, "32000"),
		set(form.AmpsBrakeMax, "52000"),
	},
	Enabled: disable(xiaomiLocked...),
}

var mi1S = &Preset{
	Values: []Assignment{
		set(form.AmpsSport, "20000"),
		set(form.AmpsDrive, "15000"),
		set(form.AmpsSportMax, "35000"),
		set(form.AmpsDriveMax, "28000"),
		set(form.AmpsBrakeMax, "52000"),
	},
	Enabled: disable(xiaomiLocked...),
}

var lite = &Preset{
	Values: []Assignment{
		set(form.SLSport, "20"),
		set(form.SLDrive, "15"),
		set(form.AmpsSport, "17000"),
		set(form.AmpsDrive, "0"),
		set(form.AmpsSportMax, "32000"),
		set(form.AmpsDriveMax, "0"),
		set(form.AmpsBrakeMax, "22000"),
	},
	Enabled: disable(append([]form.FieldID{form.RFM}, xiaomiLocked...)...),
}

var mi3 = &Preset{
	Values: []Assignment{
		set(form.AmpsSport, "26500"),
		set(form.AmpsDrive, "15000"),
		set(form.AmpsSportMax, "55000"),
		set(form.AmpsDriveMax, "28000"),
		set(form.AmpsBrakeMax, "47000"),
	},
	Enabled: disable(xiaomiLocked...),
}

var mi4Pro = &Preset{
	Values: []Assignment{
		set(form.AmpsSport, "26500"),
		set(form.AmpsDrive, "19000"),
		set(form.AmpsSportMax, "55000"),
		set(form.AmpsDriveMax, "35000"),
		set(form.AmpsBrakeMax, "57000"),
		set(form.WheelSize, "10.0"),
	},
	Enabled: disable(
		form.DMN,
		form.RML,
		form.BTS,
		form.BLMAlm,
		patchOf(form.EmbedEncKey),
		patchOf(form.EmbedRandCode),
		form.USRegionSpoof,
		form.AllowSNChange,
	),
	Exempt: []form.FieldID{form.BLMAlm},
}

var mi4Max = &Preset{
	DisableAdvanced: true,
	Values: []Assignment{
		set(form.Volt, "60.01"),
	},
	Enabled: append(enable(
		patchOf(form.CCDelay),
		form.RFM,
		form.SL,
		form.RemoveAutobrake,
		form.RemoveChargingMode,
		patchOf(form.Volt),
		patchOf(form.CustomEncKey),
	), disable(form.USRegionSpoof, form.AllowSNChange)...),
}

var mi4Plus = &Preset{Base: mi4Max}

var f2Base = &Preset{
	Values: []Assignment{
		set(form.SLSport, "25"),
		set(form.SLDrive, "20"),
		set(form.SLPed, "15"),
		set(form.AmpsPed, "9000"),
		set(form.AmpsDrive, "18000"),
		set(form.AmpsPedMax, "30000"),
		set(form.AmpsDriveMax, "40000"),
		set(form.AmpsSportMax, "72000"),
		set(form.WheelSize, "10.0"),
		set(form.Volt, "45.01"),
	},
	Enabled: disable(
		form.BTS,
		form.BLM,
		patchOf(form.MotorStartSpeed),
		patchOf(form.CRC),
		patchOf(form.WheelSize),
		patchOf(form.ShutdownTime),
		patchOf(form.AmpsBrakeMin),
		patchOf(form.AmpsBrakeMax),
		form.Ammeter,
		form.EcoMode,
		form.PNB,
		form.USRegionSpoof,
	),
}

var f2Pro = &Preset{
	Base: f2Base,
	Values: []Assignment{
		set(form.AmpsDrive, "20000"),
		set(form.AmpsSport, "28000"),
	},
}

var f2Plus = &Preset{
	Base:   f2Base,
	Values: []Assignment{set(form.AmpsSport, "26000")},
}

var f2 = &Preset{
	Base:   f2Base,
	Values: []Assignment{set(form.AmpsSport, "24000")},
}

var g2 = &Preset{
	Values: []Assignment{
		set(form.SLSport, "25"),
		set(form.SLDrive, "20"),
		set(form.SLPed, "15"),
		set(form.AmpsPed, "8000"),
		set(form.AmpsDrive, "17000"),
		set(form.AmpsSport, "32340"),
		set(form.AmpsPedMax, "35000"),
		set(form.AmpsDriveMax, "55000"),
		set(form.AmpsSportMax, "80000"),
		set(form.WheelSize, "10.0"),
		set(form.Volt, "45.01"),
	},
	Enabled: disable(
		form.BTS,
		form.BLM,
		patchOf(form.MotorStartSpeed),
		patchOf(form.CRC),
		patchOf(form.CCDelay),
		form.KML,
		patchOf(form.WheelSize),
		patchOf(form.ShutdownTime),
		patchOf(form.AmpsBrakeMin),
		patchOf(form.AmpsBrakeMax),
		form.Ammeter,
		form.Baud,
		form.EcoMode,
		form.PNB,
		form.USRegionSpoof,
	),
}

var zt3Pro = &Preset{
	DisableAdvanced: true,
	Enabled: enable(
		form.RML,
		patchOf(form.EmbedEncKey),
		patchOf(form.EmbedRandCode),
		patchOf(form.CustomEncKey),
		form.RFM,
		form.USRegionSpoof,
		form.AllowSNChange,
	),
}

var g3 = &Preset{
	DisableAdvanced: true,
	Enabled: enable(
		form.RML,
		patchOf(form.EmbedEncKey),
		patchOf(form.EmbedRandCode),
		patchOf(form.CustomEncKey),
		form.USRegionSpoof,
		form.AllowSNChange,
	),
}

var devices = []Device{
	{ID: Pro2, Name: "Mi Pro 2", Family: Xiaomi, preset: pro2},
	{ID: Mi1S, Name: "Mi 1S", Family: Xiaomi, preset: mi1S},
	{ID: Lite, Name: "Mi Lite", Family: Xiaomi, preset: lite},
	{ID: Mi3, Name: "Mi 3", Family: Xiaomi, preset: mi3},
	{ID: Mi4Pro, Name: "Mi 4 Pro", Family: Xiaomi, preset: mi4Pro},
	{ID: Mi4Plus, Name: "Mi 4 Pro Plus", Family: Xiaomi, preset: mi4Plus},
	{ID: Mi4Max, Name: "Mi 4 Pro Max", Family: Xiaomi, preset: mi4Max},
	{ID: F2Pro, Name: "Ninebot F2 Pro", Family: Ninebot, preset: f2Pro},
	{ID: F2Plus, Name: "Ninebot F2 Plus", Family: Ninebot, preset: f2Plus},
	{ID: F2, Name: "Ninebot F2", Family: Ninebot, preset: f2},
	{ID: G2, Name: "Ninebot G2", Family: Ninebot, preset: g2},
	{ID: ZT3Pro, Name: "Ninebot ZT3 Pro", Family: Ninebot, preset: zt3Pro},
	{ID: G3, Name: "Ninebot G3", Family: Ninebot, preset: g3},
}

var byID = func() map[DeviceID]Device {
	m := make(map[DeviceID]Device, len(devices))
	for _, d := range devices {
		m[d.ID] = d
	}
	return m
}()
