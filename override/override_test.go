package override_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngfw-form/form"
	"ngfw-form/override"
)

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		name  string
		query string
		want  []override.Override
	}{
		{"empty", "", nil},
		{"leading mark", "?wheelsize=9.0", []override.Override{{Field: form.WheelSize, Name: "wheelsize", Raw: "9.0"}}},
		{"no equals", "wheelsize&crc=400", []override.Override{{Field: form.CRC, Name: "crc", Raw: "400"}}},
		{"unknown name", "bogus=foo&volt=60.01", []override.Override{{Field: form.Volt, Name: "volt", Raw: "60.01"}}},
		{"case sensitive", "WHEELSIZE=9.0", nil},
		{"companion not addressable", "wheelsize_cb=on", nil},
		{"value ends at next equals", "embed_rand_code=a=b", []override.Override{{Field: form.EmbedRandCode, Name: "embed_rand_code", Raw: "a"}}},
		{"percent kept", "custom_enc_key=FE%2080", []override.Override{{Field: form.CustomEncKey, Name: "custom_enc_key", Raw: "FE%2080"}}},
		{"plus kept", "embed_rand_code=cfw+sh", []override.Override{{Field: form.EmbedRandCode, Name: "embed_rand_code", Raw: "cfw+sh"}}},
		{"bad escape kept", "embed_rand_code=100%", []override.Override{{Field: form.EmbedRandCode, Name: "embed_rand_code", Raw: "100%"}}},
		{"empty value", "crc=", []override.Override{{Field: form.CRC, Name: "crc", Raw: ""}}},
		{"order kept", "rfm=on&dpc=on", []override.Override{
			{Field: form.RFM, Name: "rfm", Raw: "on"},
			{Field: form.DPC, Name: "dpc", Raw: "on"},
		}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, override.Parse(tc.query, nil))
		})
	}
}

func TestOverrideValue(t *testing.T) {
	assert.Equal(t, form.Bool(true), override.Override{Raw: "on"}.Value())
	assert.Equal(t, form.String("off"), override.Override{Raw: "off"}.Value())
	assert.Equal(t, form.String("9.0"), override.Override{Raw: "9.0"}.Value())
}

func TestLoadForcesPatchOn(t *testing.T) {
	s := form.New(nil)
	require.NoError(t, s.SetWithPatch(form.CRC, form.String("300"), form.PatchOff))
	en, err := s.Enabled(form.CRC)
	require.NoError(t, err)
	require.False(t, en)

	ovs, err := override.Load(s, "crc=450&dpc=on")
	require.NoError(t, err)
	assert.Len(t, ovs, 2)

	v, err := s.Value(form.CRC)
	require.NoError(t, err)
	assert.Equal(t, form.String("450"), v)

	cb, err := s.Value(form.PatchID(form.CRC))
	require.NoError(t, err)
	assert.Equal(t, form.Bool(true), cb)

	en, err = s.Enabled(form.CRC)
	require.NoError(t, err)
	assert.True(t, en)

	dpc, err := s.Value(form.DPC)
	require.NoError(t, err)
	assert.Equal(t, form.Bool(true), dpc)
}

func TestEncodedOnIsNotChecked(t *testing.T) {
	s := form.New(nil)
	ovs, err := override.Load(s, "embed_rand_code=%6Fn")
	require.NoError(t, err)
	require.Len(t, ovs, 1)
	assert.Equal(t, form.String("%6Fn"), ovs[0].Value())

	v, err := s.Value(form.EmbedRandCode)
	require.NoError(t, err)
	assert.Equal(t, form.String("%6Fn"), v)
}

func TestLoadCheckboxWithoutOn(t *testing.T) {
	s := form.New(nil)
	_, err := override.Load(s, "rfm=1")
	require.NoError(t, err)

	v, err := s.Value(form.RFM)
	require.NoError(t, err)
	assert.True(t, v.Bool())
}
