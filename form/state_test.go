package form_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngfw-form/form"
)

func mustValue(t *testing.T, s *form.State, id form.FieldID) form.Value {
	t.Helper()
	v, err := s.Value(id)
	require.NoError(t, err)
	return v
}

func mustEnabled(t *testing.T, s *form.State, id form.FieldID) bool {
	t.Helper()
	e, err := s.Enabled(id)
	require.NoError(t, err)
	return e
}

func TestNewStateHasDefaults(t *testing.T) {
	s := form.New(nil)

	assert.Equal(t, form.String("8.5"), mustValue(t, s, form.WheelSize))
	assert.Equal(t, form.Bool(false), mustValue(t, s, form.RFM))
	assert.Equal(t, form.Bool(false), mustValue(t, s, form.PatchID(form.WheelSize)))
	assert.True(t, mustEnabled(t, s, form.WheelSize))
	assert.False(t, mustEnabled(t, s, form.Version), "status fields stay disabled")
}

func TestSetValueCoercesToKind(t *testing.T) {
	s := form.New(nil)

	require.NoError(t, s.SetValue(form.RFM, form.String("on")))
	assert.Equal(t, form.Bool(true), mustValue(t, s, form.RFM))

	require.NoError(t, s.SetValue(form.RFM, form.String("")))
	assert.Equal(t, form.Bool(false), mustValue(t, s, form.RFM))

	require.NoError(t, s.SetValue(form.EmbedRandCode, form.Bool(true)))
	assert.Equal(t, form.String("true"), mustValue(t, s, form.EmbedRandCode))
}

func TestUnknownFieldAccess(t *testing.T) {
	s := form.New(nil)
	_, err := s.Value("NOPE")
	assert.ErrorIs(t, err, form.ErrUnknownField)
	assert.ErrorIs(t, s.SetValue("NOPE", form.String("1")), form.ErrUnknownField)
	assert.ErrorIs(t, s.SetEnabled("NOPE", true), form.ErrUnknownField)
	assert.ErrorIs(t, s.Toggle(form.WheelSize, true), form.ErrNotCheckbox)
}

func TestSubscribeAndCancel(t *testing.T) {
	s := form.New(nil)
	var got []form.Change
	cancel := s.Subscribe(func(c form.Change) { got = append(got, c) })

	require.NoError(t, s.SetValue(form.CRC, form.String("400")))
	require.Len(t, got, 1)
	assert.Equal(t, form.ValueChanged, got[0].Kind)
	assert.Equal(t, form.CRC, got[0].ID)
	assert.Equal(t, "crc", got[0].Name)
	assert.Equal(t, form.String("400"), got[0].Value)

	// no notification when the flag does not change
	require.NoError(t, s.SetEnabled(form.CRC, true))
	assert.Len(t, got, 1)
	require.NoError(t, s.SetEnabled(form.CRC, false))
	require.Len(t, got, 2)
	assert.Equal(t, form.EnabledChanged, got[1].Kind)

	cancel()
	require.NoError(t, s.SetValue(form.CRC, form.String("500")))
	assert.Len(t, got, 2)
}

func TestResetRestoresDefaults(t *testing.T) {
	s := form.New(nil)
	var kinds []form.ChangeKind
	s.Subscribe(func(c form.Change) { kinds = append(kinds, c.Kind) })

	require.NoError(t, s.SetValue(form.WheelSize, form.String("10")))
	require.NoError(t, s.SetEnabled(form.RFM, false))
	kinds = nil

	s.Reset()
	assert.Equal(t, []form.ChangeKind{form.Reset}, kinds)
	assert.Equal(t, form.String("8.5"), mustValue(t, s, form.WheelSize))
	assert.True(t, mustEnabled(t, s, form.RFM))
}

func TestSnapshot(t *testing.T) {
	s := form.New(nil)
	sn := s.Snapshot()
	assert.Len(t, sn, len(form.Default().Controls()))

	ws, ok := sn.Get(form.WheelSize)
	require.True(t, ok)
	assert.Equal(t, "wheelsize", ws.Name)
	assert.Equal(t, form.PatchID(form.WheelSize), ws.Patch)

	cb, ok := sn.Get(form.PatchID(form.WheelSize))
	require.True(t, ok)
	assert.True(t, cb.Companion)

	_, ok = sn.Get("NOPE")
	assert.False(t, ok)
}

func TestValueJSON(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want form.Value
	}{
		{`true`, form.Bool(true)},
		{`"9.0"`, form.String("9.0")},
		{`12`, form.String("12")},
	} {
		var v form.Value
		require.NoError(t, v.UnmarshalJSON([]byte(tc.in)), tc.in)
		assert.Equal(t, tc.want, v, tc.in)
	}

	out, err := form.String("10.0").MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"10.0"`, string(out))
}
