package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ngfw-form/form"
	"ngfw-form/preset"
)

func TestDiffAgainstDefault(t *testing.T) {
	base := form.New(nil)
	require.NoError(t, preset.NewResolver(base).ApplyDefault())
	got := form.New(nil)
	require.NoError(t, preset.NewResolver(got).ApplyDevice(preset.Mi4Pro))

	all := diff(base.Snapshot(), got.Snapshot(), false)
	assert.Len(t, all, len(got.Snapshot()))

	changed := diff(base.Snapshot(), got.Snapshot(), true)
	names := map[string]row{}
	for _, r := range changed {
		assert.True(t, r.Changed)
		names[r.Name] = r
	}
	require.Contains(t, names, "wheelsize")
	assert.Equal(t, form.String("10.0"), names["wheelsize"].Value)
	assert.Contains(t, names, "dmn")
	assert.NotContains(t, names, "crc")
}

func TestDiffSameState(t *testing.T) {
	s := form.New(nil)
	assert.Empty(t, diff(s.Snapshot(), s.Snapshot(), true))
}
