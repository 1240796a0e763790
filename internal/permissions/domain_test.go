package permissions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidTab(t *testing.T) {
	for _, tab := range Tabs {
		require.True(t, ValidTab(tab))
	}
	require.False(t, ValidTab("reports"))
	require.False(t, ValidTab(""))
}

func TestCapabilitiesAllows(t *testing.T) {
	caps := Capabilities{Read: true, Edit: true}
	require.True(t, caps.Allows(CapRead))
	require.True(t, caps.Allows(CapEdit))
	require.False(t, caps.Allows(CapWrite))
	require.False(t, caps.Allows(CapDelete))
	require.False(t, caps.Allows("owner"))

	require.True(t, AllCapabilities.Allows(CapDelete))
}
