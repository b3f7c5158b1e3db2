// pkg/integrations/integrations_test.go
package integrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/penkit-sh/penkit/pkg/toolexec"
)

func TestPresetsRegistered(t *testing.T) {
	for _, name := range []string{"nmap", "sqlmap"} {
		integ, err := toolexec.GetIntegration(name)
		require.NoError(t, err, "preset %s must self-register", name)
		assert.Equal(t, name, integ.Name())
	}
}

func TestNmapPreset(t *testing.T) {
	assert.Equal(t, "nmap", NmapDescriptor.Binary)
	assert.Equal(t, "instrumentisto/nmap:latest", NmapDescriptor.ContainerImage)
	assert.Contains(t, NmapDescriptor.ContainerOptions, "--net=host")

	m := NmapDescriptor.VersionPattern.FindStringSubmatch("Nmap version 7.94 ( https://nmap.org )")
	require.NotNil(t, m)
	assert.Equal(t, "7.94", m[1])
}

func TestSQLMapPreset(t *testing.T) {
	assert.Equal(t, "sqlmap", SQLMapDescriptor.Binary)
	assert.Equal(t, []string{"--batch"}, SQLMapDescriptor.DefaultArgs)
	assert.Equal(t, "vulnerables/sqlmap-python3", SQLMapDescriptor.ContainerImage)

	m := SQLMapDescriptor.VersionPattern.FindStringSubmatch("sqlmap 1.7.2#stable")
	require.NotNil(t, m)
	assert.Equal(t, "1.7.2", m[1])
}
