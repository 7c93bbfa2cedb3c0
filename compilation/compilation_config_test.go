package compilation

import (
	"testing"

	"github.com/crytic/cairn/compilation/platforms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSupportedCompilationPlatforms ensures the cairo platform is registered and unknown platform
// identifiers are rejected.
func TestSupportedCompilationPlatforms(t *testing.T) {
	assert.Contains(t, GetSupportedCompilationPlatforms(), "cairo")
	assert.True(t, IsSupportedCompilationPlatform("cairo"))
	assert.False(t, IsSupportedCompilationPlatform("solidity"))

	_, err := NewCompilationConfig("solidity")
	assert.Error(t, err)
}

// TestCompilationConfigRoundTrip ensures a default cairo compilation config deserializes back to
// its concrete platform config with defaults intact.
func TestCompilationConfigRoundTrip(t *testing.T) {
	compilationConfig, err := NewCompilationConfig("cairo")
	require.NoError(t, err)
	assert.EqualValues(t, "cairo", compilationConfig.Platform)

	platformConfig, err := compilationConfig.GetPlatformConfig()
	require.NoError(t, err)
	require.IsType(t, &platforms.CairoCompilationConfig{}, platformConfig)

	cairoConfig := platformConfig.(*platforms.CairoCompilationConfig)
	assert.EqualValues(t, "contracts", cairoConfig.Target)
	assert.EqualValues(t, ".build", cairoConfig.CacheFolder)
}

// TestCompilationConfigSetTarget ensures target updates are stored back into the serialized
// platform config.
func TestCompilationConfigSetTarget(t *testing.T) {
	compilationConfig, err := NewCompilationConfig("cairo")
	require.NoError(t, err)
	require.NoError(t, compilationConfig.SetTarget("src"))

	platformConfig, err := compilationConfig.GetPlatformConfig()
	require.NoError(t, err)
	assert.EqualValues(t, "src", platformConfig.GetTarget())
}
