package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProjectConfigRoundTrip ensures a default project config survives writing to and reading
// from disk.
func TestProjectConfigRoundTrip(t *testing.T) {
	projectConfig, err := GetDefaultProjectConfig("cairo")
	require.NoError(t, err)
	projectConfig.Dependencies = []DependencyConfig{
		{Name: "openzeppelin", Version: "0.6.1"},
	}

	// Write the config and read it back.
	configPath := filepath.Join(t.TempDir(), "cairn.json")
	require.NoError(t, projectConfig.WriteToFile(configPath))
	readConfig, err := ReadProjectConfigFromFile(configPath, "cairo")
	require.NoError(t, err)

	assert.EqualValues(t, projectConfig.Name, readConfig.Name)
	assert.EqualValues(t, "contracts", readConfig.ContractsFolder)
	assert.EqualValues(t, "~/.cairn/packages", readConfig.PackagesFolder)
	assert.EqualValues(t, projectConfig.Dependencies, readConfig.Dependencies)
	assert.EqualValues(t, "cairo", readConfig.Compilation.Platform)
	assert.EqualValues(t, projectConfig.Logging, readConfig.Logging)
}

// TestProjectConfigValidate ensures the required fields and dependency constraints are enforced.
func TestProjectConfigValidate(t *testing.T) {
	// The default config for the cairo platform is valid.
	projectConfig, err := GetDefaultProjectConfig("cairo")
	require.NoError(t, err)
	assert.NoError(t, projectConfig.Validate())

	// A missing contracts folder is rejected.
	projectConfig.ContractsFolder = ""
	assert.Error(t, projectConfig.Validate())
	projectConfig.ContractsFolder = "contracts"

	// A missing packages folder is rejected.
	projectConfig.PackagesFolder = ""
	assert.Error(t, projectConfig.Validate())
	projectConfig.PackagesFolder = "~/.cairn/packages"

	// A missing compilation config is rejected.
	savedCompilation := projectConfig.Compilation
	projectConfig.Compilation = nil
	assert.Error(t, projectConfig.Validate())
	projectConfig.Compilation = savedCompilation

	// Unnamed, versionless, and duplicated dependencies are rejected.
	projectConfig.Dependencies = []DependencyConfig{{Version: "0.6.1"}}
	assert.Error(t, projectConfig.Validate())
	projectConfig.Dependencies = []DependencyConfig{{Name: "openzeppelin"}}
	assert.Error(t, projectConfig.Validate())
	projectConfig.Dependencies = []DependencyConfig{
		{Name: "openzeppelin", Version: "0.6.1"},
		{Name: "openzeppelin", Version: "0.6.2"},
	}
	assert.Error(t, projectConfig.Validate())

	// Distinct named and versioned dependencies are accepted.
	projectConfig.Dependencies = []DependencyConfig{
		{Name: "openzeppelin", Version: "0.6.1"},
		{Name: "vendored", Version: "1.0.0", LocalPath: "./vendor/vendored"},
	}
	assert.NoError(t, projectConfig.Validate())
}
