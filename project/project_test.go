package project

import (
	"path/filepath"
	"testing"

	"github.com/crytic/cairn/compilation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestProjectFolderResolution ensures project folders resolve to absolute paths rooted at the
// config file's folder.
func TestProjectFolderResolution(t *testing.T) {
	// Write a config with a project-relative packages folder.
	projectFolder := t.TempDir()
	projectConfig, err := GetDefaultProjectConfig("cairo")
	require.NoError(t, err)
	projectConfig.PackagesFolder = "packages"
	projectConfig.Dependencies = []DependencyConfig{
		{Name: "openzeppelin", Version: "0.6.1"},
		{Name: "vendored", Version: "1.0.0"},
	}
	configPath := filepath.Join(projectFolder, "cairn.json")
	require.NoError(t, projectConfig.WriteToFile(configPath))

	// Resolve the project and verify every folder.
	resolved, err := NewProject(configPath, "cairo")
	require.NoError(t, err)
	assert.EqualValues(t, projectFolder, resolved.RootPath)
	assert.EqualValues(t, filepath.Join(projectFolder, "contracts"), resolved.ContractsFolderPath())
	assert.EqualValues(t, filepath.Join(projectFolder, ".cairn"), resolved.StateFolderPath())
	assert.EqualValues(t, filepath.Join(projectFolder, ".cairn", compilation.BuildStateFileName), resolved.BuildStateDatabasePath())
	assert.EqualValues(t, []string{"openzeppelin", "vendored"}, resolved.DependencyNames())

	packagesFolder, err := resolved.PackagesFolderPath()
	require.NoError(t, err)
	assert.EqualValues(t, filepath.Join(projectFolder, "packages"), packagesFolder)

	cacheFolder, err := resolved.CacheFolderPath()
	require.NoError(t, err)
	assert.EqualValues(t, filepath.Join(projectFolder, ".build"), cacheFolder)
}

// TestProjectRejectsInvalidConfig ensures resolution fails when the configuration does not
// validate.
func TestProjectRejectsInvalidConfig(t *testing.T) {
	projectConfig, err := GetDefaultProjectConfig("cairo")
	require.NoError(t, err)
	projectConfig.ContractsFolder = ""

	configPath := filepath.Join(t.TempDir(), "cairn.json")
	require.NoError(t, projectConfig.WriteToFile(configPath))
	_, err = NewProject(configPath, "cairo")
	assert.Error(t, err)
}
