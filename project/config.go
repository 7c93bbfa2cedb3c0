package project

import (
	"encoding/json"
	"os"

	"github.com/crytic/cairn/compilation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ProjectConfig describes a cairn project: where its contracts live, which dependencies they may
// import, and how the project is compiled.
type ProjectConfig struct {
	// Name describes the project name.
	Name string `json:"name"`

	// ContractsFolder describes the folder holding the project's contract sources, relative to
	// the project root.
	ContractsFolder string `json:"contractsFolder"`

	// PackagesFolder describes the folder dependency packages are installed in. A leading "~"
	// expands to the user's home folder.
	PackagesFolder string `json:"packagesFolder"`

	// Dependencies describes the dependency packages available to project contracts.
	Dependencies []DependencyConfig `json:"dependencies"`

	// Compilation describes the configuration used to compile the project.
	Compilation *compilation.CompilationConfig `json:"compilation"`

	// Logging describes the configuration used for logging.
	Logging LoggingConfig `json:"logging"`
}

// DependencyConfig describes a single dependency package available to project contracts.
type DependencyConfig struct {
	// Name describes the package name contracts import the dependency by.
	Name string `json:"name"`

	// Version describes the package version.
	Version string `json:"version"`

	// LocalPath optionally points at a local folder of sources, or a single manifest file, the
	// dependency's manifest is produced from. Dependencies without a local path must have their
	// manifest installed into the packages folder by other means.
	LocalPath string `json:"localPath,omitempty"`
}

// LoggingConfig describes the configuration options used for logging.
type LoggingConfig struct {
	// Level describes whether logs of certain severity levels (eg info, warning, etc.) will be emitted or discarded.
	// Increasing level values represent more severe logs
	Level zerolog.Level `json:"level"`

	// EnableConsoleLogging describes whether console logging is enabled
	EnableConsoleLogging bool `json:"enableConsoleLogging"`

	// LogDirectory describes the directory where structured log _files_ will be outputted. If the string is empty, then
	// no log files are kept
	LogDirectory string `json:"logDirectory"`
}

// ReadProjectConfigFromFile reads a JSON-serialized ProjectConfig from a provided file path.
// Fields the file does not set retain the defaults for the provided platform. Returns the
// ProjectConfig if it succeeds, or an error if one occurs.
func ReadProjectConfigFromFile(path string, defaultPlatform string) (*ProjectConfig, error) {
	// Read our project configuration file data
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the project configuration
	projectConfig, err := GetDefaultProjectConfig(defaultPlatform)
	if err != nil {
		return nil, err
	}
	err = json.Unmarshal(b, projectConfig)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return projectConfig, nil
}

// WriteToFile writes the ProjectConfig to a provided file path in a JSON-serialized format.
// Returns an error if one occurs.
func (p *ProjectConfig) WriteToFile(path string) error {
	// Serialize the configuration
	b, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return errors.WithStack(err)
	}

	// Save it to the provided output path and return the result
	err = os.WriteFile(path, b, 0644)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// Validate validates that the ProjectConfig meets certain requirements.
// Returns an error if one occurs.
func (p *ProjectConfig) Validate() error {
	// Verify a contracts folder was set.
	if p.ContractsFolder == "" {
		return errors.Errorf("project configuration must specify a contracts folder")
	}

	// Verify a packages folder was set.
	if p.PackagesFolder == "" {
		return errors.Errorf("project configuration must specify a packages folder")
	}

	// Verify a compilation config was provided.
	if p.Compilation == nil {
		return errors.Errorf("project configuration must specify compilation settings")
	}

	// Verify each declared dependency is named, versioned, and unique.
	seenNames := make(map[string]struct{})
	for _, dependency := range p.Dependencies {
		if dependency.Name == "" {
			return errors.Errorf("project dependencies must be named")
		}
		if dependency.Version == "" {
			return errors.Errorf("project dependency '%s' must specify a version", dependency.Name)
		}
		if _, seen := seenNames[dependency.Name]; seen {
			return errors.Errorf("project dependency '%s' is declared more than once", dependency.Name)
		}
		seenNames[dependency.Name] = struct{}{}
	}
	return nil
}
