package project

import (
	"path/filepath"

	"github.com/crytic/cairn/compilation"
	"github.com/crytic/cairn/compilation/platforms"
	"github.com/crytic/cairn/utils"
	"github.com/pkg/errors"
)

// Project resolves a ProjectConfig against the folder it was read from, providing the absolute
// paths the build works with.
type Project struct {
	// Config describes the project configuration.
	Config *ProjectConfig

	// RootPath describes the absolute path of the folder the project configuration lives in.
	RootPath string
}

// NewProject reads and validates the project configuration at the provided path and resolves the
// project around it. Returns the project, or an error if one occurred.
func NewProject(configPath string, defaultPlatform string) (*Project, error) {
	projectConfig, err := ReadProjectConfigFromFile(configPath, defaultPlatform)
	if err != nil {
		return nil, err
	}
	return NewProjectWithConfig(configPath, projectConfig)
}

// NewProjectWithConfig validates an already-loaded configuration and resolves the project around
// it, rooted at the configuration file's folder. Returns the project, or an error if one occurred.
func NewProjectWithConfig(configPath string, projectConfig *ProjectConfig) (*Project, error) {
	if err := projectConfig.Validate(); err != nil {
		return nil, err
	}
	rootPath, err := filepath.Abs(filepath.Dir(configPath))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &Project{Config: projectConfig, RootPath: rootPath}, nil
}

// ContractsFolderPath returns the absolute path of the project's contracts folder.
func (p *Project) ContractsFolderPath() string {
	if filepath.IsAbs(p.Config.ContractsFolder) {
		return p.Config.ContractsFolder
	}
	return filepath.Join(p.RootPath, p.Config.ContractsFolder)
}

// PackagesFolderPath returns the absolute path of the packages folder, expanding a leading "~"
// into the user's home folder. Returns an error if one occurred.
func (p *Project) PackagesFolderPath() (string, error) {
	expanded, err := utils.ExpandHomeFolder(p.Config.PackagesFolder)
	if err != nil {
		return "", err
	}
	if !filepath.IsAbs(expanded) {
		expanded = filepath.Join(p.RootPath, expanded)
	}
	return expanded, nil
}

// CacheFolderPath returns the absolute path of the artifact cache folder the compilation writes
// beneath. Returns an error if one occurred.
func (p *Project) CacheFolderPath() (string, error) {
	// The cairo platform config carries the cache folder. Fall back to the conventional location
	// for any other platform.
	cacheFolder := ".build"
	platformConfig, err := p.Config.Compilation.GetPlatformConfig()
	if err != nil {
		return "", err
	}
	if cairoConfig, ok := platformConfig.(*platforms.CairoCompilationConfig); ok && cairoConfig.CacheFolder != "" {
		cacheFolder = cairoConfig.CacheFolder
	}
	if !filepath.IsAbs(cacheFolder) {
		cacheFolder = filepath.Join(p.RootPath, cacheFolder)
	}
	return cacheFolder, nil
}

// StateFolderPath returns the absolute path of the folder holding cairn's own project state.
func (p *Project) StateFolderPath() string {
	return filepath.Join(p.RootPath, ".cairn")
}

// BuildStateDatabasePath returns the absolute path of the project's build-state database.
func (p *Project) BuildStateDatabasePath() string {
	return filepath.Join(p.StateFolderPath(), compilation.BuildStateFileName)
}

// DependencyNames returns the names of every configured dependency, in declaration order.
func (p *Project) DependencyNames() []string {
	names := make([]string, len(p.Config.Dependencies))
	for i, dependency := range p.Config.Dependencies {
		names[i] = dependency.Name
	}
	return names
}

// ExtractDependencyManifests ensures the package manifest of every configured dependency with a
// local source is present in the packages folder. Returns an error if one occurred.
func (p *Project) ExtractDependencyManifests() error {
	packagesFolder, err := p.PackagesFolderPath()
	if err != nil {
		return err
	}
	for _, dependency := range p.Config.Dependencies {
		if err = dependency.ExtractManifest(packagesFolder, p.RootPath); err != nil {
			return err
		}
	}
	return nil
}
