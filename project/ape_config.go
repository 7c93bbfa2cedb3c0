package project

import (
	"os"

	"github.com/crytic/cairn/compilation/platforms"
	"github.com/crytic/cairn/utils"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
	"gopkg.in/yaml.v3"
)

// apeConfigFile mirrors the subset of an ape-config.yaml file a cairn project can be seeded from.
type apeConfigFile struct {
	Name            string          `yaml:"name"`
	ContractsFolder string          `yaml:"contracts_folder"`
	Dependencies    []apeDependency `yaml:"dependencies"`
	Cairo           apeCairoSection `yaml:"cairo"`
}

// apeDependency mirrors a dependency entry of an ape-config.yaml file. Only the fields relevant to
// local resolution are read; remote locators are carried as name and version alone.
type apeDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Ref     string `yaml:"ref"`
	Local   string `yaml:"local"`
}

// apeCairoSection mirrors the cairo plugin section of an ape-config.yaml file.
type apeCairoSection struct {
	Dependencies []string `yaml:"dependencies"`
	Manifest     string   `yaml:"manifest"`
}

// ImportApeConfig reads an ape-config.yaml file and seeds a cairn project configuration from it:
// the project name and contracts folder, the declared dependencies, and the cairo plugin section's
// dependency declarations and compiler toolchain manifest. Returns the seeded configuration, or an
// error if one occurred.
func ImportApeConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	apeConfig := apeConfigFile{}
	if err = yaml.Unmarshal(data, &apeConfig); err != nil {
		return nil, errors.WithStack(err)
	}

	// Start from the default cairo project and overlay what the ape config declares.
	projectConfig, err := GetDefaultProjectConfig("cairo")
	if err != nil {
		return nil, err
	}
	if apeConfig.Name != "" {
		projectConfig.Name = apeConfig.Name
	}
	if apeConfig.ContractsFolder != "" {
		projectConfig.ContractsFolder = apeConfig.ContractsFolder
	}

	// Map each dependency entry, falling back to the git ref when no version is declared.
	projectConfig.Dependencies = make([]DependencyConfig, 0, len(apeConfig.Dependencies))
	for _, dependency := range apeConfig.Dependencies {
		version := dependency.Version
		if version == "" {
			version = dependency.Ref
		}
		projectConfig.Dependencies = append(projectConfig.Dependencies, DependencyConfig{
			Name:      dependency.Name,
			Version:   version,
			LocalPath: dependency.Local,
		})
	}

	// Carry the cairo plugin section into the platform config.
	platformConfig, err := projectConfig.Compilation.GetPlatformConfig()
	if err != nil {
		return nil, err
	}
	if cairoConfig, ok := platformConfig.(*platforms.CairoCompilationConfig); ok {
		cairoConfig.Target = projectConfig.ContractsFolder
		cairoConfig.Dependencies = slices.Clone(apeConfig.Cairo.Dependencies)
		if apeConfig.Cairo.Manifest != "" {
			manifestPath, err := utils.ExpandHomeFolder(apeConfig.Cairo.Manifest)
			if err != nil {
				return nil, err
			}
			cairoConfig.ManifestPath = manifestPath
		}
		if err = projectConfig.Compilation.SetPlatformConfig(cairoConfig); err != nil {
			return nil, err
		}
	}
	return projectConfig, nil
}
