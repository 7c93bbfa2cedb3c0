package platforms

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crytic/cairn/compilation/types"
	"github.com/crytic/cairn/utils"
	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DependencySpec describes a parsed dependency declaration of the form "name" or "name@version".
type DependencySpec struct {
	// Name describes the declared package name.
	Name string

	// Version describes the declared package version, or an empty string if the declaration left
	// the version to be resolved from the packages folder.
	Version string
}

// ParseDependencySpec parses a dependency declaration token into its name and optional version.
// A version beginning with a digit is normalized with a leading "v" so it matches the version
// folder layout of the packages cache.
func ParseDependencySpec(token string) DependencySpec {
	name, version, _ := strings.Cut(token, "@")
	if version != "" && version[0] >= '0' && version[0] <= '9' {
		version = "v" + version
	}
	return DependencySpec{Name: name, Version: version}
}

// resolveDependencies materializes every declared dependency into the contracts folder's source
// cache. For each declaration the package manifest is located under the packages folder, its
// version resolved if the declaration omitted one, and every source the manifest embeds is written
// below `<target>/.cache/<name>/<version>`. Existing files are never overwritten, and a cache
// folder populated by other means is accepted as-is. Returns an error if a declaration cannot be
// satisfied.
func (c *CairoCompilationConfig) resolveDependencies() error {
	for _, token := range c.Dependencies {
		// Parse the declaration and locate the package's folder.
		spec := ParseDependencySpec(token)
		packagePath := filepath.Join(c.PackagesFolder, spec.Name)

		// If the declaration omitted a version, resolve it from the package's version folders.
		// Exactly one version folder must exist for the resolution to be unambiguous.
		version := spec.Version
		if version == "" {
			if !utils.DirectoryExists(packagePath) {
				return &ConfigurationError{Message: fmt.Sprintf("Missing dependency '%s' from packages %s.", spec.Name, c.PackagesFolder)}
			}
			dirEntries, err := os.ReadDir(packagePath)
			if err != nil {
				return errors.WithStack(err)
			}
			versionFolders := make([]string, 0)
			for _, dirEntry := range dirEntries {
				if dirEntry.IsDir() {
					versionFolders = append(versionFolders, dirEntry.Name())
				}
			}
			if len(versionFolders) == 0 {
				return &ConfigurationError{Message: fmt.Sprintf("No versions found for dependency '%s'.", spec.Name)}
			}
			if len(versionFolders) > 1 {
				return &ConfigurationError{Message: fmt.Sprintf("Ambiguous dependency version for '%s'. Use 'name@version' syntax to clarify.", spec.Name)}
			}
			version = versionFolders[0]
		}

		// Locate the package manifest and the cache folder the sources belong in. A cache folder
		// which exists without a manifest was populated by other means and is accepted as-is.
		manifestPath := filepath.Join(packagePath, version, spec.Name+".json")
		destinationPath := filepath.Join(c.Target, ".cache", spec.Name, version)
		if !utils.FileExists(manifestPath) {
			if utils.DirectoryExists(destinationPath) {
				continue
			}
			return &ConfigurationError{Message: fmt.Sprintf("Dependency '%s=%s' missing.", spec.Name, version)}
		}

		// The declaration must correspond to a dependency the project has configured.
		if !slices.Contains(c.ConfiguredDependencies, spec.Name) {
			return &ConfigurationError{Message: fmt.Sprintf("Dependency '%s' not configured.", token)}
		}

		// Read the manifest and write every embedded source into the cache folder.
		manifest, err := types.ReadPackageManifestFromFile(manifestPath)
		if err != nil {
			return err
		}
		sourceIds := maps.Keys(manifest.Sources)
		slices.Sort(sourceIds)
		for _, sourceId := range sourceIds {
			// Sources are cached with their dotted path components expanded into folders.
			destinationFile := filepath.Join(destinationPath, dependencySourcePath(sourceId))
			if utils.FileExists(destinationFile) {
				continue
			}
			if err = utils.MakeDirectory(filepath.Dir(destinationFile)); err != nil {
				return err
			}
			if err = os.WriteFile(destinationFile, []byte(manifest.Sources[sourceId].Content), 0644); err != nil {
				return errors.WithStack(err)
			}
		}
	}
	return nil
}

// dependencySourcePath converts a manifest source identifier into the relative path its content is
// cached at: the ".cairo" suffix is removed, remaining dots become path separators, and the suffix
// is restored.
func dependencySourcePath(sourceId string) string {
	base := strings.TrimSuffix(sourceId, ".cairo")
	return filepath.FromSlash(strings.ReplaceAll(base, ".", "/") + ".cairo")
}
