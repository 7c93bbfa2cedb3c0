package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/crytic/cairn/compilation/platforms"
	"github.com/crytic/cairn/compilation/types"
	"github.com/crytic/cairn/utils"
	"github.com/pkg/errors"
)

// ExtractManifest ensures this dependency's package manifest exists in the packages folder,
// producing it from the configured local path when one is set. An existing manifest is never
// overwritten. Dependencies without a local path are skipped, leaving the packages folder to be
// populated by other means. Returns an error if one occurred.
func (d DependencyConfig) ExtractManifest(packagesFolder string, projectRoot string) error {
	// Locate where the manifest belongs, normalizing the version the same way dependency
	// declarations are.
	spec := platforms.ParseDependencySpec(fmt.Sprintf("%s@%s", d.Name, d.Version))
	versionFolder := filepath.Join(packagesFolder, spec.Name, spec.Version)
	manifestPath := filepath.Join(versionFolder, spec.Name+".json")
	if utils.FileExists(manifestPath) {
		return nil
	}
	if d.LocalPath == "" {
		return nil
	}

	// Resolve the local source relative to the project root.
	localPath := d.LocalPath
	if !filepath.IsAbs(localPath) {
		localPath = filepath.Join(projectRoot, localPath)
	}

	// A local manifest file is installed as-is.
	if utils.FileExists(localPath) {
		return utils.CopyFile(localPath, manifestPath)
	}
	if !utils.DirectoryExists(localPath) {
		return errors.Errorf("dependency '%s' local path '%s' does not exist", d.Name, d.LocalPath)
	}

	// Build a manifest embedding every cairo source beneath the local folder.
	manifest := &types.PackageManifest{
		Manifest: "ethpm/3",
		Name:     spec.Name,
		Version:  spec.Version,
		Sources:  make(map[string]types.PackageSource),
	}
	err := filepath.WalkDir(localPath, func(path string, dirEntry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if dirEntry.IsDir() || filepath.Ext(path) != ".cairo" {
			return nil
		}
		relPath, relErr := filepath.Rel(localPath, path)
		if relErr != nil {
			return relErr
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		manifest.Sources[filepath.ToSlash(relPath)] = types.PackageSource{Content: string(content)}
		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}
	if len(manifest.Sources) == 0 {
		return errors.Errorf("dependency '%s' local path '%s' contains no cairo sources", d.Name, d.LocalPath)
	}

	// Write the manifest into the packages folder.
	if err = utils.MakeDirectory(versionFolder); err != nil {
		return err
	}
	return manifest.WriteToFile(manifestPath)
}
