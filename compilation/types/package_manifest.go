package types

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// PackageManifest represents a dependency package manifest: a named, versioned bundle of source
// files (and optionally pre-compiled contract types) as published by a package registry or written
// into a local dependency cache.
type PackageManifest struct {
	// Manifest describes the manifest schema version, e.g. "ethpm/3".
	Manifest string `json:"manifest,omitempty"`

	// Name describes the package name.
	Name string `json:"name,omitempty"`

	// Version describes the package version.
	Version string `json:"version,omitempty"`

	// Sources describes the package's source files, keyed by package-relative source identifier.
	Sources map[string]PackageSource `json:"sources,omitempty"`

	// ContractTypes describes any contract types published with the package, keyed by contract name.
	ContractTypes map[string]ContractType `json:"contractTypes,omitempty"`
}

// PackageSource describes a single source file within a PackageManifest.
type PackageSource struct {
	// Content describes the inlined text of the source file, if the manifest embeds it.
	Content string `json:"content,omitempty"`

	// Urls describes alternative locations the source can be fetched from, if not inlined.
	Urls []string `json:"urls,omitempty"`

	// Checksum describes an optional integrity checksum for the source content.
	Checksum *SourceChecksum `json:"checksum,omitempty"`
}

// SourceChecksum describes the integrity checksum of a package source.
type SourceChecksum struct {
	// Algorithm describes the hash algorithm used, e.g. "sha256".
	Algorithm string `json:"algorithm,omitempty"`

	// Hash describes the hex-encoded digest of the source content.
	Hash string `json:"hash,omitempty"`
}

// ParsePackageManifest parses a serialized package manifest from the provided data.
// Returns the manifest, or an error if one occurred.
func ParsePackageManifest(data []byte) (*PackageManifest, error) {
	manifest := &PackageManifest{}
	if err := json.Unmarshal(data, manifest); err != nil {
		return nil, errors.WithStack(err)
	}
	return manifest, nil
}

// ReadPackageManifestFromFile reads a serialized package manifest from the provided file path.
// Returns the manifest, or an error if one occurred.
func ReadPackageManifestFromFile(path string) (*PackageManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParsePackageManifest(data)
}

// WriteToFile writes the package manifest to the provided file path as JSON.
// Returns an error if one occurred.
func (m *PackageManifest) WriteToFile(path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(os.WriteFile(path, data, 0644))
}
