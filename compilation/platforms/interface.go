package platforms

import "github.com/crytic/cairn/compilation/types"

// CompilerSettings describes the settings a compiler version was (or would be) invoked with for a
// given set of sources.
type CompilerSettings map[string]any

// PlatformConfig describes the interface all compilation platform configs must implement.
type PlatformConfig interface {
	Compile() ([]types.ContractType, string, error)
	Platform() string
	GetTarget() string
	SetTarget(string)
	// GetVersions reports the compiler versions which would be used to compile the provided
	// source paths.
	GetVersions(sourcePaths []string) []string
	// GetSettings reports per-version compiler settings for the provided source paths, keyed by
	// the versions GetVersions reports.
	GetSettings(sourcePaths []string) map[string]CompilerSettings
}
