package cmd

// DefaultProjectConfigFilename describes the default config filename for a given project folder.
const DefaultProjectConfigFilename = "cairn.json"

// DefaultCompilationPlatform describes the default compilation platform to use if one is not provided
const DefaultCompilationPlatform = "cairo"

// TargetFlagDescription describes the command-line --target flag, shared by every command which can
// override the compilation target.
const TargetFlagDescription = "path to the contracts directory to compile"
