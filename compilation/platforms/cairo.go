package platforms

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/crytic/cairn/compilation/types"
	"github.com/crytic/cairn/logging"
	"github.com/crytic/cairn/utils"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"
)

const (
	// starknetCompileBinary is the first-stage compiler, producing a Sierra program from a
	// contract source.
	starknetCompileBinary = "starknet-compile"

	// starknetSierraCompileBinary is the second-stage compiler, assembling a Sierra program
	// into CASM.
	starknetSierraCompileBinary = "starknet-sierra-compile"

	// SupportedCompilerVersion is the toolchain release line the platform drives.
	SupportedCompilerVersion = "v1.0.0-alpha.7"

	// defaultAllowedLibfuncsList names the libfunc allowlist passed to both compiler stages.
	defaultAllowedLibfuncsList = "experimental_v0.1.0"
)

// contractMarkers lists the source attributes which mark a file as a deployable contract. Files
// without one of these markers are library code and are never compiled on their own.
var contractMarkers = []string{"#[contract]", "#[account_contract]"}

// CairoCompilationConfig represents the configuration of the cairo compilation platform: where
// contract sources and dependency packages live, which toolchain to invoke, and which declared
// dependencies to resolve before compiling.
type CairoCompilationConfig struct {
	// Target describes the contracts folder whose sources are compiled.
	Target string `json:"target"`

	// CacheFolder describes the folder compiled artifacts are written beneath.
	CacheFolder string `json:"cacheFolder"`

	// PackagesFolder describes the folder dependency packages are installed in.
	PackagesFolder string `json:"packagesFolder"`

	// ManifestPath optionally describes the Cargo manifest of a compiler toolchain source tree.
	// When set, compiler binaries run through `cargo run` against this manifest instead of being
	// resolved from $PATH.
	ManifestPath string `json:"manifestPath,omitempty"`

	// Dependencies describes the declared dependency tokens ("name" or "name@version") which are
	// resolved into the source cache before every compilation.
	Dependencies []string `json:"dependencies,omitempty"`

	// AllowedLibfuncsListName describes the libfunc allowlist passed to both compiler stages.
	AllowedLibfuncsListName string `json:"allowedLibfuncsListName,omitempty"`

	// Sources optionally pins the candidate source files to compile, in order. When empty, every
	// `.cairo` file beneath the target folder is considered in lexical order.
	Sources []string `json:"sources,omitempty"`

	// ConfiguredDependencies describes the names of the dependencies the surrounding project has
	// configured. Declarations naming anything else are rejected. Populated by the host prior to
	// compiling, never serialized.
	ConfiguredDependencies []string `json:"-"`

	// Events defines the event emitters the platform publishes compilation progress through.
	Events CairoCompilationEvents `json:"-"`

	// logger describes the compilation sub-logger, bound when compilation begins.
	logger *logging.Logger
}

// NewCairoCompilationConfig returns a CairoCompilationConfig with default values for a given
// target contracts folder.
func NewCairoCompilationConfig(target string) *CairoCompilationConfig {
	return &CairoCompilationConfig{
		Target:                  target,
		CacheFolder:             ".build",
		PackagesFolder:          "~/.cairn/packages",
		AllowedLibfuncsListName: defaultAllowedLibfuncsList,
	}
}

// Platform returns the platform identifier for this config.
func (c *CairoCompilationConfig) Platform() string {
	return "cairo"
}

// GetTarget returns the target for compilation.
func (c *CairoCompilationConfig) GetTarget() string {
	return c.Target
}

// SetTarget sets the new target for compilation.
func (c *CairoCompilationConfig) SetTarget(newTarget string) {
	c.Target = newTarget
}

// GetVersions reports the compiler versions used for the provided source paths. The platform
// drives a single pinned toolchain release, so any non-empty set of sources maps to that release
// and an empty set maps to no versions at all.
func (c *CairoCompilationConfig) GetVersions(sourcePaths []string) []string {
	if len(sourcePaths) == 0 {
		return []string{}
	}
	return []string{SupportedCompilerVersion}
}

// GetSettings reports the compiler settings for the provided source paths: one settings record per
// version reported by GetVersions. The pinned toolchain takes no per-source settings, so each
// record is empty.
func (c *CairoCompilationConfig) GetSettings(sourcePaths []string) map[string]CompilerSettings {
	settings := make(map[string]CompilerSettings)
	for _, version := range c.GetVersions(sourcePaths) {
		settings[version] = CompilerSettings{}
	}
	return settings
}

// GetSystemCompilerVersion obtains the version of the given compiler binary on the system path.
// Returns the parsed version, or an error if the binary could not be executed or its reported
// version could not be parsed.
func GetSystemCompilerVersion(binaryName string) (*semver.Version, error) {
	// Run the binary with --version to obtain our compiler version.
	out, err := exec.Command(binaryName, "--version").CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("error while executing %s:\nOUTPUT:\n%s\nERROR: %s\n", binaryName, string(out), err.Error())
	}

	// Parse the compiler version out of the output. Toolchain releases carry a pre-release tag
	// (e.g. 1.0.0-alpha.7), so the pattern admits one.
	exp := regexp.MustCompile(`\d+\.\d+\.\d+(?:-[0-9A-Za-z.]+)?`)
	versionStr := exp.FindString(string(out))
	if versionStr == "" {
		return nil, errors.Errorf("could not parse %s version using '%s --version'", binaryName, binaryName)
	}

	// Parse our semver string and return it
	return semver.NewVersion(versionStr)
}

// Compile resolves declared dependencies into the source cache, compiles every contract-marked
// source through both compiler stages in order, and returns the assembled contract artifacts.
// Returns the artifacts, the process output of the compilation, or an error if one occurred.
func (c *CairoCompilationConfig) Compile() ([]types.ContractType, string, error) {
	c.ensureLogger()

	// Resolve declared dependencies into the source cache. This runs on every compilation, even
	// when no contract sources exist.
	if err := c.resolveDependencies(); err != nil {
		return nil, "", err
	}

	// Gather candidate sources and keep those marked as deployable contracts.
	candidatePaths, err := c.collectSources()
	if err != nil {
		return nil, "", err
	}
	contractPaths := make([]string, 0)
	for _, candidatePath := range candidatePaths {
		isContract, err := isContractSource(candidatePath)
		if err != nil {
			return nil, "", err
		}
		if isContract {
			contractPaths = append(contractPaths, candidatePath)
		}
	}

	// With no contracts to compile there is nothing else to do: no output folders are created
	// and no compiler runs.
	if len(contractPaths) == 0 {
		return []types.ContractType{}, "", nil
	}

	// Announce the compilation run.
	err = c.Events.CompilationStarted.Publish(CompilationStartedEvent{ContractCount: len(contractPaths)})
	if err != nil {
		return nil, "", err
	}

	// Create the artifact folders for both stages.
	sierraFolder := filepath.Join(c.CacheFolder, "starknet")
	casmFolder := filepath.Join(sierraFolder, "casm")
	if err = utils.MakeDirectory(sierraFolder); err != nil {
		return nil, "", err
	}
	if err = utils.MakeDirectory(casmFolder); err != nil {
		return nil, "", err
	}

	// Compile each contract in input order.
	artifacts := make([]types.ContractType, 0, len(contractPaths))
	for i, contractPath := range contractPaths {
		artifact, err := c.compileContract(contractPath, sierraFolder, casmFolder)
		if err != nil {
			return nil, "", err
		}
		artifacts = append(artifacts, *artifact)

		// Announce the per-contract progress.
		err = c.Events.ContractCompiled.Publish(ContractCompiledEvent{Contract: artifact, Index: i, Total: len(contractPaths)})
		if err != nil {
			return nil, "", err
		}
	}

	// Announce completion and return the artifacts in candidate order.
	err = c.Events.CompilationFinished.Publish(CompilationFinishedEvent{ContractCount: len(artifacts)})
	if err != nil {
		return nil, "", err
	}
	return artifacts, "", nil
}

// compileContract runs both compiler stages for a single contract source and assembles its
// artifact. Returns the artifact, or an error if either stage failed.
func (c *CairoCompilationConfig) compileContract(contractPath string, sierraFolder string, casmFolder string) (*types.ContractType, error) {
	// Derive the source identifier and contract name from the path relative to the target folder.
	relPath, err := filepath.Rel(c.Target, contractPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	sourceId := filepath.ToSlash(relPath)
	contractName := strings.ReplaceAll(utils.GetFilePathWithoutExtension(sourceId), "/", ".")

	// Stage one compiles the source into its Sierra program. Any stale output from a previous
	// build is removed first so a failed run cannot leave the old artifact behind.
	sierraPath := filepath.Join(sierraFolder, contractName+".json")
	if utils.FileExists(sierraPath) {
		if err = os.Remove(sierraPath); err != nil {
			return nil, errors.WithStack(err)
		}
	}
	stdout, stderr, err := c.starknetCompile(contractPath, sierraPath)
	if err != nil {
		return nil, err
	}
	if !utils.FileExists(sierraPath) {
		return nil, &CompilationError{Message: fmt.Sprintf("Failed to compile '%s'.\nStdout: %s\nStderr: %s", contractPath, string(stdout), string(stderr))}
	}

	// Stage two assembles the Sierra program into CASM.
	casmPath := filepath.Join(casmFolder, contractName+".casm")
	if _, _, err = c.starknetSierraCompile(sierraPath, casmPath); err != nil {
		return nil, err
	}

	// Read both outputs back. Their raw text becomes the artifact's bytecode payloads.
	sierraText, err := os.ReadFile(sierraPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	casmText, err := os.ReadFile(casmPath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	// Parse the Sierra output for its ABI and normalize any constructor entries.
	sierraClass, err := types.ParseSierraClass(sierraText)
	if err != nil {
		return nil, err
	}
	abi := types.NormalizeConstructors(sierraClass.Abi)
	if abi == nil {
		abi = []types.ABIEntry{}
	}

	return &types.ContractType{
		ContractName:       contractName,
		SourceId:           sourceId,
		Abi:                abi,
		DeploymentBytecode: types.EncodeBytecodeText(string(sierraText)),
		RuntimeBytecode:    types.EncodeBytecodeText(string(casmText)),
	}, nil
}

// starknetCompile invokes the first-stage compiler on a source file. A contract-not-found report
// is repeated with the path the compiler was invoked on. When the compiler reports a corrupted
// state and a toolchain manifest is configured, the toolchain's debug target is cleared and the
// identical invocation retried exactly once.
func (c *CairoCompilationConfig) starknetCompile(inputPath string, outputPath string) ([]byte, []byte, error) {
	args := []string{inputPath, outputPath, "--replace-ids"}
	if c.AllowedLibfuncsListName != "" {
		args = append(args, "--allowed-libfuncs-list-name", c.AllowedLibfuncsListName)
	}

	stdout, stderr, err := c.runCompilerCommand(starknetCompileBinary, args)
	if err != nil {
		switch err.(type) {
		case *ContractNotFoundError:
			return stdout, stderr, &ContractNotFoundError{Path: inputPath}
		case *CompilerCorruptedError:
			// A corrupted compiler can only be repaired when we control its toolchain source:
			// clear the debug target and retry once.
			if c.ManifestPath != "" {
				targetFolder := filepath.Join(filepath.Dir(c.ManifestPath), "target")
				if utils.DirectoryExists(targetFolder) {
					c.logger.Warn("Cairo stuck in locked state. Clearing debug target and retrying.")
					if removeErr := utils.DeleteDirectory(targetFolder); removeErr != nil {
						return stdout, stderr, removeErr
					}
					return c.runCompilerCommand(starknetCompileBinary, args)
				}
			}
		}
	}
	return stdout, stderr, err
}

// starknetSierraCompile invokes the second-stage compiler on a Sierra program. Errors propagate
// as classified, with no recovery at this stage.
func (c *CairoCompilationConfig) starknetSierraCompile(inputPath string, outputPath string) ([]byte, []byte, error) {
	args := []string{inputPath, outputPath, "--add-pythonic-hints"}
	if c.AllowedLibfuncsListName != "" {
		args = append(args, "--allowed-libfuncs-list-name", c.AllowedLibfuncsListName)
	}
	return c.runCompilerCommand(starknetSierraCompileBinary, args)
}

// runCompilerCommand executes a compiler binary with the provided arguments, capturing its output.
// When a toolchain manifest is configured the binary runs through `cargo run` against it, otherwise
// the binary itself must be resolvable on $PATH. Returns the captured stdout and stderr, and the
// error the compiler's stderr text classifies to, if any.
func (c *CairoCompilationConfig) runCompilerCommand(binary string, args []string) ([]byte, []byte, error) {
	c.ensureLogger()

	// Build the invocation, routing through cargo when a toolchain manifest is configured.
	executable := binary
	commandArgs := args
	if c.ManifestPath != "" {
		executable = "cargo"
		commandArgs = append([]string{"run", "--bin", binary, "--manifest-path", c.ManifestPath}, args...)
	}

	// The executable must be resolvable before we try to run it.
	if _, err := exec.LookPath(executable); err != nil {
		return nil, nil, &ConfigurationError{Message: fmt.Sprintf("`%s` binary required in $PATH prior to compiling.", executable)}
	}

	// Run the compiler and capture its streams. The exit status is intentionally not inspected:
	// failure is determined by classifying the stderr text, with the missing-output check in the
	// caller as the final backstop.
	c.logger.Trace("running ", executable, " ", strings.Join(commandArgs, " "))
	stdout, stderr, _, _ := utils.RunCommandWithOutputAndError(exec.Command(executable, commandArgs...))

	// Classify any stderr the compiler produced. Unclassified output is diagnostic noise.
	if len(stderr) > 0 {
		if err := ClassifyCompilerStderr(string(stderr)); err != nil {
			return stdout, stderr, err
		}
		c.logger.Debug(string(stderr))
	}
	return stdout, stderr, nil
}

// collectSources returns the candidate source files for this compilation in deterministic order.
func (c *CairoCompilationConfig) collectSources() ([]string, error) {
	// An explicit source list takes precedence over target discovery.
	if len(c.Sources) > 0 {
		return slices.Clone(c.Sources), nil
	}

	// Walk the target folder for .cairo files. The walk visits entries in lexical order, which
	// fixes the compilation order.
	sourcePaths := make([]string, 0)
	err := filepath.WalkDir(c.Target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".cairo" {
			sourcePaths = append(sourcePaths, path)
		}
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return sourcePaths, nil
}

// isContractSource reports whether the source file at the provided path declares a deployable
// contract, identified by a contract attribute marker in its text.
func isContractSource(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, errors.WithStack(err)
	}
	text := string(data)
	for _, marker := range contractMarkers {
		if strings.Contains(text, marker) {
			return true, nil
		}
	}
	return false, nil
}

// ensureLogger binds the compilation sub-logger if it is not bound yet.
func (c *CairoCompilationConfig) ensureLogger() {
	if c.logger == nil {
		c.logger = logging.GlobalLogger.NewSubLogger("module", "compilation")
	}
}
