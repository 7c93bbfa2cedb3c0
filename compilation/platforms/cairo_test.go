package platforms

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sierraStubScript mimics the first-stage compiler by writing a fixed Sierra program to the
// output path it is given.
const sierraStubScript = `printf '%s' '{"sierra_program": ["0x1"], "abi": [{"name": "constructor", "type": "function"}, {"name": "get_balance", "type": "function"}]}' > "$2"
`

// casmStubScript mimics the second-stage compiler by writing a fixed CASM class to the output
// path it is given.
const casmStubScript = `printf '%s' '{"prime": "0x800000000000011000000000000000000000000000000000000000000000001", "compiler_version": "1.0.0", "bytecode": ["0x1"]}' > "$2"
`

// writeStubCompiler writes an executable shell script with the provided name into a folder the
// tests place on PATH.
func writeStubCompiler(t *testing.T, binFolder string, name string, script string) {
	require.NoError(t, os.WriteFile(filepath.Join(binFolder, name), []byte("#!/bin/sh\n"+script), 0755))
}

// testCompileSetup creates a scratch contracts project with stub compiler binaries on PATH.
// Returns the platform config pointed at the project and the folder holding the stubs.
func testCompileSetup(t *testing.T, sources map[string]string) (*CairoCompilationConfig, string) {
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler scripts require a POSIX shell")
	}

	// Write the provided sources into a fresh contracts folder.
	projectFolder := t.TempDir()
	contractsFolder := filepath.Join(projectFolder, "contracts")
	require.NoError(t, os.MkdirAll(contractsFolder, 0755))
	for path, content := range sources {
		fullPath := filepath.Join(contractsFolder, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}

	// Install the stub compilers at the front of PATH.
	binFolder := filepath.Join(projectFolder, "bin")
	require.NoError(t, os.MkdirAll(binFolder, 0755))
	writeStubCompiler(t, binFolder, starknetCompileBinary, sierraStubScript)
	writeStubCompiler(t, binFolder, starknetSierraCompileBinary, casmStubScript)
	t.Setenv("PATH", binFolder+string(os.PathListSeparator)+os.Getenv("PATH"))

	// Point a fresh config at the project.
	config := NewCairoCompilationConfig(contractsFolder)
	config.CacheFolder = filepath.Join(projectFolder, ".build")
	config.PackagesFolder = filepath.Join(projectFolder, "packages")
	return config, binFolder
}

// TestCairoCompileProducesArtifacts ensures a full compilation run filters contract-marked
// sources, produces both stage outputs per contract, assembles normalized artifacts in candidate
// order, and publishes progress events.
func TestCairoCompileProducesArtifacts(t *testing.T) {
	config, _ := testCompileSetup(t, map[string]string{
		"token.cairo":           "#[contract]\nmod Token {}\n",
		"support/library.cairo": "mod Library {}\n",
		"account/passkey.cairo": "#[account_contract]\nmod Passkey {}\n",
	})

	// Track the published compilation events.
	var startedCount, finishedCount int
	var compiledNames []string
	config.Events.CompilationStarted.Subscribe(func(event CompilationStartedEvent) error {
		startedCount = event.ContractCount
		return nil
	})
	config.Events.ContractCompiled.Subscribe(func(event ContractCompiledEvent) error {
		compiledNames = append(compiledNames, event.Contract.ContractName)
		return nil
	})
	config.Events.CompilationFinished.Subscribe(func(event CompilationFinishedEvent) error {
		finishedCount = event.ContractCount
		return nil
	})

	// Compile and verify the unmarked library was filtered out.
	artifacts, _, err := config.Compile()
	require.NoError(t, err)
	require.EqualValues(t, 2, len(artifacts))

	// Verify artifact order follows the lexical candidate order.
	assert.EqualValues(t, "account.passkey", artifacts[0].ContractName)
	assert.EqualValues(t, "account/passkey.cairo", artifacts[0].SourceId)
	assert.EqualValues(t, "token", artifacts[1].ContractName)
	assert.EqualValues(t, "token.cairo", artifacts[1].SourceId)

	// Verify the constructor entry was normalized while the method entry survived.
	_, hasName := artifacts[0].Abi[0]["name"]
	assert.False(t, hasName)
	assert.EqualValues(t, "constructor", artifacts[0].Abi[0].Type())
	assert.EqualValues(t, "get_balance", artifacts[0].Abi[1].Name())

	// Verify both stage outputs exist on disk for each contract.
	assert.FileExists(t, filepath.Join(config.CacheFolder, "starknet", "account.passkey.json"))
	assert.FileExists(t, filepath.Join(config.CacheFolder, "starknet", "casm", "account.passkey.casm"))
	assert.FileExists(t, filepath.Join(config.CacheFolder, "starknet", "token.json"))
	assert.FileExists(t, filepath.Join(config.CacheFolder, "starknet", "casm", "token.casm"))

	// Verify the bytecode payloads round-trip to the raw stage outputs.
	sierraText, err := os.ReadFile(filepath.Join(config.CacheFolder, "starknet", "token.json"))
	require.NoError(t, err)
	decoded, err := artifacts[1].DecodeDeploymentBytecode()
	require.NoError(t, err)
	assert.EqualValues(t, sierraText, decoded)

	// Verify the event stream matched the build.
	assert.EqualValues(t, 2, startedCount)
	assert.EqualValues(t, []string{"account.passkey", "token"}, compiledNames)
	assert.EqualValues(t, 2, finishedCount)
}

// TestCairoCompileNoContracts ensures a project without contract-marked sources compiles to an
// empty artifact list without creating output folders or invoking any compiler.
func TestCairoCompileNoContracts(t *testing.T) {
	config, _ := testCompileSetup(t, map[string]string{
		"support/library.cairo": "mod Library {}\n",
	})
	startedPublished := false
	config.Events.CompilationStarted.Subscribe(func(event CompilationStartedEvent) error {
		startedPublished = true
		return nil
	})

	artifacts, _, err := config.Compile()
	assert.NoError(t, err)
	assert.Empty(t, artifacts)
	assert.NoDirExists(t, filepath.Join(config.CacheFolder, "starknet"))
	assert.False(t, startedPublished)
}

// TestCairoCompileMissingBinary ensures an unresolvable first-stage binary is reported as a
// configuration error naming the binary.
func TestCairoCompileMissingBinary(t *testing.T) {
	// Create a contract project without any stub binaries reachable on PATH.
	contractsFolder := filepath.Join(t.TempDir(), "contracts")
	require.NoError(t, os.MkdirAll(contractsFolder, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(contractsFolder, "token.cairo"), []byte("#[contract]\nmod Token {}\n"), 0644))
	config := NewCairoCompilationConfig(contractsFolder)
	config.CacheFolder = filepath.Join(t.TempDir(), ".build")
	t.Setenv("PATH", t.TempDir())

	_, _, err := config.Compile()
	assert.IsType(t, &ConfigurationError{}, err)
	assert.EqualValues(t, "`starknet-compile` binary required in $PATH prior to compiling.", err.Error())
}

// TestCairoCompileClassifiesCompilerFailure ensures a compiler which reports a failed compilation
// surfaces a compilation error carrying the full stderr text.
func TestCairoCompileClassifiesCompilerFailure(t *testing.T) {
	config, binFolder := testCompileSetup(t, map[string]string{
		"token.cairo": "#[contract]\nmod Token {}\n",
	})
	writeStubCompiler(t, binFolder, starknetCompileBinary, `echo "Error: Compilation failed." 1>&2
exit 1
`)

	_, _, err := config.Compile()
	assert.IsType(t, &CompilationError{}, err)
	assert.Contains(t, err.Error(), "Error: Compilation failed.")
}

// TestCairoCompileMissingOutputFailure ensures a compiler which exits cleanly without producing
// its output file is reported with the captured process output.
func TestCairoCompileMissingOutputFailure(t *testing.T) {
	config, binFolder := testCompileSetup(t, map[string]string{
		"token.cairo": "#[contract]\nmod Token {}\n",
	})
	writeStubCompiler(t, binFolder, starknetCompileBinary, `echo "building"
exit 0
`)

	_, _, err := config.Compile()
	assert.IsType(t, &CompilationError{}, err)
	assert.Contains(t, err.Error(), "Failed to compile '")
	assert.Contains(t, err.Error(), "Stdout: building")
}

// TestCairoCompileContractNotFound ensures a contract-not-found report is repeated with the source
// path the compiler was invoked on.
func TestCairoCompileContractNotFound(t *testing.T) {
	config, binFolder := testCompileSetup(t, map[string]string{
		"token.cairo": "#[contract]\nmod Token {}\n",
	})
	writeStubCompiler(t, binFolder, starknetCompileBinary, `echo "Error: Contract not found." 1>&2
exit 1
`)

	_, _, err := config.Compile()
	assert.IsType(t, &ContractNotFoundError{}, err)
	assert.EqualValues(t, fmt.Sprintf("Contract '%s' not found.", filepath.Join(config.Target, "token.cairo")), err.Error())
}

// TestCairoCompileIgnoresDiagnosticNoise ensures unclassified stderr output does not fail the
// compilation.
func TestCairoCompileIgnoresDiagnosticNoise(t *testing.T) {
	config, binFolder := testCompileSetup(t, map[string]string{
		"token.cairo": "#[contract]\nmod Token {}\n",
	})
	writeStubCompiler(t, binFolder, starknetCompileBinary, `echo "warning: unused variable 'x'" 1>&2
`+sierraStubScript)

	artifacts, _, err := config.Compile()
	assert.NoError(t, err)
	assert.EqualValues(t, 1, len(artifacts))
}

// TestCairoCompileRecoversCorruptedCompiler ensures a corrupted-compiler report clears the
// toolchain's debug target and retries once when a toolchain manifest is configured.
func TestCairoCompileRecoversCorruptedCompiler(t *testing.T) {
	config, binFolder := testCompileSetup(t, map[string]string{
		"token.cairo": "#[contract]\nmod Token {}\n",
	})

	// Create a toolchain source tree with a debug target folder.
	toolchainFolder := t.TempDir()
	manifestPath := filepath.Join(toolchainFolder, "Cargo.toml")
	require.NoError(t, os.WriteFile(manifestPath, []byte("[package]\nname = \"cairo\"\n"), 0644))
	targetFolder := filepath.Join(toolchainFolder, "target")
	require.NoError(t, os.MkdirAll(filepath.Join(targetFolder, "debug"), 0755))
	config.ManifestPath = manifestPath

	// Stub cargo: while the debug target exists it reports the corrupted state; once cleared it
	// compiles normally for either stage binary.
	writeStubCompiler(t, binFolder, "cargo", fmt.Sprintf(`if [ -d '%s' ]; then
  echo 'Permission denied (os error 13)' 1>&2
  exit 1
fi
if [ "$3" = "starknet-compile" ]; then
  %s
else
  %s
fi
`, targetFolder, `printf '%s' '{"sierra_program": ["0x1"], "abi": []}' > "$7"`, `printf '%s' '{"prime": "0x1", "bytecode": []}' > "$7"`))

	artifacts, _, err := config.Compile()
	require.NoError(t, err)
	assert.EqualValues(t, 1, len(artifacts))
	assert.NoDirExists(t, targetFolder)
}

// TestCairoCompileCorruptedWithoutManifestFails ensures a corrupted-compiler report propagates
// when no toolchain manifest is configured to recover with.
func TestCairoCompileCorruptedWithoutManifestFails(t *testing.T) {
	config, binFolder := testCompileSetup(t, map[string]string{
		"token.cairo": "#[contract]\nmod Token {}\n",
	})
	writeStubCompiler(t, binFolder, starknetCompileBinary, `echo "Permission denied (os error 13)" 1>&2
exit 1
`)

	_, _, err := config.Compile()
	assert.IsType(t, &CompilerCorruptedError{}, err)
	assert.EqualValues(t, "Failed to compile. Cairo compiler corrupted.", err.Error())
}

// TestCairoGetVersionsAndSettings ensures the version probe reports the pinned toolchain for any
// non-empty source set and one empty settings record per reported version.
func TestCairoGetVersionsAndSettings(t *testing.T) {
	config := NewCairoCompilationConfig("contracts")

	// An empty source set maps to no versions and no settings.
	assert.Empty(t, config.GetVersions(nil))
	assert.Empty(t, config.GetSettings(nil))

	// Any non-empty source set maps to the pinned toolchain release.
	versions := config.GetVersions([]string{"a.cairo", "b.cairo"})
	assert.EqualValues(t, []string{"v1.0.0-alpha.7"}, versions)
	settings := config.GetSettings([]string{"a.cairo"})
	assert.EqualValues(t, 1, len(settings))
	assert.EqualValues(t, CompilerSettings{}, settings["v1.0.0-alpha.7"])
}

// TestCairoSystemCompilerVersion ensures the version reported by a compiler binary on the system
// path can be probed and parsed, including its pre-release tag.
func TestCairoSystemCompilerVersion(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler scripts require a POSIX shell")
	}

	binFolder := filepath.Join(t.TempDir(), "bin")
	require.NoError(t, os.MkdirAll(binFolder, 0755))
	writeStubCompiler(t, binFolder, starknetCompileBinary, `printf '%s\n' 'starknet-compile 1.0.0-alpha.7'
`)
	t.Setenv("PATH", binFolder+string(os.PathListSeparator)+os.Getenv("PATH"))

	version, err := GetSystemCompilerVersion(starknetCompileBinary)
	assert.NoError(t, err)
	assert.EqualValues(t, "1.0.0-alpha.7", version.String())
}
