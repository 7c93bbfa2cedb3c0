package platforms

import (
	"fmt"
	"strings"
)

// The stderr markers the classifier matches against, in priority order.
const (
	// compilationFailedMarker indicates the compiler rejected the source outright.
	compilationFailedMarker = "Error: Compilation failed."
	// compilerCorruptedMarker indicates the compiler's own build state is broken. This surfaces as a
	// permission failure on the toolchain's debug target.
	compilerCorruptedMarker = "Permission denied (os error 13)"
	// contractNotFoundMarker indicates the input source did not define the requested contract.
	contractNotFoundMarker = "Error: Contract not found."
	// errorMarker prefixes any other compiler-reported error.
	errorMarker = "Error: "
)

// ConfigurationError describes a fatal misconfiguration of the cairo platform, such as a missing
// compiler binary or an unsatisfiable dependency declaration. Its message is surfaced unmodified.
type ConfigurationError struct {
	// Message describes the misconfiguration.
	Message string
}

// Error returns the message of the ConfigurationError.
func (e *ConfigurationError) Error() string {
	return e.Message
}

// CompilationError describes a failed compiler invocation, carrying the diagnostic text the
// compiler produced.
type CompilationError struct {
	// Message describes the compiler diagnostics.
	Message string
}

// Error returns the message of the CompilationError.
func (e *CompilationError) Error() string {
	return e.Message
}

// ContractNotFoundError describes a compiler report that the input source did not define the
// requested contract.
type ContractNotFoundError struct {
	// Path describes the source path the compiler was invoked on, if known.
	Path string
}

// Error returns the message of the ContractNotFoundError.
func (e *ContractNotFoundError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("Contract '%s' not found.", e.Path)
	}
	return "Contract not found."
}

// CompilerCorruptedError describes a compiler whose build state is corrupted. The caller may clear
// the toolchain's debug target and retry once before treating this as fatal.
type CompilerCorruptedError struct{}

// Error returns the message of the CompilerCorruptedError.
func (e *CompilerCorruptedError) Error() string {
	return "Failed to compile. Cairo compiler corrupted."
}

// ClassifyCompilerStderr inspects the stderr text of a compiler invocation and returns the error it
// represents, or nil if the text is diagnostic noise which the caller may log and discard. The rules
// are matched in priority order, first match wins:
//  1. the compilation-failed marker yields a CompilationError carrying the full stderr text;
//  2. the permission-denied marker yields a CompilerCorruptedError;
//  3. the contract-not-found marker yields a ContractNotFoundError;
//  4. any other error marker yields a CompilationError carrying the text after the last marker,
//     trimmed of surrounding whitespace;
//  5. anything else is diagnostic noise.
//
// This function performs no I/O and has no side effects.
func ClassifyCompilerStderr(stderr string) error {
	if strings.Contains(stderr, compilationFailedMarker) {
		return &CompilationError{Message: stderr}
	}
	if strings.Contains(stderr, compilerCorruptedMarker) {
		return &CompilerCorruptedError{}
	}
	if strings.Contains(stderr, contractNotFoundMarker) {
		return &ContractNotFoundError{}
	}
	if index := strings.LastIndex(stderr, errorMarker); index != -1 {
		return &CompilationError{Message: strings.TrimSpace(stderr[index+len(errorMarker):])}
	}
	return nil
}
