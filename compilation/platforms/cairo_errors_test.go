package platforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestClassifyCompilerStderr ensures stderr text maps to the documented error kinds in priority
// order, and that unclassified text maps to no error at all.
func TestClassifyCompilerStderr(t *testing.T) {
	// Define our classification cases.
	tests := []struct {
		name     string
		stderr   string
		expected error
		message  string
	}{
		{
			name:     "compilation failed carries full stderr",
			stderr:   "compiling...\nError: Compilation failed.\nnote: see diagnostics above",
			expected: &CompilationError{},
			message:  "compiling...\nError: Compilation failed.\nnote: see diagnostics above",
		},
		{
			name:     "permission denied means corrupted compiler",
			stderr:   "thread 'main' panicked: Permission denied (os error 13)",
			expected: &CompilerCorruptedError{},
			message:  "Failed to compile. Cairo compiler corrupted.",
		},
		{
			name:     "contract not found",
			stderr:   "Error: Contract not found.",
			expected: &ContractNotFoundError{},
			message:  "Contract not found.",
		},
		{
			name:     "generic error takes text after the marker",
			stderr:   "Error: Expected ';' at line 4\n",
			expected: &CompilationError{},
			message:  "Expected ';' at line 4",
		},
		{
			name:     "repeated markers take text after the last one",
			stderr:   "Error: first report\nError: second report\n",
			expected: &CompilationError{},
			message:  "second report",
		},
		{
			name:     "compilation failed outranks the generic rule",
			stderr:   "Error: Compilation failed.\nError: trailing detail",
			expected: &CompilationError{},
			message:  "Error: Compilation failed.\nError: trailing detail",
		},
		{
			name:     "permission denied outranks the generic rule",
			stderr:   "Error: could not write output\nPermission denied (os error 13)",
			expected: &CompilerCorruptedError{},
			message:  "Failed to compile. Cairo compiler corrupted.",
		},
		{
			name:     "diagnostic noise is not an error",
			stderr:   "warning: unused import 'starknet::contract_address'",
			expected: nil,
		},
		{
			name:     "empty stderr is not an error",
			stderr:   "",
			expected: nil,
		},
	}

	// Run each case and verify the classified kind and message.
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := ClassifyCompilerStderr(test.stderr)
			if test.expected == nil {
				assert.NoError(t, err)
				return
			}
			assert.IsType(t, test.expected, err)
			assert.EqualValues(t, test.message, err.Error())
		})
	}
}

// TestContractNotFoundErrorMessage ensures the path-specific report replaces the generic one when
// a source path is attached.
func TestContractNotFoundErrorMessage(t *testing.T) {
	assert.EqualValues(t, "Contract not found.", (&ContractNotFoundError{}).Error())
	assert.EqualValues(t, "Contract 'contracts/token.cairo' not found.", (&ContractNotFoundError{Path: "contracts/token.cairo"}).Error())
}
