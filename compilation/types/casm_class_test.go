package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseCasmClass ensures a second-stage compiler output parses into its modeled keys and
// reports its compiler version.
func TestParseCasmClass(t *testing.T) {
	data := []byte(`{
		"prime": "0x800000000000011000000000000000000000000000000000000000000000001",
		"compiler_version": "1.0.0",
		"bytecode": ["0x480680017fff8000", "0x1", "0x208b7fff7fff7ffe"],
		"entry_points_by_type": {
			"EXTERNAL": [{"selector": "0x1", "offset": 0}],
			"L1_HANDLER": [],
			"CONSTRUCTOR": []
		}
	}`)

	// Parse the class and verify its keys were decoded.
	casmClass, err := ParseCasmClass(data)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, len(casmClass.Bytecode))
	assert.EqualValues(t, 1, len(casmClass.EntryPointsByType.External))

	// Verify the compiler version parses as a semantic version.
	version, err := casmClass.CompilerSemVer()
	assert.NoError(t, err)
	assert.EqualValues(t, uint64(1), version.Major())

	// Verify a class without a compiler version reports none.
	casmClass.CompilerVersion = ""
	version, err = casmClass.CompilerSemVer()
	assert.NoError(t, err)
	assert.Nil(t, version)
}

// TestCasmClassValidate ensures field validation accepts canonical classes and rejects classes
// with a foreign prime or out-of-range bytecode words.
func TestCasmClassValidate(t *testing.T) {
	// Create a canonical class and verify it validates.
	casmClass := &CasmClass{
		Prime:    "0x800000000000011000000000000000000000000000000000000000000000001",
		Bytecode: []string{"0x480680017fff8000", "0x1"},
	}
	assert.NoError(t, casmClass.Validate())

	// Verify a class assembled for a different field is rejected.
	foreign := &CasmClass{Prime: "0x3", Bytecode: []string{"0x1"}}
	assert.Error(t, foreign.Validate())

	// Verify a bytecode word equal to the prime is rejected as non-canonical.
	casmClass.Bytecode = append(casmClass.Bytecode, casmClass.Prime)
	assert.Error(t, casmClass.Validate())
}
