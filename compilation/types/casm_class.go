package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Masterminds/semver"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// StarknetPrime is the prime of the Starknet field: 2^251 + 17*2^192 + 1. Every field element in
// a compiled class must be a canonical residue below this value.
var StarknetPrime = uint256.MustFromHex("0x800000000000011000000000000000000000000000000000000000000000001")

// CasmClass represents the second-stage compiler output for a single contract: the assembled
// bytecode together with the field prime and compiler version it was produced with. Only the keys
// the build pipeline inspects are modeled; the artifact itself is persisted as raw text, never
// re-serialized from this structure.
type CasmClass struct {
	// Prime describes the hex-encoded field prime the class was assembled for.
	Prime string `json:"prime,omitempty"`

	// CompilerVersion describes the version of the compiler which produced the class. Early
	// compiler releases omit this key.
	CompilerVersion string `json:"compiler_version,omitempty"`

	// Bytecode describes the assembled program as a flat list of hex-encoded field elements.
	Bytecode []string `json:"bytecode,omitempty"`

	// EntryPointsByType describes the contract's entry points, grouped by invocation kind.
	EntryPointsByType CasmEntryPoints `json:"entry_points_by_type,omitempty"`
}

// CasmEntryPoints describes a compiled contract's entry points grouped by invocation kind.
type CasmEntryPoints struct {
	External    []CasmEntryPoint `json:"EXTERNAL,omitempty"`
	L1Handler   []CasmEntryPoint `json:"L1_HANDLER,omitempty"`
	Constructor []CasmEntryPoint `json:"CONSTRUCTOR,omitempty"`
}

// CasmEntryPoint describes a single compiled contract entry point.
type CasmEntryPoint struct {
	// Selector describes the hex-encoded entry point selector.
	Selector string `json:"selector,omitempty"`

	// Offset describes the bytecode offset the entry point begins at.
	Offset uint64 `json:"offset"`
}

// ParseCasmClass parses a second-stage compiler output from the provided data.
// Returns the parsed class, or an error if one occurred.
func ParseCasmClass(data []byte) (*CasmClass, error) {
	casmClass := &CasmClass{}
	if err := json.Unmarshal(data, casmClass); err != nil {
		return nil, errors.WithStack(err)
	}
	return casmClass, nil
}

// Validate checks that the class targets the Starknet field and that every bytecode word is a
// canonical field element. Returns an error if the class fails either check.
func (c *CasmClass) Validate() error {
	// Verify the class was assembled for the expected field.
	prime, err := uint256.FromHex(c.Prime)
	if err != nil {
		return errors.WithStack(fmt.Errorf("could not parse field prime '%s': %v", c.Prime, err))
	}
	if !prime.Eq(StarknetPrime) {
		return errors.WithStack(fmt.Errorf("class targets unexpected field prime '%s'", c.Prime))
	}

	// Verify every bytecode word is a canonical residue of the field.
	for i, word := range c.Bytecode {
		value, err := uint256.FromHex(word)
		if err != nil {
			return errors.WithStack(fmt.Errorf("could not parse bytecode word %d ('%s'): %v", i, word, err))
		}
		if !value.Lt(prime) {
			return errors.WithStack(fmt.Errorf("bytecode word %d ('%s') is not a canonical field element", i, word))
		}
	}
	return nil
}

// CompilerSemVer returns the parsed semantic version of the compiler which produced the class.
// Returns nil if the class does not carry a compiler version, or an error if it carries one which
// could not be parsed.
func (c *CasmClass) CompilerSemVer() (*semver.Version, error) {
	if c.CompilerVersion == "" {
		return nil, nil
	}
	version, err := semver.NewVersion(strings.TrimPrefix(c.CompilerVersion, "v"))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return version, nil
}
