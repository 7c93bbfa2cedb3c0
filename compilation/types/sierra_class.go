package types

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// SierraClass represents the first-stage compiler output for a single contract: the Sierra
// intermediate program together with its entry points and ABI. Only the keys the build pipeline
// inspects are modeled; the artifact itself is persisted as raw text, never re-serialized from
// this structure.
type SierraClass struct {
	// SierraProgram describes the program as a flat list of hex-encoded field elements.
	SierraProgram []string `json:"sierra_program,omitempty"`

	// ContractClassVersion describes the contract class schema version.
	ContractClassVersion string `json:"contract_class_version,omitempty"`

	// EntryPointsByType describes the contract's entry points, grouped by invocation kind.
	EntryPointsByType SierraEntryPoints `json:"entry_points_by_type,omitempty"`

	// Abi describes the contract's ABI entries as emitted by the compiler, prior to any
	// normalization.
	Abi []ABIEntry `json:"abi,omitempty"`
}

// SierraEntryPoints describes a contract's entry points grouped by invocation kind.
type SierraEntryPoints struct {
	External    []SierraEntryPoint `json:"EXTERNAL,omitempty"`
	L1Handler   []SierraEntryPoint `json:"L1_HANDLER,omitempty"`
	Constructor []SierraEntryPoint `json:"CONSTRUCTOR,omitempty"`
}

// SierraEntryPoint describes a single contract entry point.
type SierraEntryPoint struct {
	// Selector describes the hex-encoded entry point selector.
	Selector string `json:"selector,omitempty"`

	// FunctionIdx describes the index of the function within the Sierra program.
	FunctionIdx uint64 `json:"function_idx"`
}

// ParseSierraClass parses a first-stage compiler output from the provided data.
// Returns the parsed class, or an error if one occurred.
func ParseSierraClass(data []byte) (*SierraClass, error) {
	sierraClass := &SierraClass{}
	if err := json.Unmarshal(data, sierraClass); err != nil {
		return nil, errors.WithStack(err)
	}
	return sierraClass, nil
}
